package dto

import (
	"time"

	"github.com/citycare/issue-service/internal/domain"
)

// ReportIssueRequest payload.
type ReportIssueRequest struct {
	Problem     string `json:"problem" validate:"required"`
	ProblemType string `json:"problem_type" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// IssueListQuery captures admin listing filters.
type IssueListQuery struct {
	Status string `query:"status"`
}

// IssueResponse provides full issue info. User is set on admin listings.
type IssueResponse struct {
	ID          string             `json:"id"`
	User        *UserSummary       `json:"user,omitempty"`
	Problem     string             `json:"problem"`
	ProblemType string             `json:"problem_type"`
	Location    string             `json:"location"`
	Description string             `json:"description"`
	Status      domain.IssueStatus `json:"status"`
	Date        time.Time          `json:"date"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// IssueSummary is attached to feedback listings.
type IssueSummary struct {
	ID       string             `json:"id"`
	Problem  string             `json:"problem"`
	Location string             `json:"location"`
	Status   domain.IssueStatus `json:"status"`
}

// StatusChangeResponse reports a status transition.
type StatusChangeResponse struct {
	ID        string             `json:"id"`
	Status    domain.IssueStatus `json:"status"`
	OldStatus domain.IssueStatus `json:"old_status"`
}
