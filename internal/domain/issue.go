package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "PENDING"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
	IssueStatusReport     IssueStatus = "REPORT"
)

// IssueStatuses lists every accepted status value.
var IssueStatuses = []IssueStatus{
	IssueStatusPending,
	IssueStatusInProgress,
	IssueStatusResolved,
	IssueStatusReport,
}

// Valid reports whether s is one of the four enumerated values.
func (s IssueStatus) Valid() bool {
	for _, candidate := range IssueStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether the owner must be told about the status.
func (s IssueStatus) Terminal() bool {
	return s == IssueStatusResolved || s == IssueStatusReport
}

// Issue is a civic problem reported by a user.
type Issue struct {
	ID          string
	UserID      string
	Problem     string
	ProblemType string
	Location    string
	Description string
	Status      IssueStatus
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID returns the reporting user.
func (i *Issue) OwnerID() string {
	return i.UserID
}

// IssueWithOwner is an issue joined with its reporter.
type IssueWithOwner struct {
	Issue
	Owner UserSummary
}

// IssueSummary is the issue projection attached to feedback listings.
type IssueSummary struct {
	ID       string
	Problem  string
	Location string
	Status   IssueStatus
}

// StatusChange is the outcome of an atomic status update.
type StatusChange struct {
	Issue     Issue
	OldStatus IssueStatus
	NewStatus IssueStatus
}
