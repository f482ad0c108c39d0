package dto

import "time"

// SubmitFeedbackRequest payload.
type SubmitFeedbackRequest struct {
	IssueID      string `json:"issue_id" validate:"required"`
	FeedbackText string `json:"feedback_text" validate:"required"`
}

// FeedbackResponse is returned after submission.
type FeedbackResponse struct {
	ID           string    `json:"id"`
	IssueID      string    `json:"issue_id"`
	FeedbackText string    `json:"feedback_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedbackDetailResponse is the admin projection.
type FeedbackDetailResponse struct {
	ID           string       `json:"id"`
	Issue        IssueSummary `json:"issue"`
	User         UserSummary  `json:"user"`
	FeedbackText string       `json:"feedback_text"`
	CreatedAt    time.Time    `json:"created_at"`
}
