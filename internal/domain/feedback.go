package domain

import "time"

// Feedback is a user's comment on an issue.
type Feedback struct {
	ID           string
	IssueID      string
	UserID       string
	FeedbackText string
	CreatedAt    time.Time
}

// OwnerID returns the author.
func (f *Feedback) OwnerID() string {
	return f.UserID
}

// FeedbackDetail is feedback joined with its issue and author.
type FeedbackDetail struct {
	Feedback
	Issue  IssueSummary
	Author UserSummary
}
