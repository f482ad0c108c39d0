package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/citycare/issue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventIssueReported      EventType = "issue_reported"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventFeedbackSubmitted  EventType = "feedback_submitted"
	EventNotificationSent   EventType = "notification_sent"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actorID, subjectID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// IssueReportedPayload payload.
type IssueReportedPayload struct {
	UserID      string `json:"user_id"`
	ProblemType string `json:"problem_type"`
	Location    string `json:"location"`
}

// IssueStatusChangedPayload carries the issue as it stood after the update.
type IssueStatusChangedPayload struct {
	Issue     domain.Issue       `json:"issue"`
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	IssueID string `json:"issue_id"`
	UserID  string `json:"user_id"`
}

// NotificationSentPayload payload.
type NotificationSentPayload struct {
	Title        string  `json:"title"`
	TargetUserID *string `json:"target_user_id,omitempty"`
}
