package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/citycare/issue-service/internal/events"
)

// AuditLogger writes every domain event to the structured log.
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates the subscriber.
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to events.
func (a *AuditLogger) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventIssueReported,
		events.EventIssueStatusChanged,
		events.EventFeedbackSubmitted,
		events.EventNotificationSent,
	} {
		dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditLogger) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if payload, ok := event.Payload.(events.IssueStatusChangedPayload); ok {
		fields = append(fields,
			zap.String("old_status", string(payload.OldStatus)),
			zap.String("new_status", string(payload.NewStatus)))
	}
	a.logger.Info("domain event", fields...)
	return nil
}
