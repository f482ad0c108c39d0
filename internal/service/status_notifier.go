package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/citycare/issue-service/internal/events"
	"github.com/citycare/issue-service/internal/mail"
	"github.com/citycare/issue-service/internal/repository"
)

// StatusNotifier tells an issue owner about RESOLVED and REPORT transitions:
// an email on a best-effort basis and a personal notification that must be
// stored.
type StatusNotifier struct {
	users         repository.UserRepository
	notifications *NotificationService
	mailer        mail.Sender
	logger        *zap.Logger
}

// NewStatusNotifier creates the notifier.
func NewStatusNotifier(users repository.UserRepository, notifications *NotificationService, mailer mail.Sender, logger *zap.Logger) *StatusNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusNotifier{
		users:         users,
		notifications: notifications,
		mailer:        mailer,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *StatusNotifier) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventIssueStatusChanged, n.handleStatusChanged)
}

func (n *StatusNotifier) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if !payload.NewStatus.Terminal() {
		return nil
	}
	issue := payload.Issue

	owner, err := n.users.GetByID(ctx, issue.UserID)
	if err != nil {
		return fmt.Errorf("load issue owner %s: %w", issue.UserID, err)
	}

	title := issueTitle(payload.NewStatus, issue.Problem)
	msg := mail.Message{
		To:      owner.Email,
		Subject: title,
		Body:    renderStatusEmail(owner, issue),
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Warn("issue status email failed",
			zap.String("issue_id", issue.ID),
			zap.String("status", string(payload.NewStatus)),
			zap.Error(err))
	}

	ownerID := owner.ID
	if _, err := n.notifications.Send(ctx, SendInput{
		Title:        title,
		Message:      renderStatusMessage(issue),
		TargetUserID: &ownerID,
	}); err != nil {
		return fmt.Errorf("create status notification: %w", err)
	}
	return nil
}
