package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/events"
	"github.com/citycare/issue-service/internal/repository"
	apperrors "github.com/citycare/issue-service/pkg/util/errorutil"
)

// NotificationService stores personal and broadcast notifications.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NotificationDependencies bundles repositories.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// SendInput describes a notification. A nil TargetUserID broadcasts it.
type SendInput struct {
	Title        string
	Message      string
	TargetUserID *string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
	}
}

// Send stores a notification after checking the addressee exists.
func (s *NotificationService) Send(ctx context.Context, input SendInput) (*domain.Notification, error) {
	if err := requireFields(map[string]string{"title": input.Title, "message": input.Message}); err != nil {
		return nil, err
	}

	notification := &domain.Notification{
		Title:   strings.TrimSpace(input.Title),
		Message: strings.TrimSpace(input.Message),
	}
	if input.TargetUserID != nil && *input.TargetUserID != "" {
		target := *input.TargetUserID
		details := map[string]any{"target_user_id": target}
		if !validID(target) {
			return nil, apperrors.NewNotFound("target user", details)
		}
		if _, err := s.users.GetByID(ctx, target); err != nil {
			return nil, notFoundOr(err, "target user", details)
		}
		notification.TargetUserID = &target
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, apperrors.NewNotFound("target user", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		event := events.New(events.EventNotificationSent, "", notification.ID, events.NotificationSentPayload{
			Title:        notification.Title,
			TargetUserID: notification.TargetUserID,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return notification, nil
}

// ListForUser returns the user's notifications together with broadcasts.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	items, err := s.notifications.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// ListAll returns every notification with its addressee, if any.
func (s *NotificationService) ListAll(ctx context.Context, caller *domain.User) ([]domain.NotificationWithTarget, error) {
	if !auth.IsAdmin(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	items, err := s.notifications.ListWithTarget(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}
