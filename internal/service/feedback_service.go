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

// FeedbackService records citizen feedback on issues.
type FeedbackService struct {
	feedback   repository.FeedbackRepository
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// FeedbackDependencies bundles repositories.
type FeedbackDependencies struct {
	FeedbackRepo repository.FeedbackRepository
	IssueRepo    repository.IssueRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewFeedbackService creates the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		feedback:   deps.FeedbackRepo,
		issues:     deps.IssueRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Submit stores feedback from userID on an existing issue.
func (s *FeedbackService) Submit(ctx context.Context, userID, issueID, text string) (*domain.Feedback, error) {
	if err := requireFields(map[string]string{"issue_id": issueID, "feedback_text": text}); err != nil {
		return nil, err
	}
	details := map[string]any{"issue_id": issueID}
	if !validID(issueID) {
		return nil, apperrors.NewNotFound("issue", details)
	}
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return nil, notFoundOr(err, "issue", details)
	}

	feedback := &domain.Feedback{
		IssueID:      issueID,
		UserID:       userID,
		FeedbackText: strings.TrimSpace(text),
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, apperrors.NewNotFound("issue", details)
		}
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		event := events.New(events.EventFeedbackSubmitted, userID, feedback.ID, events.FeedbackSubmittedPayload{
			IssueID: issueID,
			UserID:  userID,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return feedback, nil
}

// ListAll returns every feedback entry with its issue and author.
func (s *FeedbackService) ListAll(ctx context.Context, caller *domain.User) ([]domain.FeedbackDetail, error) {
	if !auth.IsAdmin(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	items, err := s.feedback.ListDetailed(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}
