package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/events"
	"github.com/citycare/issue-service/internal/repository"
	apperrors "github.com/citycare/issue-service/pkg/util/errorutil"
)

// IssueService coordinates issue workflows.
type IssueService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IssueDependencies bundles repositories for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// ReportInput describes a newly reported issue.
type ReportInput struct {
	Problem     string
	ProblemType string
	Location    string
	Description string
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Report files a PENDING issue owned by userID.
func (s *IssueService) Report(ctx context.Context, userID string, input ReportInput) (*domain.Issue, error) {
	if err := requireFields(map[string]string{
		"problem":      input.Problem,
		"problem_type": input.ProblemType,
		"location":     input.Location,
		"description":  input.Description,
	}); err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		UserID:      userID,
		Problem:     strings.TrimSpace(input.Problem),
		ProblemType: strings.TrimSpace(input.ProblemType),
		Location:    strings.TrimSpace(input.Location),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.IssueStatusPending,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventIssueReported, userID, issue.ID, events.IssueReportedPayload{
		UserID:      userID,
		ProblemType: issue.ProblemType,
		Location:    issue.Location,
	}))
	return issue, nil
}

// ListByUser returns the user's issues, newest first.
func (s *IssueService) ListByUser(ctx context.Context, userID string) ([]domain.Issue, error) {
	issues, err := s.issues.List(ctx, repository.IssueFilter{UserID: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issues, nil
}

// ListAll returns every issue with its owner. An empty status means no filter.
func (s *IssueService) ListAll(ctx context.Context, caller *domain.User, status string) ([]domain.IssueWithOwner, error) {
	if !auth.IsAdmin(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	filter := repository.IssueFilter{}
	if status != "" {
		st := domain.IssueStatus(status)
		if !st.Valid() {
			return nil, invalidStatus(status)
		}
		filter.Status = &st
	}
	issues, err := s.issues.ListWithOwner(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issues, nil
}

// SetStatus moves an issue to status and, once stored, runs the status
// subscribers synchronously. A failing subscriber fails the call; the status
// change itself stays committed.
func (s *IssueService) SetStatus(ctx context.Context, caller *domain.User, issueID, status string) (*domain.StatusChange, error) {
	if !auth.IsAdmin(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if status == "" {
		return nil, apperrors.NewValidationError("status is required", nil)
	}
	newStatus := domain.IssueStatus(status)
	if !newStatus.Valid() {
		return nil, invalidStatus(status)
	}
	details := map[string]any{"issue_id": issueID}
	if !validID(issueID) {
		return nil, apperrors.NewNotFound("issue", details)
	}

	change, err := s.issues.UpdateStatus(ctx, issueID, newStatus)
	if err != nil {
		return nil, notFoundOr(err, "issue", details)
	}

	event := events.New(events.EventIssueStatusChanged, caller.ID, issueID, events.IssueStatusChangedPayload{
		Issue:     change.Issue,
		OldStatus: change.OldStatus,
		NewStatus: change.NewStatus,
	})
	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("issue %s status subscribers: %w", issueID, err))
		}
	}
	return change, nil
}

func (s *IssueService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func invalidStatus(status string) error {
	allowed := make([]string, 0, len(domain.IssueStatuses))
	for _, st := range domain.IssueStatuses {
		allowed = append(allowed, string(st))
	}
	return apperrors.NewValidationError("invalid status", map[string]any{
		"status":  status,
		"allowed": allowed,
	})
}
