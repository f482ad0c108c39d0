package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/citycare/issue-service/internal/api/dto"
	"github.com/citycare/issue-service/internal/service"
	apperrors "github.com/citycare/issue-service/pkg/util/errorutil"
)

// AdminHandler serves the administrator endpoints under /admin.
type AdminHandler struct {
	issues        *service.IssueService
	feedback      *service.FeedbackService
	notifications *service.NotificationService
}

// AdminDependencies bundles services used by admin endpoints.
type AdminDependencies struct {
	Issues        *service.IssueService
	Feedback      *service.FeedbackService
	Notifications *service.NotificationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{
		issues:        deps.Issues,
		feedback:      deps.Feedback,
		notifications: deps.Notifications,
	}
}

// ListIssues GET /admin/issues.
func (h *AdminHandler) ListIssues(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var query dto.IssueListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}

	issues, err := h.issues.ListAll(c.UserContext(), caller, query.Status)
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		item := issueResponse(&issues[i].Issue)
		owner := userSummary(issues[i].Owner)
		item.User = &owner
		items = append(items, item)
	}
	return data(c, http.StatusOK, items)
}

// SetIssueStatus PUT /admin/issues/:id/status.
func (h *AdminHandler) SetIssueStatus(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	change, err := h.issues.SetStatus(c.UserContext(), caller, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.StatusChangeResponse{
		ID:        change.Issue.ID,
		Status:    change.NewStatus,
		OldStatus: change.OldStatus,
	})
}

// ListFeedback GET /admin/feedback.
func (h *AdminHandler) ListFeedback(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	entries, err := h.feedback.ListAll(c.UserContext(), caller)
	if err != nil {
		return err
	}
	items := make([]dto.FeedbackDetailResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.FeedbackDetailResponse{
			ID: entry.ID,
			Issue: dto.IssueSummary{
				ID:       entry.Issue.ID,
				Problem:  entry.Issue.Problem,
				Location: entry.Issue.Location,
				Status:   entry.Issue.Status,
			},
			User:         userSummary(entry.Author),
			FeedbackText: entry.FeedbackText,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return data(c, http.StatusOK, items)
}

// ListNotifications GET /admin/notifications.
func (h *AdminHandler) ListNotifications(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	notifications, err := h.notifications.ListAll(c.UserContext(), caller)
	if err != nil {
		return err
	}
	items := make([]dto.AdminNotificationResponse, 0, len(notifications))
	for i := range notifications {
		item := dto.AdminNotificationResponse{NotificationResponse: notificationResponse(&notifications[i].Notification)}
		if target := notifications[i].Target; target != nil {
			summary := userSummary(*target)
			item.TargetUser = &summary
		}
		items = append(items, item)
	}
	return data(c, http.StatusOK, items)
}

// SendNotification POST /admin/notifications/send.
func (h *AdminHandler) SendNotification(c *fiber.Ctx) error {
	var req dto.SendNotificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	notification, err := h.notifications.Send(c.UserContext(), service.SendInput{
		Title:        req.Title,
		Message:      req.Message,
		TargetUserID: req.TargetUserID,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, notificationResponse(notification))
}
