package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/citycare/issue-service/internal/api/dto"
	"github.com/citycare/issue-service/internal/service"
)

// FeedbackHandler accepts feedback from citizens.
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: feedbackService}
}

// Submit POST /feedback/submit.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SubmitFeedbackRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	feedback, err := h.service.Submit(c.UserContext(), caller.ID, req.IssueID, req.FeedbackText)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.FeedbackResponse{
		ID:           feedback.ID,
		IssueID:      feedback.IssueID,
		FeedbackText: feedback.FeedbackText,
		CreatedAt:    feedback.CreatedAt,
	})
}
