package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/citycare/issue-service/internal/api/dto"
	"github.com/citycare/issue-service/internal/service"
)

// IssuesHandler manages citizen issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// Report POST /issues/report.
func (h *IssuesHandler) Report(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ReportIssueRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	issue, err := h.service.Report(c.UserContext(), caller.ID, service.ReportInput{
		Problem:     req.Problem,
		ProblemType: req.ProblemType,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, issueResponse(issue))
}

// ListMine GET /issues/user.
func (h *IssuesHandler) ListMine(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	issues, err := h.service.ListByUser(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return data(c, http.StatusOK, items)
}
