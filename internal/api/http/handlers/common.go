package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/citycare/issue-service/internal/api/dto"
	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/domain"
	apperrors "github.com/citycare/issue-service/pkg/util/errorutil"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

// bind decodes the JSON body into req and applies its validation tags. An
// empty body decodes to the zero value so missing fields are reported as such.
func bind(c *fiber.Ctx, req any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if details, ok := dto.Validate(req); !ok {
		return apperrors.NewValidationError("validation failed", details)
	}
	return nil
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}

func userSummary(summary domain.UserSummary) dto.UserSummary {
	return dto.UserSummary{ID: summary.ID, Name: summary.Name, Email: summary.Email}
}

func tokensResponse(pair *domain.TokenPair) dto.TokensResponse {
	return dto.TokensResponse{
		Access:           pair.Access,
		Refresh:          pair.Refresh,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:          issue.ID,
		Problem:     issue.Problem,
		ProblemType: issue.ProblemType,
		Location:    issue.Location,
		Description: issue.Description,
		Status:      issue.Status,
		Date:        issue.Date,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		IsGlobal:  n.IsGlobal(),
		CreatedAt: n.CreatedAt,
	}
}
