package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/citycare/issue-service/internal/api/dto"
	"github.com/citycare/issue-service/internal/domain"
	"github.com/citycare/issue-service/internal/service"
)

// AuthHandler exposes account and token endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Register(c.UserContext(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.AuthResponse{User: userResponse(user), Tokens: tokensResponse(pair)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.AuthResponse{User: userResponse(user), Tokens: tokensResponse(pair)})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.RefreshTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), caller, req.Refresh); err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.MessageResponse{Message: "logged out successfully"})
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.MessageResponse{Message: "new password sent to your email"})
}

// EditProfile handles PUT /auth/edit-profile.
func (h *AuthHandler) EditProfile(c *fiber.Ctx) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.EditProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.auth.EditProfile(c.UserContext(), caller, domain.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, userResponse(user))
}

// Refresh handles POST /auth/token/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pair, err := h.auth.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, tokensResponse(pair))
}
