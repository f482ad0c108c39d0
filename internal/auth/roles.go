package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/citycare/issue-service/internal/domain"
)

// Owned is implemented by records that belong to a user.
type Owned interface {
	OwnerID() string
}

// identified is implemented by records that are themselves a user.
type identified interface {
	Identity() string
}

// IsAdmin reports whether the caller holds the administrator flag.
func IsAdmin(caller *domain.User) bool {
	return caller != nil && caller.IsAdmin
}

// IsOwnerOrAdmin reports whether caller may act on resource. Records without
// an owner fall back to comparing identities, so a user owns itself.
func IsOwnerOrAdmin(caller *domain.User, resource any) bool {
	if caller == nil {
		return false
	}
	if caller.IsAdmin {
		return true
	}
	if owned, ok := resource.(Owned); ok {
		if owner := owned.OwnerID(); owner != "" {
			return owner == caller.ID
		}
	}
	if ident, ok := resource.(identified); ok {
		return ident.Identity() == caller.ID
	}
	return false
}

// RequireAdmin rejects authenticated non-admin callers.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !IsAdmin(principal.User) {
			return fiber.NewError(http.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}
