package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/citycare/issue-service/pkg/util/errorutil"
)

var validate = validator.New()

// NormalizeEmail lower-cases and trims an address so lookups and the unique
// index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func requireFields(fields map[string]string) error {
	missing := []string{}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return apperrors.NewValidationError("invalid email", map[string]any{"email": email})
	}
	return nil
}

// validID reports whether id is a well-formed identifier. Malformed ids can
// never match a row, so callers report them as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}
