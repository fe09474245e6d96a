package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/utils"
)

const principalContextKey = "principal"

// AuthMiddleware validates the bearer token and stores the caller's principal in context.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := Authenticate(secret, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		c.Locals(principalContextKey, principal)
		return c.Next()
	}
}

// Authenticate decodes an Authorization header value into a principal.
func Authenticate(secret, header string) (models.Principal, error) {
	if header == "" {
		return models.Principal{}, apperrors.Unauthorized("No token provided")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return models.Principal{}, apperrors.Unauthorized("Invalid authorization header")
	}

	principal, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return models.Principal{}, apperrors.Unauthorized("Invalid or expired token")
	}
	return principal, nil
}

// RequireRole rejects callers whose token does not carry role.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			return apperrors.Unauthorized("No token provided")
		}
		if principal.Role != role {
			return apperrors.Forbidden("Forbidden")
		}
		return c.Next()
	}
}

// CurrentPrincipal extracts the authenticated principal from context.
func CurrentPrincipal(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(principalContextKey).(models.Principal)
	return principal, ok
}
