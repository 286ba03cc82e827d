package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/northgate-labs/user-service/internal/domain"
	apperrors "github.com/northgate-labs/user-service/pkg/util"
)

// RequireRole gates a route on strict role equality. A missing identity
// means the auth middleware did not run first; that is a wiring error and
// is reported as unauthorized rather than forbidden.
func RequireRole(required domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromFiber(c)
		if !ok {
			return apperrors.NewUnauthorized("identity missing")
		}
		if identity.Role != required {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures an identity is attached without checking roles.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromFiber(c); !ok {
			return apperrors.NewUnauthorized("identity missing")
		}
		return c.Next()
	}
}
