package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/northgate-labs/user-service/internal/domain"
	apperrors "github.com/northgate-labs/user-service/pkg/util"
)

const identityKey = "auth_identity"

type contextKey string

const identityContextKey contextKey = "auth.identity"

// Identity is the request-scoped decoded token: who is making this call.
// It is built entirely from claims; no database lookup happens per request.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   domain.UserRole
	Status domain.UserStatus
}

// AuthMiddleware validates bearer tokens and attaches identities.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes. On success the
// identity is stored both in fiber locals and in the request context, so
// downstream GraphQL resolvers see the same value.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	// the scheme literal is matched exactly; "bearer" is rejected
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return apperrors.NewUnauthorized("invalid authorization format")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewUnauthorized("token expired")
		}
		return apperrors.NewUnauthorized("invalid token")
	}

	identity := &Identity{
		UserID: claims.UserID(),
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
		Status: claims.Status,
	}
	c.Locals(identityKey, identity)
	c.SetUserContext(WithIdentity(c.UserContext(), identity))
	return c.Next()
}

// IdentityFromFiber retrieves the authenticated identity from fiber locals.
func IdentityFromFiber(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}

// WithIdentity attaches the identity to a context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity attached by the middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}
