package graph

import (
	"context"

	"github.com/northgate-labs/user-service/internal/auth"
	"github.com/northgate-labs/user-service/internal/domain"
)

// GuardAction is the outcome of a guard predicate.
type GuardAction struct {
	allowed bool
	reason  string
}

// Allow permits resolution.
func Allow() GuardAction {
	return GuardAction{allowed: true}
}

// Block denies resolution with a reason.
func Block(reason string) GuardAction {
	return GuardAction{reason: reason}
}

// Allowed reports whether resolution may proceed.
func (a GuardAction) Allowed() bool {
	return a.allowed
}

// Reason returns the denial reason.
func (a GuardAction) Reason() string {
	return a.reason
}

// Guard decides access from the request context, which carries the identity
// attached by the auth middleware.
type Guard func(ctx context.Context) GuardAction

// GuardConfig maps entity names and "entity.field" names to guards. It is
// built once at startup and installed into the schema builder; it must not
// be mutated afterwards, which makes concurrent reads safe without locking.
type GuardConfig struct {
	entityGuards map[string]Guard
	fieldGuards  map[string]Guard
}

// NewGuardConfig returns an empty configuration.
func NewGuardConfig() *GuardConfig {
	return &GuardConfig{
		entityGuards: make(map[string]Guard),
		fieldGuards:  make(map[string]Guard),
	}
}

// EntityGuard registers a guard consulted before resolving the named entity.
func (g *GuardConfig) EntityGuard(entity string, guard Guard) {
	g.entityGuards[entity] = guard
}

// FieldGuard registers a guard for an "entity.field" name.
func (g *GuardConfig) FieldGuard(name string, guard Guard) {
	g.fieldGuards[name] = guard
}

func (g *GuardConfig) entityGuard(entity string) (Guard, bool) {
	if g == nil {
		return nil, false
	}
	guard, ok := g.entityGuards[entity]
	return guard, ok
}

func (g *GuardConfig) fieldGuard(entity, field string) (Guard, bool) {
	if g == nil {
		return nil, false
	}
	guard, ok := g.fieldGuards[entity+"."+field]
	return guard, ok
}

// RequireRole returns a guard enforcing strict role equality. For a given
// identity it reaches the same verdict as the REST role middleware.
func RequireRole(required domain.UserRole) Guard {
	return func(ctx context.Context) GuardAction {
		identity, ok := auth.IdentityFromContext(ctx)
		if !ok {
			return Block("identity missing")
		}
		if identity.Role != required {
			return Block("insufficient role")
		}
		return Allow()
	}
}

// DefaultGuards gates the users entity and its role and status fields
// behind the Admin role.
func DefaultGuards() *GuardConfig {
	cfg := NewGuardConfig()
	admin := RequireRole(domain.RoleAdmin)
	cfg.EntityGuard("users", admin)
	cfg.FieldGuard("users.role", admin)
	cfg.FieldGuard("users.status", admin)
	return cfg
}
