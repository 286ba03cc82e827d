package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/northgate-labs/user-service/internal/auth"
	"github.com/northgate-labs/user-service/internal/cache"
	"github.com/northgate-labs/user-service/internal/config"
	"github.com/northgate-labs/user-service/internal/domain"
	"github.com/northgate-labs/user-service/internal/events"
	"github.com/northgate-labs/user-service/internal/repository"
	apperrors "github.com/northgate-labs/user-service/pkg/util"
)

// UserService implements account CRUD on top of the repository, with a
// read-through profile cache on single-user lookups.
type UserService struct {
	users      repository.UserRepository
	profiles   *cache.ProfileCache
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService builds the service. The cache may be nil.
func NewUserService(cfg config.Config, users repository.UserRepository, profiles *cache.ProfileCache, dispatcher events.Dispatcher) *UserService {
	return &UserService{
		users:      users,
		profiles:   profiles,
		dispatcher: dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// List returns all accounts.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Create provisions an account without issuing a token.
func (s *UserService) Create(ctx context.Context, email, password, name string) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventUserCreated, user.ID, nil)
	return user, nil
}

// Get returns one account, serving from the profile cache when possible.
// Cached reads carry no password hash, which display paths never need.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if profile, ok := s.profiles.Get(ctx, id); ok {
		return profile.User(), nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.profiles.Set(ctx, cache.NewProfile(user))
	return user, nil
}

// Update changes the display name.
func (s *UserService) Update(ctx context.Context, id, name string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}

	user.Name = name
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.profiles.Invalidate(ctx, id)
	s.publish(ctx, events.EventUserUpdated, id, nil)
	return user, nil
}

// Delete removes the account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}

	s.profiles.Invalidate(ctx, id)
	s.publish(ctx, events.EventUserDeleted, id, events.UserDeletedPayload{Email: user.Email})
	return nil
}

// ChangeRole assigns a new role. Route-level guards restrict this to
// admins; the change reaches outstanding tokens only after they expire.
func (s *UserService) ChangeRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}

	oldRole := user.Role
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.profiles.Invalidate(ctx, id)
	s.publish(ctx, events.EventUserRoleChanged, id, events.UserRoleChangedPayload{OldRole: oldRole, NewRole: role})
	return user, nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
