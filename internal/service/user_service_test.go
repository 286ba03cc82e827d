package service

import (
	"context"
	"testing"

	"github.com/northgate-labs/user-service/internal/domain"
	"github.com/northgate-labs/user-service/internal/events"
	apperrors "github.com/northgate-labs/user-service/pkg/util"
)

func newUserService(repo *memRepo) *UserService {
	return NewUserService(testConfig(), repo, nil, events.NewInMemoryDispatcher())
}

func TestUserServiceCreateAndList(t *testing.T) {
	svc := newUserService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "a@x.com", "secret123", "A"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "b@x.com", "secret123", "B"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
}

func TestUserServiceCreateDuplicate(t *testing.T) {
	svc := newUserService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "a@x.com", "secret123", "A"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(ctx, "a@x.com", "secret123", "A2")
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != apperrors.CodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestUserServiceGetNotFound(t *testing.T) {
	svc := newUserService(newMemRepo())

	_, err := svc.Get(context.Background(), "00000000-0000-0000-0000-000000000099")
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != apperrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUserServiceUpdateName(t *testing.T) {
	svc := newUserService(newMemRepo())
	ctx := context.Background()

	user, err := svc.Create(ctx, "a@x.com", "secret123", "A")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, user.ID, "Renamed")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", updated.Name)
	}
	if updated.Email != user.Email {
		t.Errorf("email changed on name update: %q", updated.Email)
	}
}

func TestUserServiceDelete(t *testing.T) {
	repo := newMemRepo()
	svc := newUserService(repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, "a@x.com", "secret123", "A")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	err = svc.Delete(ctx, user.ID)
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != apperrors.CodeNotFound {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func TestUserServiceChangeRole(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var changes []events.Event
	dispatcher.Subscribe(events.EventUserRoleChanged, func(_ context.Context, e events.Event) error {
		changes = append(changes, e)
		return nil
	})
	svc := NewUserService(testConfig(), newMemRepo(), nil, dispatcher)
	ctx := context.Background()

	user, err := svc.Create(ctx, "a@x.com", "secret123", "A")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	promoted, err := svc.ChangeRole(ctx, user.ID, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if promoted.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want Admin", promoted.Role)
	}
	if len(changes) != 1 {
		t.Fatalf("got %d role change events, want 1", len(changes))
	}

	_, err = svc.ChangeRole(ctx, user.ID, domain.UserRole("Owner"))
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != apperrors.CodeValidationFailed {
		t.Fatalf("err = %v, want validation failure for unknown role", err)
	}
}
