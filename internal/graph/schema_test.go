package graph_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/jackc/pgx/v5"

	"github.com/northgate-labs/user-service/internal/auth"
	"github.com/northgate-labs/user-service/internal/config"
	"github.com/northgate-labs/user-service/internal/domain"
	"github.com/northgate-labs/user-service/internal/graph"
	"github.com/northgate-labs/user-service/internal/service"
)

type stubRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubRepo(users ...*domain.User) *stubRepo {
	r := &stubRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *stubRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *stubRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func fixtureUsers() []*domain.User {
	now := time.Now()
	return []*domain.User{
		{ID: "00000000-0000-0000-0000-000000000001", Name: "Ada", Email: "ada@x.com", Role: domain.RoleUser, Status: domain.UserStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: "00000000-0000-0000-0000-000000000002", Name: "Root", Email: "root@x.com", Role: domain.RoleAdmin, Status: domain.UserStatusActive, CreatedAt: now, UpdatedAt: now},
	}
}

func buildSchema(t *testing.T, guards *graph.GuardConfig) graphql.Schema {
	t.Helper()
	users := service.NewUserService(config.Config{}, newStubRepo(fixtureUsers()...), nil, nil)
	schema, err := graph.BuildSchema([]graph.EntityDescriptor{graph.UserEntity(users)}, guards)
	if err != nil {
		t.Fatalf("BuildSchema: %v", err)
	}
	return schema
}

func identityCtx(role domain.UserRole) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		UserID: "caller",
		Email:  "caller@x.com",
		Role:   role,
		Status: domain.UserStatusActive,
	})
}

func execute(schema graphql.Schema, ctx context.Context, query string) *graphql.Result {
	return graphql.Do(graphql.Params{Schema: schema, RequestString: query, Context: ctx})
}

func hasErrorContaining(result *graphql.Result, fragment string) bool {
	for _, err := range result.Errors {
		if strings.Contains(err.Message, fragment) {
			return true
		}
	}
	return false
}

func TestEntityGuardBlocksNonAdmin(t *testing.T) {
	schema := buildSchema(t, graph.DefaultGuards())

	result := execute(schema, identityCtx(domain.RoleUser), `{users {id email}}`)
	if !hasErrorContaining(result, "insufficient role") {
		t.Fatalf("expected role denial, got errors %v", result.Errors)
	}
}

func TestEntityGuardAllowsAdmin(t *testing.T) {
	schema := buildSchema(t, graph.DefaultGuards())

	result := execute(schema, identityCtx(domain.RoleAdmin), `{users {id email role status}}`)
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	data := result.Data.(map[string]interface{})
	users := data["users"].([]interface{})
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
}

func TestFieldGuardBlocksGatedFieldsOnly(t *testing.T) {
	// entity unguarded, role/status still admin-only
	guards := graph.NewGuardConfig()
	admin := graph.RequireRole(domain.RoleAdmin)
	guards.FieldGuard("users.role", admin)
	guards.FieldGuard("users.status", admin)
	schema := buildSchema(t, guards)

	open := execute(schema, identityCtx(domain.RoleUser), `{users {id email name}}`)
	if open.HasErrors() {
		t.Fatalf("ungated fields blocked: %v", open.Errors)
	}

	gated := execute(schema, identityCtx(domain.RoleUser), `{users {id role}}`)
	if !hasErrorContaining(gated, "insufficient role") {
		t.Fatalf("expected field denial, got errors %v", gated.Errors)
	}
}

func TestSingularQueryGuarded(t *testing.T) {
	schema := buildSchema(t, graph.DefaultGuards())

	query := `{user(id: "00000000-0000-0000-0000-000000000001") {id email}}`
	denied := execute(schema, identityCtx(domain.RoleUser), query)
	if !hasErrorContaining(denied, "insufficient role") {
		t.Fatalf("expected denial, got errors %v", denied.Errors)
	}

	allowed := execute(schema, identityCtx(domain.RoleAdmin), query)
	if allowed.HasErrors() {
		t.Fatalf("unexpected errors: %v", allowed.Errors)
	}
}

func TestGuardWithoutIdentityBlocks(t *testing.T) {
	schema := buildSchema(t, graph.DefaultGuards())

	result := execute(schema, context.Background(), `{users {id}}`)
	if !hasErrorContaining(result, "identity missing") {
		t.Fatalf("expected identity-missing denial, got errors %v", result.Errors)
	}
}

// Guard verdicts must match the REST role middleware for the same identity.
func TestGuardParityWithRoleMiddleware(t *testing.T) {
	guard := graph.RequireRole(domain.RoleAdmin)

	cases := []struct {
		role    domain.UserRole
		allowed bool
	}{
		{domain.RoleAdmin, true},
		{domain.RoleUser, false},
	}
	for _, tc := range cases {
		action := guard(identityCtx(tc.role))
		if action.Allowed() != tc.allowed {
			t.Errorf("role %q: allowed = %v, want %v", tc.role, action.Allowed(), tc.allowed)
		}
	}
}
