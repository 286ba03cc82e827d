package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/northgate-labs/user-service/internal/api/http/handlers"
	"github.com/northgate-labs/user-service/internal/auth"
	"github.com/northgate-labs/user-service/internal/domain"
	"github.com/northgate-labs/user-service/internal/graph"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Users           *handlers.UsersHandler
	GraphQL         *graph.Handler
	GraphQLEndpoint string
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Listing users only needs a valid
// token; changing a role additionally requires the Admin role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Show)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Destroy)
	users.Put("/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.Users.ChangeRole)

	endpoint := cfg.GraphQLEndpoint
	if endpoint == "" {
		endpoint = "/graphql"
	}
	app.Post(endpoint, cfg.AuthMiddleware.Handle, cfg.GraphQL.Post)
}
