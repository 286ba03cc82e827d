package graph

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	apperrors "github.com/northgate-labs/user-service/pkg/util"
)

// Handler serves GraphQL POST requests. It assumes the auth middleware has
// already attached the identity to the request context.
type Handler struct {
	schema graphql.Schema
	logger *zap.Logger
}

// NewHandler builds the handler.
func NewHandler(schema graphql.Schema, logger *zap.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Post executes a GraphQL request. Guard denials travel inside the result's
// errors array with their error code in extensions; transport status stays
// 200 per GraphQL convention.
func (h *Handler) Post(c *fiber.Ctx) error {
	var req request
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid graphql request", nil)
	}
	if req.Query == "" {
		return apperrors.NewValidationError("query is required", nil)
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        c.UserContext(),
	})

	if result.HasErrors() {
		for _, gqlErr := range result.Errors {
			h.logger.Debug("graphql error", zap.String("message", gqlErr.Message))
		}
	}
	return c.JSON(result)
}
