package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	httptransport "github.com/northgate-labs/user-service/internal/api/http"
	"github.com/northgate-labs/user-service/internal/observability"
	apperrors "github.com/northgate-labs/user-service/pkg/util"
)

// The request log and counters must carry the status the client received,
// including statuses produced by the error mapper.
func TestRequestLogCarriesMappedErrorStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	app.Get("/denied", func(c *fiber.Ctx) error {
		return apperrors.NewUnauthorized("missing authorization header")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/denied", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d request log entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(http.StatusUnauthorized) {
		t.Errorf("logged status = %v, want 401", got)
	}

	snap := metrics.Snapshot()
	if snap.Requests["/denied|GET|401"] != 1 {
		t.Errorf("request counters = %v, want /denied|GET|401 = 1", snap.Requests)
	}
	if snap.Errors["/denied|GET|UNAUTHORIZED"] != 1 {
		t.Errorf("error counters = %v, want /denied|GET|UNAUTHORIZED = 1", snap.Errors)
	}
}
