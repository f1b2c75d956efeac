package unit_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-api/internal/config"
	"github.com/campushub/portal-api/internal/handler"
)

func TestHealthCheckReportsServiceMetadata(t *testing.T) {
	cfg := config.Config{AppName: "Campus Portal", AppEnv: "test"}

	app := fiber.New()
	app.Get("/health", handler.HealthCheck(cfg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
		Message string                 `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	require.True(t, payload.Success)
	require.Equal(t, "ok", payload.Data.Status)
	require.Equal(t, "Campus Portal", payload.Data.Service)
	require.Equal(t, "test", payload.Data.Environment)
	require.GreaterOrEqual(t, payload.Data.UptimeSeconds, int64(0))
	require.False(t, payload.Data.Timestamp.IsZero())
}
