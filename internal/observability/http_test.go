package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesPortalCollectors(t *testing.T) {
	app := fiber.New()
	app.Get(MetricsPath, MetricsHandler())

	Requests().WithLabelValues("GET", "/api/courses", "200").Inc()
	Latency().WithLabelValues("GET", "/api/courses").Observe(0.05)

	resp, err := app.Test(httptest.NewRequest("GET", MetricsPath, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Contains(t, string(body), "portal_requests_total")
	require.Contains(t, string(body), "portal_latency_seconds")
}
