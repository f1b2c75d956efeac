package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is where the scrape endpoint is mounted on the portal app.
const MetricsPath = "/metrics"

// MetricsHandler serves the Prometheus scrape endpoint for the portal
// collectors. Registration is idempotent, so the handler can be mounted
// from tests as well as main.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
