package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campushub/portal-api/internal/config"
	"github.com/campushub/portal-api/internal/utils"
)

var processStart = time.Now()

// HealthResponse is the liveness payload exposed for load balancers and
// uptime monitoring.
type HealthResponse struct {
	Status        string    `json:"status"`
	Service       string    `json:"service"`
	Environment   string    `json:"environment"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}

// HealthCheck reports the portal's identity and uptime.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "service healthy", HealthResponse{
			Status:        "ok",
			Service:       cfg.AppName,
			Environment:   cfg.AppEnv,
			UptimeSeconds: int64(time.Since(processStart).Seconds()),
			Timestamp:     time.Now().UTC(),
		})
	}
}
