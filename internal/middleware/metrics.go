package middleware

import (
	"strings"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records HTTP metrics for API traffic. Probe and scrape
// requests are skipped so they do not drown out real traffic.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	record := prom.Middleware
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/metrics" || strings.HasPrefix(path, "/health") {
			return c.Next()
		}
		return record(c)
	}
}
