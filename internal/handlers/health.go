package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck handles GET /health.
// It returns a simple JSON response indicating the server is alive. No database queries and no
// authentication, so container liveness probes and load balancers can hit it cheaply.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Pinger is anything that can check its connection, e.g. *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Readiness returns a handler for GET /ready: 200 when the database answers within two seconds,
// 503 otherwise. Readiness probes use it to hold traffic back until Postgres is reachable.
func Readiness(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
