package middleware

// roles.go: role-based access control.
// The app has three global roles: admin, captain, player. Captains and admins set up trips,
// sessions and matches; anyone can score a match they play in (checked by the scoring service).

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/cup-trip/internal/models"
)

// RequireRole returns a middleware handler that allows only users whose role is one of roles.
// It returns 403 Forbidden otherwise.
//
//	api.Post("/trips", middleware.RequireRole(models.UserRoleAdmin, models.UserRoleCaptain), handlers.CreateTrip(s))
//
// RequireRole must run after Auth, which is what stores the role in c.Locals.
func RequireRole(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals(LocalUserRole).(string)
		if !ok || userRole == "" {
			// No role means Auth did not run: deny with 403, not 401.
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		for _, role := range roles {
			if userRole == string(role) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient permissions",
		})
	}
}
