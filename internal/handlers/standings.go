package handlers

import "github.com/gofiber/fiber/v2"

// SessionStandings returns a handler for GET /api/v1/sessions/:sessionID/standings.
// Standings are recomputed from every match ledger on each request.
func SessionStandings(scorer Scorer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, ok, err := paramID(c, "sessionID")
		if !ok {
			return err
		}

		standings, err := scorer.SessionStandings(c.UserContext(), sessionID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(standings)
	}
}

// TripStandings returns a handler for GET /api/v1/trips/:tripID/standings: the cup score with
// a subtotal per session.
func TripStandings(scorer Scorer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tripID, ok, err := paramID(c, "tripID")
		if !ok {
			return err
		}

		standings, err := scorer.TripStandings(c.UserContext(), tripID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(standings)
	}
}
