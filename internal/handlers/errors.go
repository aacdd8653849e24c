package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trentd187/cup-trip/internal/matchplay"
	"github.com/trentd187/cup-trip/internal/middleware"
	"github.com/trentd187/cup-trip/internal/scoring"
	"github.com/trentd187/cup-trip/internal/store"
)

// writeError maps domain errors onto HTTP statuses:
//   - matchplay.ValidationError -> 400, with the offending field
//   - store.ErrNotFound -> 404
//   - scoring.ErrForbidden -> 403
//   - scoring.ErrMatchCancelled, scoring.ErrNothingToUndo -> 409
//
// Anything else is logged and reported as a bare 500 so internals don't leak to clients.
func writeError(c *fiber.Ctx, err error) error {
	var verr *matchplay.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": verr.Error(),
			"field": verr.Field,
		})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, scoring.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": scoring.ErrForbidden.Error()})
	case errors.Is(err, scoring.ErrMatchCancelled), errors.Is(err, scoring.ErrNothingToUndo):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	zerolog.Ctx(c.UserContext()).Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// paramID parses a UUID route parameter. ok is false when a 400 has already been written.
func paramID(c *fiber.Ctx, name string) (id uuid.UUID, ok bool, err error) {
	id, perr := uuid.Parse(c.Params(name))
	if perr != nil {
		return uuid.Nil, false, badRequest(c, name+" must be a UUID")
	}
	return id, true, nil
}

// actor reads the authenticated user. ok is false when a 401 has already been written.
func actor(c *fiber.Ctx) (a scoring.Actor, ok bool, err error) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		return scoring.Actor{}, false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}
	return scoring.Actor{UserID: userID, Role: role}, true, nil
}
