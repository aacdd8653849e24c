package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/trentd187/cup-trip/internal/models"
)

var maxPointsPerMatch = decimal.NewFromInt(1000)

// SessionResponse describes one session of a trip.
type SessionResponse struct {
	ID             string          `json:"id"`
	TripID         string          `json:"trip_id"`
	SessionNumber  int             `json:"session_number"`
	Name           string          `json:"name"`
	Format         string          `json:"format"`           // "singles", "foursomes", or "fourball"
	PointsPerMatch decimal.Decimal `json:"points_per_match"` // Serialised as a string, e.g. "0.5"
	CreatedAt      string          `json:"created_at"`
}

// CreateSessionRequest is the JSON body for POST /api/v1/trips/:tripID/sessions.
// points_per_match accepts a JSON number or a decimal string; it defaults to 1.
type CreateSessionRequest struct {
	Name           string           `json:"name"`
	Format         string           `json:"format"`
	PointsPerMatch *decimal.Decimal `json:"points_per_match"`
	SessionNumber  int              `json:"session_number"` // Optional; 0 = next free number
}

func sessionResponse(s models.Session) SessionResponse {
	return SessionResponse{
		ID:             s.ID.String(),
		TripID:         s.TripID.String(),
		SessionNumber:  s.SessionNumber,
		Name:           s.Name,
		Format:         string(s.Format),
		PointsPerMatch: s.PointsPerMatch,
		CreatedAt:      s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateSession returns a handler for POST /api/v1/trips/:tripID/sessions.
// Requires "admin" or "captain".
func CreateSession(s TripStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tripID, ok, err := paramID(c, "tripID")
		if !ok {
			return err
		}

		var req CreateSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return badRequest(c, "name is required")
		}
		format := models.SessionFormat(req.Format)
		if !format.Valid() {
			return badRequest(c, "format must be 'singles', 'foursomes', or 'fourball'")
		}
		points := decimal.NewFromInt(1)
		if req.PointsPerMatch != nil {
			points = *req.PointsPerMatch
		}
		if !points.IsPositive() {
			return badRequest(c, "points_per_match must be greater than zero")
		}
		// The column is numeric(6,3).
		if !points.Equal(points.Round(3)) || points.GreaterThanOrEqual(maxPointsPerMatch) {
			return badRequest(c, "points_per_match must be below 1000 with at most three decimal places")
		}
		if req.SessionNumber < 0 {
			return badRequest(c, "session_number must not be negative")
		}

		// Resolve the trip first so a bad ID is a clean 404 rather than a foreign key error.
		if _, err := s.GetTrip(c.UserContext(), tripID); err != nil {
			return writeError(c, err)
		}

		session := models.Session{
			TripID:         tripID,
			SessionNumber:  req.SessionNumber,
			Name:           req.Name,
			Format:         format,
			PointsPerMatch: points,
		}
		if err := s.CreateSession(c.UserContext(), &session); err != nil {
			return writeError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(sessionResponse(session))
	}
}
