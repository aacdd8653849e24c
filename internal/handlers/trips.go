// Package handlers contains HTTP route handler functions for the Cup Trip API.
// This file handles the /api/v1/trips routes: listing and creating trips.
//
// A "trip" is the top-level container for a Ryder-Cup-style golf weekend: two teams play a
// series of sessions, and every match won, lost or halved moves points onto the board.
//
// Each exported function follows the "handler factory" pattern: it takes its dependencies
// (a store, the scoring service, the hub) and returns a fiber.Handler. Dependencies are
// narrow interfaces so handlers can be tested with in-memory fakes.
//
// --- Permission model ---
//  1. Route-level (middleware.RequireRole): only admins and captains create trips, sessions
//     and matches. Any authenticated user can read.
//  2. Resource-level (scoring service): players may only score matches they play in;
//     admins and captains may score any match.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/cup-trip/internal/models"
)

// TripStore is the persistence the trip, session and match setup handlers need.
type TripStore interface {
	CreateTrip(ctx context.Context, trip *models.Trip, teamAName, teamBName string) error
	ListTrips(ctx context.Context, userID uuid.UUID, all bool) ([]models.Trip, error)
	GetTrip(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	CreateMatch(ctx context.Context, match *models.Match) error
}

// TripResponse is what we send back to the mobile app.
// A dedicated response struct (instead of the raw GORM model) controls exactly which fields are
// serialised to JSON.
type TripResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StartDate   *string `json:"start_date"` // ISO 8601 date string or null
	EndDate     *string `json:"end_date"`
	TeamAName   string  `json:"team_a_name"`
	TeamBName   string  `json:"team_b_name"`
	CreatorName string  `json:"creator_name"`
	CreatedAt   string  `json:"created_at"` // ISO 8601 timestamp string
}

// CreateTripRequest is the JSON body we expect on POST /api/v1/trips.
type CreateTripRequest struct {
	Name      string  `json:"name"`        // Required
	StartDate *string `json:"start_date"`  // Optional: "YYYY-MM-DD"
	EndDate   *string `json:"end_date"`    // Optional: "YYYY-MM-DD"
	TeamAName string  `json:"team_a_name"` // Defaults to "Team A"
	TeamBName string  `json:"team_b_name"` // Defaults to "Team B"
}

// formatOptionalDate converts a *time.Time to a *string in "2006-01-02" format.
// Returns nil if the input is nil, keeping the field nullable in the JSON response.
func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}

// parseOptionalDate parses an optional "YYYY-MM-DD" string into a *time.Time.
// Returns nil for a nil or empty string and an error for a malformed one.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func tripResponse(trip models.Trip) TripResponse {
	resp := TripResponse{
		ID:          trip.ID.String(),
		Name:        trip.Name,
		StartDate:   formatOptionalDate(trip.StartDate),
		EndDate:     formatOptionalDate(trip.EndDate),
		CreatorName: trip.Creator.DisplayName,
		CreatedAt:   trip.CreatedAt.UTC().Format(time.RFC3339),
	}
	if team, ok := trip.TeamOn(models.TeamSideA); ok {
		resp.TeamAName = team.Name
	}
	if team, ok := trip.TeamOn(models.TeamSideB); ok {
		resp.TeamBName = team.Name
	}
	return resp
}

// ListTrips returns a handler for GET /api/v1/trips.
// Admins see every trip; everyone else sees trips they created or play in.
func ListTrips(s TripStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok, err := actor(c)
		if !ok {
			return err
		}

		trips, err := s.ListTrips(c.UserContext(), user.UserID, user.Role == models.UserRoleAdmin)
		if err != nil {
			return writeError(c, err)
		}

		response := make([]TripResponse, 0, len(trips))
		for _, trip := range trips {
			response = append(response, tripResponse(trip))
		}
		return c.JSON(response)
	}
}

// CreateTrip returns a handler for POST /api/v1/trips.
// Requires "admin" or "captain" (enforced by RequireRole on the route). The trip and its two
// teams are created together.
func CreateTrip(s TripStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok, err := actor(c)
		if !ok {
			return err
		}

		var req CreateTripRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return badRequest(c, "name is required")
		}
		teamA := strings.TrimSpace(req.TeamAName)
		if teamA == "" {
			teamA = "Team A"
		}
		teamB := strings.TrimSpace(req.TeamBName)
		if teamB == "" {
			teamB = "Team B"
		}
		if strings.EqualFold(teamA, teamB) {
			return badRequest(c, "team names must differ")
		}

		startDate, err := parseOptionalDate(req.StartDate)
		if err != nil {
			return badRequest(c, "start_date must be in YYYY-MM-DD format")
		}
		endDate, err := parseOptionalDate(req.EndDate)
		if err != nil {
			return badRequest(c, "end_date must be in YYYY-MM-DD format")
		}
		if startDate != nil && endDate != nil && endDate.Before(*startDate) {
			return badRequest(c, "end_date must not be before start_date")
		}

		trip := models.Trip{
			Name:      req.Name,
			StartDate: startDate,
			EndDate:   endDate,
			CreatedBy: user.UserID,
		}
		if err := s.CreateTrip(c.UserContext(), &trip, teamA, teamB); err != nil {
			return writeError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(tripResponse(trip))
	}
}
