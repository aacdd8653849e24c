package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/cup-trip/internal/matchplay"
	"github.com/trentd187/cup-trip/internal/models"
	"github.com/trentd187/cup-trip/internal/scoring"
)

// Scorer is the scoring service as the handlers see it.
type Scorer interface {
	RecordHole(ctx context.Context, in scoring.RecordHoleInput) (scoring.MatchSummary, error)
	UndoLastHole(ctx context.Context, matchID uuid.UUID, actor scoring.Actor) (scoring.MatchSummary, error)
	MatchSummary(ctx context.Context, matchID uuid.UUID) (scoring.MatchSummary, error)
	SessionStandings(ctx context.Context, sessionID uuid.UUID) (scoring.SessionStandings, error)
	TripStandings(ctx context.Context, tripID uuid.UUID) (scoring.TripStandings, error)
}

// MatchResponse describes a newly created match.
type MatchResponse struct {
	ID             string      `json:"id"`
	SessionID      string      `json:"session_id"`
	MatchNumber    int         `json:"match_number"`
	TotalHoles     int         `json:"total_holes"`
	Status         string      `json:"status"`
	TeamAPlayerIDs []uuid.UUID `json:"team_a_player_ids"`
	TeamBPlayerIDs []uuid.UUID `json:"team_b_player_ids"`
}

// CreateMatchRequest is the JSON body for POST /api/v1/sessions/:sessionID/matches.
// Pairings may be left empty and filled in later; when given, each side must field exactly the
// number of players the session's format calls for.
type CreateMatchRequest struct {
	MatchNumber    int         `json:"match_number"` // Optional; 0 = next free number
	TotalHoles     int         `json:"total_holes"`  // Optional; defaults to 18
	TeamAPlayerIDs []uuid.UUID `json:"team_a_player_ids"`
	TeamBPlayerIDs []uuid.UUID `json:"team_b_player_ids"`
}

// RecordHoleRequest is the JSON body for POST /api/v1/matches/:matchID/holes.
// recorded_at is optional; devices syncing results entered offline send the original time.
type RecordHoleRequest struct {
	HoleNumber int              `json:"hole_number"`
	Winner     matchplay.Winner `json:"winner"` // "team_a", "team_b", or "halved"
	RecordedAt *time.Time       `json:"recorded_at"`
}

// CreateMatch returns a handler for POST /api/v1/sessions/:sessionID/matches.
// Requires "admin" or "captain".
func CreateMatch(s TripStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, ok, err := paramID(c, "sessionID")
		if !ok {
			return err
		}

		var req CreateMatchRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.TotalHoles == 0 {
			req.TotalHoles = matchplay.DefaultTotalHoles
		}
		if req.TotalHoles < 1 {
			return badRequest(c, "total_holes must be at least 1")
		}
		if req.MatchNumber < 0 {
			return badRequest(c, "match_number must not be negative")
		}

		session, err := s.GetSession(c.UserContext(), sessionID)
		if err != nil {
			return writeError(c, err)
		}
		players, msg := pairings(session.Format, req.TeamAPlayerIDs, req.TeamBPlayerIDs)
		if msg != "" {
			return badRequest(c, msg)
		}

		match := models.Match{
			SessionID:   sessionID,
			MatchNumber: req.MatchNumber,
			TotalHoles:  req.TotalHoles,
			Status:      models.MatchStatusScheduled,
			Players:     players,
		}
		if err := s.CreateMatch(c.UserContext(), &match); err != nil {
			return writeError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(MatchResponse{
			ID:             match.ID.String(),
			SessionID:      match.SessionID.String(),
			MatchNumber:    match.MatchNumber,
			TotalHoles:     match.TotalHoles,
			Status:         string(match.Status),
			TeamAPlayerIDs: match.TeamAPlayerIDs(),
			TeamBPlayerIDs: match.TeamBPlayerIDs(),
		})
	}
}

// pairings validates the two sides of a match against the session format.
// It returns a non-empty message when the request is invalid.
func pairings(format models.SessionFormat, teamA, teamB []uuid.UUID) ([]models.MatchPlayer, string) {
	if len(teamA) == 0 && len(teamB) == 0 {
		return nil, ""
	}
	want := format.PlayersPerSide()
	if len(teamA) != want || len(teamB) != want {
		if want == 1 {
			return nil, string(format) + " matches need 1 player per side"
		}
		return nil, string(format) + " matches need 2 players per side"
	}

	seen := make(map[uuid.UUID]bool, 2*want)
	players := make([]models.MatchPlayer, 0, 2*want)
	add := func(ids []uuid.UUID, side models.TeamSide) string {
		for _, id := range ids {
			if id == uuid.Nil {
				return "player IDs must not be empty"
			}
			if seen[id] {
				return "a player can only appear once in a match"
			}
			seen[id] = true
			players = append(players, models.MatchPlayer{UserID: id, Side: side})
		}
		return ""
	}
	if msg := add(teamA, models.TeamSideA); msg != "" {
		return nil, msg
	}
	if msg := add(teamB, models.TeamSideB); msg != "" {
		return nil, msg
	}
	return players, ""
}

// GetMatch returns a handler for GET /api/v1/matches/:matchID: the scored match summary.
func GetMatch(scorer Scorer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matchID, ok, err := paramID(c, "matchID")
		if !ok {
			return err
		}

		summary, err := scorer.MatchSummary(c.UserContext(), matchID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(summary)
	}
}

// RecordHole returns a handler for POST /api/v1/matches/:matchID/holes.
// Posting a result for a hole that already has one is a correction. Invalid input comes back
// as 400 with the offending field and nothing is stored.
func RecordHole(scorer Scorer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matchID, ok, err := paramID(c, "matchID")
		if !ok {
			return err
		}
		user, ok, err := actor(c)
		if !ok {
			return err
		}

		var req RecordHoleRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		in := scoring.RecordHoleInput{
			MatchID:    matchID,
			HoleNumber: req.HoleNumber,
			Winner:     req.Winner,
			Actor:      user,
		}
		if req.RecordedAt != nil {
			in.RecordedAt = *req.RecordedAt
		}

		summary, err := scorer.RecordHole(c.UserContext(), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(summary)
	}
}

// UndoLastHole returns a handler for DELETE /api/v1/matches/:matchID/holes/last.
// It removes the most recently submitted hole result; undoing a correction restores the
// result it replaced.
func UndoLastHole(scorer Scorer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matchID, ok, err := paramID(c, "matchID")
		if !ok {
			return err
		}
		user, ok, err := actor(c)
		if !ok {
			return err
		}

		summary, err := scorer.UndoLastHole(c.UserContext(), matchID, user)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(summary)
	}
}
