package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trentd187/cup-trip/internal/matchplay"
	"github.com/trentd187/cup-trip/internal/models"
)

// Totals is the serialized form of matchplay.TeamTotals.
type Totals struct {
	TeamA             decimal.Decimal `json:"team_a"`
	TeamB             decimal.Decimal `json:"team_b"`
	PointsAvailable   decimal.Decimal `json:"points_available"`
	MatchesFinished   int             `json:"matches_finished"`
	MatchesInProgress int             `json:"matches_in_progress"`
	Leader            matchplay.Side  `json:"leader,omitempty"`
}

func totalsFrom(t matchplay.TeamTotals) Totals {
	return Totals{
		TeamA:             t.TeamA,
		TeamB:             t.TeamB,
		PointsAvailable:   t.PointsAvailable,
		MatchesFinished:   t.MatchesFinished,
		MatchesInProgress: t.MatchesInProgress,
		Leader:            t.Leader(),
	}
}

// SessionStandings is the points tally of one session.
type SessionStandings struct {
	SessionID      uuid.UUID            `json:"session_id"`
	SessionNumber  int                  `json:"session_number"`
	Name           string               `json:"name"`
	Format         models.SessionFormat `json:"format"`
	PointsPerMatch decimal.Decimal      `json:"points_per_match"`
	Totals
}

// TripStandings is the cup score: the trip total plus a subtotal per session that has matches.
type TripStandings struct {
	TripID    uuid.UUID          `json:"trip_id"`
	Name      string             `json:"name"`
	TeamAName string             `json:"team_a_name"`
	TeamBName string             `json:"team_b_name"`
	Sessions  []SessionStandings `json:"sessions"`
	Totals
}

// SessionStandings rescores every match in a session from its ledger and sums the points.
func (s *Service) SessionStandings(ctx context.Context, sessionID uuid.UUID) (SessionStandings, error) {
	defer s.observe("session", time.Now())

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return SessionStandings{}, err
	}
	matches, err := s.repo.ListSessionMatches(ctx, session.ID)
	if err != nil {
		return SessionStandings{}, err
	}

	outcomes, err := matchOutcomes(matches)
	if err != nil {
		return SessionStandings{}, err
	}
	totals, err := matchplay.AggregateTeamTotals(outcomes)
	if err != nil {
		return SessionStandings{}, fmt.Errorf("aggregate session %s: %w", session.ID, err)
	}
	return sessionStandings(*session, totals), nil
}

// TripStandings rescores every match of every session in a trip and sums the points.
func (s *Service) TripStandings(ctx context.Context, tripID uuid.UUID) (TripStandings, error) {
	defer s.observe("trip", time.Now())

	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return TripStandings{}, err
	}
	matches, err := s.repo.ListTripMatches(ctx, trip.ID)
	if err != nil {
		return TripStandings{}, err
	}

	outcomes, err := matchOutcomes(matches)
	if err != nil {
		return TripStandings{}, err
	}
	standings, err := matchplay.AggregateStandings(outcomes)
	if err != nil {
		return TripStandings{}, fmt.Errorf("aggregate trip %s: %w", trip.ID, err)
	}

	sessions := make(map[uuid.UUID]models.Session, len(standings.Sessions))
	for _, m := range matches {
		sessions[m.SessionID] = m.Session
	}

	out := TripStandings{
		TripID:   trip.ID,
		Name:     trip.Name,
		Sessions: make([]SessionStandings, 0, len(standings.Sessions)),
		Totals:   totalsFrom(standings.Trip),
	}
	if team, ok := trip.TeamOn(models.TeamSideA); ok {
		out.TeamAName = team.Name
	}
	if team, ok := trip.TeamOn(models.TeamSideB); ok {
		out.TeamBName = team.Name
	}
	for _, st := range standings.Sessions {
		out.Sessions = append(out.Sessions, sessionStandings(sessions[st.SessionID], st.TeamTotals))
	}
	return out, nil
}

func (s *Service) observe(scope string, start time.Time) {
	s.metrics.ObserveStandings(scope, time.Since(start))
}

func sessionStandings(session models.Session, totals matchplay.TeamTotals) SessionStandings {
	return SessionStandings{
		SessionID:      session.ID,
		SessionNumber:  session.SessionNumber,
		Name:           session.Name,
		Format:         session.Format,
		PointsPerMatch: session.PointsPerMatch,
		Totals:         totalsFrom(totals),
	}
}

// matchOutcomes scores each match for aggregation. Cancelled matches are left out entirely:
// they neither award points nor count as points still available.
func matchOutcomes(matches []models.Match) ([]matchplay.MatchOutcome, error) {
	outcomes := make([]matchplay.MatchOutcome, 0, len(matches))
	for _, m := range matches {
		if m.Status == models.MatchStatusCancelled {
			continue
		}
		state, err := matchplay.ComputeMatchState(m.TotalHoles, models.EngineLedger(m.HoleResults))
		if err != nil {
			return nil, fmt.Errorf("score match %s: %w", m.ID, err)
		}
		outcomes = append(outcomes, matchplay.MatchOutcome{
			MatchID:        m.ID,
			SessionID:      m.SessionID,
			Result:         matchplay.ClassifyResult(state),
			PointsPerMatch: m.Session.PointsPerMatch,
		})
	}
	return outcomes, nil
}
