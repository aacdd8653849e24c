package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trentd187/cup-trip/internal/models"
	"github.com/trentd187/cup-trip/internal/scoring"
	"github.com/trentd187/cup-trip/internal/store"
)

var createdAt = time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)

type listCall struct {
	userID uuid.UUID
	all    bool
}

type fakeTripStore struct {
	trips    map[uuid.UUID]models.Trip
	sessions map[uuid.UUID]models.Session

	listCalls []listCall
	created   []models.Trip
	teamNames [][2]string
	newSess   []models.Session
	newMatch  []models.Match
	err       error
}

func newFakeTripStore() *fakeTripStore {
	return &fakeTripStore{
		trips:    make(map[uuid.UUID]models.Trip),
		sessions: make(map[uuid.UUID]models.Session),
	}
}

func (f *fakeTripStore) CreateTrip(_ context.Context, trip *models.Trip, teamAName, teamBName string) error {
	if f.err != nil {
		return f.err
	}
	trip.ID = uuid.New()
	trip.CreatedAt = createdAt
	trip.Teams = []models.Team{
		{TripID: trip.ID, Side: models.TeamSideA, Name: teamAName},
		{TripID: trip.ID, Side: models.TeamSideB, Name: teamBName},
	}
	f.created = append(f.created, *trip)
	f.teamNames = append(f.teamNames, [2]string{teamAName, teamBName})
	f.trips[trip.ID] = *trip
	return nil
}

func (f *fakeTripStore) ListTrips(_ context.Context, userID uuid.UUID, all bool) ([]models.Trip, error) {
	f.listCalls = append(f.listCalls, listCall{userID: userID, all: all})
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Trip
	for _, t := range f.trips {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTripStore) GetTrip(_ context.Context, id uuid.UUID) (*models.Trip, error) {
	t, ok := f.trips[id]
	if !ok {
		return nil, fmt.Errorf("trip %s: %w", id, store.ErrNotFound)
	}
	return &t, nil
}

func (f *fakeTripStore) CreateSession(_ context.Context, session *models.Session) error {
	if f.err != nil {
		return f.err
	}
	session.ID = uuid.New()
	if session.SessionNumber == 0 {
		session.SessionNumber = len(f.newSess) + 1
	}
	session.CreatedAt = createdAt
	f.newSess = append(f.newSess, *session)
	return nil
}

func (f *fakeTripStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return &s, nil
}

func (f *fakeTripStore) CreateMatch(_ context.Context, match *models.Match) error {
	if f.err != nil {
		return f.err
	}
	match.ID = uuid.New()
	if match.MatchNumber == 0 {
		match.MatchNumber = len(f.newMatch) + 1
	}
	f.newMatch = append(f.newMatch, *match)
	return nil
}

// fakeScorer returns canned results and remembers what it was asked.
type fakeScorer struct {
	summary  scoring.MatchSummary
	session  scoring.SessionStandings
	trip     scoring.TripStandings
	err      error
	recorded []scoring.RecordHoleInput
	undone   []scoring.Actor
	asked    []uuid.UUID
}

func (f *fakeScorer) RecordHole(_ context.Context, in scoring.RecordHoleInput) (scoring.MatchSummary, error) {
	f.recorded = append(f.recorded, in)
	return f.summary, f.err
}

func (f *fakeScorer) UndoLastHole(_ context.Context, matchID uuid.UUID, actor scoring.Actor) (scoring.MatchSummary, error) {
	f.asked = append(f.asked, matchID)
	f.undone = append(f.undone, actor)
	return f.summary, f.err
}

func (f *fakeScorer) MatchSummary(_ context.Context, matchID uuid.UUID) (scoring.MatchSummary, error) {
	f.asked = append(f.asked, matchID)
	return f.summary, f.err
}

func (f *fakeScorer) SessionStandings(_ context.Context, sessionID uuid.UUID) (scoring.SessionStandings, error) {
	f.asked = append(f.asked, sessionID)
	return f.session, f.err
}

func (f *fakeScorer) TripStandings(_ context.Context, tripID uuid.UUID) (scoring.TripStandings, error) {
	f.asked = append(f.asked, tripID)
	return f.trip, f.err
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }
