package scoring

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trentd187/cup-trip/internal/models"
	"github.com/trentd187/cup-trip/internal/store"
)

// fakeRepo is an in-memory Repository. Ledger rows keep insertion order, which stands in for
// created_at when undoing.
type fakeRepo struct {
	mu       sync.Mutex
	trips    map[uuid.UUID]models.Trip
	sessions map[uuid.UUID]models.Session
	matches  map[uuid.UUID]models.Match
	ledgers  map[uuid.UUID][]models.HoleResult
	arrivals time.Time

	statusErr error
	appended  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		trips:    make(map[uuid.UUID]models.Trip),
		sessions: make(map[uuid.UUID]models.Session),
		matches:  make(map[uuid.UUID]models.Match),
		ledgers:  make(map[uuid.UUID][]models.HoleResult),
		arrivals: time.Date(2026, 9, 25, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) addTrip(name, teamA, teamB string) models.Trip {
	trip := models.Trip{
		ID:   uuid.New(),
		Name: name,
		Teams: []models.Team{
			{Side: models.TeamSideA, Name: teamA},
			{Side: models.TeamSideB, Name: teamB},
		},
	}
	f.trips[trip.ID] = trip
	return trip
}

func (f *fakeRepo) addSession(tripID uuid.UUID, number int, ppm string) models.Session {
	session := models.Session{
		ID:             uuid.New(),
		TripID:         tripID,
		SessionNumber:  number,
		Name:           fmt.Sprintf("Session %d", number),
		Format:         models.SessionFormatFourball,
		PointsPerMatch: decimal.RequireFromString(ppm),
	}
	f.sessions[session.ID] = session
	return session
}

func (f *fakeRepo) addMatch(sessionID uuid.UUID, number int, players ...models.MatchPlayer) models.Match {
	match := models.Match{
		ID:          uuid.New(),
		SessionID:   sessionID,
		MatchNumber: number,
		TotalHoles:  18,
		Status:      models.MatchStatusScheduled,
		Players:     players,
	}
	f.matches[match.ID] = match
	return match
}

func (f *fakeRepo) setStatus(id uuid.UUID, status models.MatchStatus) {
	m := f.matches[id]
	m.Status = status
	f.matches[id] = m
}

func (f *fakeRepo) ledger(matchID uuid.UUID) []models.HoleResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ledgers[matchID])
}

func (f *fakeRepo) GetTrip(_ context.Context, id uuid.UUID) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[id]
	if !ok {
		return nil, fmt.Errorf("trip %s: %w", id, store.ErrNotFound)
	}
	return &trip, nil
}

func (f *fakeRepo) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return &session, nil
}

func (f *fakeRepo) GetMatch(_ context.Context, id uuid.UUID) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	match, ok := f.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, store.ErrNotFound)
	}
	match.Session = f.sessions[match.SessionID]
	return &match, nil
}

func (f *fakeRepo) UpdateMatchStatus(_ context.Context, id uuid.UUID, status models.MatchStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	match, ok := f.matches[id]
	if !ok {
		return fmt.Errorf("match %s: %w", id, store.ErrNotFound)
	}
	match.Status = status
	f.matches[id] = match
	return nil
}

func (f *fakeRepo) ListSessionMatches(_ context.Context, sessionID uuid.UUID) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collect(func(m models.Match) bool { return m.SessionID == sessionID }), nil
}

func (f *fakeRepo) ListTripMatches(_ context.Context, tripID uuid.UUID) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collect(func(m models.Match) bool { return f.sessions[m.SessionID].TripID == tripID }), nil
}

func (f *fakeRepo) collect(keep func(models.Match) bool) []models.Match {
	var out []models.Match
	for _, m := range f.matches {
		if !keep(m) {
			continue
		}
		m.Session = f.sessions[m.SessionID]
		m.HoleResults = slices.Clone(f.ledgers[m.ID])
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b models.Match) int {
		if c := cmp.Compare(a.Session.SessionNumber, b.Session.SessionNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.MatchNumber, b.MatchNumber)
	})
	return out
}

func (f *fakeRepo) ListHoleResults(_ context.Context, matchID uuid.UUID) ([]models.HoleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ledgers[matchID]), nil
}

// AppendHoleResult holds the repo lock across accept, like the match row lock, and stores
// RecordedAt at microsecond precision, like a timestamptz column.
func (f *fakeRepo) AppendHoleResult(_ context.Context, row *models.HoleResult, accept func([]models.HoleResult) error) ([]models.HoleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.matches[row.MatchID]; !ok {
		return nil, fmt.Errorf("match %s: %w", row.MatchID, store.ErrNotFound)
	}
	ledger := slices.Clone(f.ledgers[row.MatchID])
	if accept != nil {
		if err := accept(ledger); err != nil {
			return nil, err
		}
	}
	f.arrivals = f.arrivals.Add(time.Second)
	row.ID = uuid.New()
	row.CreatedAt = f.arrivals
	stored := *row
	stored.RecordedAt = stored.RecordedAt.Truncate(time.Microsecond)
	f.ledgers[row.MatchID] = append(f.ledgers[row.MatchID], stored)
	f.appended++
	return ledger, nil
}

func (f *fakeRepo) DeleteLatestHoleResult(_ context.Context, matchID uuid.UUID) (*models.HoleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.ledgers[matchID]
	if len(rows) == 0 {
		return nil, fmt.Errorf("ledger entry for match %s: %w", matchID, store.ErrNotFound)
	}
	last := rows[len(rows)-1]
	f.ledgers[matchID] = rows[:len(rows)-1]
	return &last, nil
}

type broadcast struct {
	matchID string
	data    []byte
}

type fakeLive struct {
	mu   sync.Mutex
	sent []broadcast
}

func (l *fakeLive) BroadcastToMatch(matchID string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, broadcast{matchID: matchID, data: data})
}

func (l *fakeLive) messages() []broadcast {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.sent)
}
