// Package store is the GORM-backed persistence layer for trips, sessions, matches and the
// hole-result ledger. It owns the ledger's write discipline: rows are appended, corrections are
// new rows, and undo removes only the most recently added row.
package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/cup-trip/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the GORM handle. All methods are safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// New returns a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", what, id, err)
}

// --- Users ---

// SyncUser finds the user with the given Clerk ID, creating it on first sight.
// An existing user's role is updated when the token carries an explicit role that differs.
func (s *Store) SyncUser(ctx context.Context, clerkID, email, name string, role models.UserRole, roleFromToken bool) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("clerk_id = ?", clerkID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{ClerkID: &clerkID, DisplayName: name, Email: email, Role: role}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}

	if roleFromToken && user.Role != role {
		if err := db.Model(&user).Update("role", role).Error; err != nil {
			return nil, fmt.Errorf("sync user role: %w", err)
		}
		user.Role = role
	}
	return &user, nil
}

// --- Trips ---

// CreateTrip inserts a trip together with its two teams in one transaction.
func (s *Store) CreateTrip(ctx context.Context, trip *models.Trip, teamAName, teamBName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip.Teams = nil
		if err := tx.Create(trip).Error; err != nil {
			return fmt.Errorf("create trip: %w", err)
		}

		teams := []models.Team{
			{TripID: trip.ID, Side: models.TeamSideA, Name: teamAName},
			{TripID: trip.ID, Side: models.TeamSideB, Name: teamBName},
		}
		if err := tx.Create(&teams).Error; err != nil {
			return fmt.Errorf("create teams: %w", err)
		}
		trip.Teams = teams
		return nil
	})
}

// ListTrips returns all trips for admins; for everyone else, the trips they created or play in.
func (s *Store) ListTrips(ctx context.Context, userID uuid.UUID, all bool) ([]models.Trip, error) {
	query := s.db.WithContext(ctx).Preload("Creator").Preload("Teams").Order("start_date DESC NULLS LAST, created_at DESC")
	if !all {
		query = query.Where(
			"trips.created_by = ? OR trips.id IN (?)",
			userID,
			s.db.Table("sessions").
				Select("sessions.trip_id").
				Joins("JOIN matches ON matches.session_id = sessions.id").
				Joins("JOIN match_players ON match_players.match_id = matches.id").
				Where("match_players.user_id = ?", userID),
		)
	}

	var trips []models.Trip
	if err := query.Find(&trips).Error; err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

// GetTrip loads a trip with its teams.
func (s *Store) GetTrip(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	if err := s.db.WithContext(ctx).Preload("Teams").First(&trip, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "trip", id)
	}
	return &trip, nil
}

// --- Sessions ---

// CreateSession inserts a session. A zero SessionNumber is assigned the next free number.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the trip row so concurrent creates cannot pick the same number.
		var trip models.Trip
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&trip, "id = ?", session.TripID).Error; err != nil {
			return notFound(err, "trip", session.TripID)
		}

		if session.SessionNumber == 0 {
			var last int
			if err := tx.Model(&models.Session{}).
				Where("trip_id = ?", session.TripID).
				Select("COALESCE(MAX(session_number), 0)").
				Scan(&last).Error; err != nil {
				return fmt.Errorf("next session number: %w", err)
			}
			session.SessionNumber = last + 1
		}

		if err := tx.Omit("Trip", "Matches").Create(session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
}

// GetSession loads a session.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "session", id)
	}
	return &session, nil
}

// --- Matches ---

// CreateMatch inserts a match and its players. A zero MatchNumber is assigned the next free number.
func (s *Store) CreateMatch(ctx context.Context, match *models.Match) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, "id = ?", match.SessionID).Error; err != nil {
			return notFound(err, "session", match.SessionID)
		}

		if match.MatchNumber == 0 {
			var last int
			if err := tx.Model(&models.Match{}).
				Where("session_id = ?", match.SessionID).
				Select("COALESCE(MAX(match_number), 0)").
				Scan(&last).Error; err != nil {
				return fmt.Errorf("next match number: %w", err)
			}
			match.MatchNumber = last + 1
		}

		players := match.Players
		match.Players = nil
		if err := tx.Omit("Session", "HoleResults").Create(match).Error; err != nil {
			return fmt.Errorf("create match: %w", err)
		}

		for i := range players {
			players[i].MatchID = match.ID
		}
		if len(players) > 0 {
			if err := tx.Omit("User").Create(&players).Error; err != nil {
				return fmt.Errorf("create match players: %w", err)
			}
		}
		match.Players = players
		match.Session = session
		return nil
	})
}

// GetMatch loads a match with its session and players.
func (s *Store) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := s.db.WithContext(ctx).
		Preload("Session").
		Preload("Players").
		First(&match, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "match", id)
	}
	return &match, nil
}

// UpdateMatchStatus writes the advisory status of a match.
func (s *Store) UpdateMatchStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Match{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update match %s status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListSessionMatches returns every match of a session with its session and full ledger.
func (s *Store) ListSessionMatches(ctx context.Context, sessionID uuid.UUID) ([]models.Match, error) {
	var matches []models.Match
	err := s.db.WithContext(ctx).
		Preload("Session").
		Preload("HoleResults", orderLedger).
		Where("session_id = ?", sessionID).
		Order("match_number").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("list session %s matches: %w", sessionID, err)
	}
	return matches, nil
}

// ListTripMatches returns every match of every session of a trip, ordered by session then match.
func (s *Store) ListTripMatches(ctx context.Context, tripID uuid.UUID) ([]models.Match, error) {
	db := s.db.WithContext(ctx)

	var matches []models.Match
	err := db.
		Preload("Session").
		Preload("HoleResults", orderLedger).
		Where("session_id IN (?)", db.Model(&models.Session{}).Select("id").Where("trip_id = ?", tripID)).
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("list trip %s matches: %w", tripID, err)
	}

	slices.SortFunc(matches, func(a, b models.Match) int {
		if c := cmp.Compare(a.Session.SessionNumber, b.Session.SessionNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.MatchNumber, b.MatchNumber)
	})
	return matches, nil
}

// --- Ledger ---

func orderLedger(db *gorm.DB) *gorm.DB {
	return db.Order("recorded_at, created_at")
}

// ListHoleResults returns a match's full ledger, superseded rows included.
func (s *Store) ListHoleResults(ctx context.Context, matchID uuid.UUID) ([]models.HoleResult, error) {
	var rows []models.HoleResult
	if err := orderLedger(s.db.WithContext(ctx)).Where("match_id = ?", matchID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list match %s ledger: %w", matchID, err)
	}
	return rows, nil
}

// AppendHoleResult appends row to its match's ledger inside a transaction that holds the match
// row locked. accept, when non-nil, sees the ledger as it stands under the lock and vetoes the
// append by returning an error, which is passed back unchanged. The returned ledger is the one
// accept saw, without row.
func (s *Store) AppendHoleResult(ctx context.Context, row *models.HoleResult, accept func(ledger []models.HoleResult) error) ([]models.HoleResult, error) {
	var ledger []models.HoleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockMatch(tx, row.MatchID); err != nil {
			return err
		}
		if err := orderLedger(tx).Where("match_id = ?", row.MatchID).Find(&ledger).Error; err != nil {
			return fmt.Errorf("list match %s ledger: %w", row.MatchID, err)
		}
		if accept != nil {
			if err := accept(ledger); err != nil {
				return err
			}
		}
		if err := tx.Omit("Recorder").Create(row).Error; err != nil {
			return fmt.Errorf("append hole result: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// lockMatch takes a row lock on a match so ledger writes for it are serialized.
func lockMatch(tx *gorm.DB, matchID uuid.UUID) error {
	var match models.Match
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&match, "id = ?", matchID).Error
	if err != nil {
		return notFound(err, "match", matchID)
	}
	return nil
}

// DeleteLatestHoleResult removes the most recently added ledger row of a match and returns it.
// It returns ErrNotFound when the ledger is empty.
func (s *Store) DeleteLatestHoleResult(ctx context.Context, matchID uuid.UUID) (*models.HoleResult, error) {
	var row models.HoleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockMatch(tx, matchID); err != nil {
			return err
		}
		err := tx.Where("match_id = ?", matchID).
			Order("created_at DESC, recorded_at DESC").
			First(&row).Error
		if err != nil {
			return notFound(err, "ledger entry for match", matchID)
		}
		return tx.Delete(&models.HoleResult{}, "id = ?", row.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}
