// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, default values, and relationships.
//
// The data model represents a Ryder-Cup-style golf trip:
//   - A Trip is played between exactly two Teams (side "team_a" and side "team_b")
//   - A Trip is split into Sessions (e.g. "Friday foursomes"), each worth a fixed number of points per match
//   - A Session contains Matches, each with players from both sides
//   - A Match has a ledger of HoleResults: who won each hole, and when it was recorded
//
// Hole results are never edited in place. A correction is a new row for the same hole with a later
// recorded_at, and the scoring engine picks the latest one. Match status is advisory: it is written
// by the scoring service after the engine reports a result, never read back to derive scores.
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys.
	"github.com/google/uuid"
	// decimal stores points exactly: a half-point session must add up to exact halves.
	"github.com/shopspring/decimal"

	"github.com/trentd187/cup-trip/internal/matchplay"
)

// --- Enums ---
// Go doesn't have a built-in enum keyword, so we simulate them using a named string type
// plus constants. Each one is mirrored by a Postgres enum type created in the migrations.

// UserRole represents a user's global permission level.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"   // Full access to every trip
	UserRoleCaptain UserRole = "captain" // Can create trips, sessions and matches
	UserRolePlayer  UserRole = "player"  // Can record holes in matches
)

// TeamSide says which of the two sides of a trip a team plays as.
// The values line up with matchplay.Side so a team can be matched to engine output directly.
type TeamSide string

const (
	TeamSideA TeamSide = TeamSide(matchplay.SideTeamA)
	TeamSideB TeamSide = TeamSide(matchplay.SideTeamB)
)

// SessionFormat is the team format played in every match of a session.
type SessionFormat string

const (
	SessionFormatSingles   SessionFormat = "singles"   // One player per side
	SessionFormatFoursomes SessionFormat = "foursomes" // Two per side, alternate shot
	SessionFormatFourball  SessionFormat = "fourball"  // Two per side, best ball
)

// Valid reports whether f is a known session format.
func (f SessionFormat) Valid() bool {
	switch f {
	case SessionFormatSingles, SessionFormatFoursomes, SessionFormatFourball:
		return true
	}
	return false
}

// PlayersPerSide is how many players each side fields in this format.
func (f SessionFormat) PlayersPerSide() int {
	if f == SessionFormatSingles {
		return 1
	}
	return 2
}

// MatchStatus is advisory metadata about a match's lifecycle.
type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"   // No holes recorded yet
	MatchStatusInProgress MatchStatus = "in_progress" // Holes recorded, no result yet
	MatchStatusFinal      MatchStatus = "final"       // The engine reported a decided or halved result
	MatchStatusCancelled  MatchStatus = "cancelled"   // Will not be played; excluded from standings
)

// --- Models ---

// User represents a registered person in the system.
// Users are created automatically the first time a Clerk-authenticated user hits the API.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClerkID     *string   `gorm:"uniqueIndex:idx_users_clerk_id"` // Clerk's user ID; pointer = nullable
	DisplayName string    `gorm:"not null"`
	Email       string    `gorm:"uniqueIndex;not null"`
	Role        UserRole  `gorm:"type:user_role;not null;default:'player'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Trip is the top-level container: one cup contested between two teams over several sessions.
type Trip struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `gorm:"not null"`
	StartDate *time.Time // Optional; pointer = nullable
	EndDate   *time.Time
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	Creator   User      `gorm:"foreignKey:CreatedBy"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Teams     []Team    `gorm:"foreignKey:TripID"`
	Sessions  []Session `gorm:"foreignKey:TripID"`
}

// TeamOn returns the trip's team for a side, if the Teams relation was loaded.
func (t Trip) TeamOn(side TeamSide) (Team, bool) {
	for _, team := range t.Teams {
		if team.Side == side {
			return team, true
		}
	}
	return Team{}, false
}

// Team is one of the two sides of a trip. The unique index keeps it to one team per side.
type Team struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TripID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_trip_side"`
	Side      TeamSide  `gorm:"type:team_side;not null;uniqueIndex:idx_trip_side"`
	Name      string    `gorm:"not null"` // e.g. "USA", "Europe", "The Shankers"
	CreatedAt time.Time
}

// Session is a block of matches played in the same format, e.g. "Saturday AM fourball".
// PointsPerMatch is what each match in the session is worth (typically 1 or 0.5).
type Session struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TripID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_trip_session_number"`
	Trip           Trip            `gorm:"foreignKey:TripID"`
	SessionNumber  int             `gorm:"not null;uniqueIndex:idx_trip_session_number"` // Display order within the trip
	Name           string          `gorm:"not null"`
	Format         SessionFormat   `gorm:"type:session_format;not null"`
	PointsPerMatch decimal.Decimal `gorm:"type:numeric(6,3);not null;default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Matches        []Match `gorm:"foreignKey:SessionID"`
}

// Match is one head-to-head contest inside a session.
// TotalHoles is fixed when the match is created (conventionally 18).
type Match struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_session_match_number"`
	Session     Session       `gorm:"foreignKey:SessionID"`
	MatchNumber int           `gorm:"not null;uniqueIndex:idx_session_match_number"`
	TotalHoles  int           `gorm:"not null;default:18"`
	Status      MatchStatus   `gorm:"type:match_status;not null;default:'scheduled'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Players     []MatchPlayer `gorm:"foreignKey:MatchID"`
	HoleResults []HoleResult  `gorm:"foreignKey:MatchID"`
}

// TeamAPlayerIDs returns the user IDs playing for team A, if Players was loaded.
func (m Match) TeamAPlayerIDs() []uuid.UUID { return m.playerIDs(TeamSideA) }

// TeamBPlayerIDs returns the user IDs playing for team B, if Players was loaded.
func (m Match) TeamBPlayerIDs() []uuid.UUID { return m.playerIDs(TeamSideB) }

func (m Match) playerIDs(side TeamSide) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.Players))
	for _, p := range m.Players {
		if p.Side == side {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// MatchPlayer is a join table placing a user on one side of a match.
// Composite primary key prevents the same user appearing twice in one match.
type MatchPlayer struct {
	MatchID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	User    User      `gorm:"foreignKey:UserID"`
	Side    TeamSide  `gorm:"type:team_side;not null"`
}

// HoleResult is one row of a match's ledger: the outcome of one hole as recorded at RecordedAt.
// There is deliberately no unique index on (match_id, hole_number): a corrected hole gets a new
// row and the older one stays as history.
type HoleResult struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MatchID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_hole_results_match"`
	HoleNumber int              `gorm:"not null"`
	Winner     matchplay.Winner `gorm:"type:hole_winner;not null"`
	RecordedAt time.Time        `gorm:"not null;index:idx_hole_results_match"`
	RecordedBy uuid.UUID        `gorm:"type:uuid;not null"` // Which user entered the result
	Recorder   User             `gorm:"foreignKey:RecordedBy"`
	// CreatedAt is when the row reached the server. RecordedAt may be earlier for results
	// synced from an offline device; undo removes the row with the latest CreatedAt.
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ToEngine converts a ledger row into the engine's HoleResult.
func (h HoleResult) ToEngine() matchplay.HoleResult {
	return matchplay.HoleResult{
		MatchID:    h.MatchID,
		HoleNumber: h.HoleNumber,
		Winner:     h.Winner,
		RecordedAt: h.RecordedAt,
	}
}

// EngineLedger converts a match's ledger rows for the scoring engine.
func EngineLedger(rows []HoleResult) []matchplay.HoleResult {
	out := make([]matchplay.HoleResult, len(rows))
	for i, r := range rows {
		out[i] = r.ToEngine()
	}
	return out
}
