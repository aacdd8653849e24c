package scoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trentd187/cup-trip/internal/matchplay"
	"github.com/trentd187/cup-trip/internal/models"
)

// MatchSummary is the scored view of one match, served by the API and pushed over the hub.
// Points serialize as decimal strings.
type MatchSummary struct {
	MatchID        uuid.UUID          `json:"match_id"`
	SessionID      uuid.UUID          `json:"session_id"`
	MatchNumber    int                `json:"match_number"`
	Status         models.MatchStatus `json:"status"`
	TeamAPlayerIDs []uuid.UUID        `json:"team_a_player_ids"`
	TeamBPlayerIDs []uuid.UUID        `json:"team_b_player_ids"`

	TotalHoles     int            `json:"total_holes"`
	HolesPlayed    int            `json:"holes_played"`
	HolesRemaining int            `json:"holes_remaining"`
	CurrentScore   int            `json:"current_score"`
	Leader         matchplay.Side `json:"leader,omitempty"`
	IsDormie       bool           `json:"is_dormie"`
	IsClosedOut    bool           `json:"is_closed_out"`

	Outcome matchplay.Outcome `json:"outcome"`
	Result  string            `json:"result,omitempty"` // "3&2", "1 UP", "Halved"
	Running string            `json:"running"`          // "2 UP thru 7"
	Holes   []HoleSummary     `json:"holes"`            // Effective result per played hole

	PointsPerMatch decimal.Decimal `json:"points_per_match"`
	TeamAPoints    decimal.Decimal `json:"team_a_points"`
	TeamBPoints    decimal.Decimal `json:"team_b_points"`

	State       matchplay.MatchState  `json:"-"`
	MatchResult matchplay.MatchResult `json:"-"`
}

// HoleSummary is the effective result of one played hole.
type HoleSummary struct {
	HoleNumber int              `json:"hole_number"`
	Winner     matchplay.Winner `json:"winner"`
	RecordedAt time.Time        `json:"recorded_at"`
}

func newMatchSummary(match *models.Match, ledger []models.HoleResult, score matchplay.MatchScore) (MatchSummary, error) {
	effective, err := matchplay.EffectiveResults(match.TotalHoles, models.EngineLedger(ledger))
	if err != nil {
		return MatchSummary{}, fmt.Errorf("effective results for match %s: %w", match.ID, err)
	}
	holes := make([]HoleSummary, len(effective))
	for i, h := range effective {
		holes[i] = HoleSummary{HoleNumber: h.HoleNumber, Winner: h.Winner, RecordedAt: h.RecordedAt}
	}

	st := score.State
	return MatchSummary{
		MatchID:        match.ID,
		SessionID:      match.SessionID,
		MatchNumber:    match.MatchNumber,
		Status:         match.Status,
		TeamAPlayerIDs: match.TeamAPlayerIDs(),
		TeamBPlayerIDs: match.TeamBPlayerIDs(),
		TotalHoles:     st.TotalHoles,
		HolesPlayed:    st.HolesPlayed,
		HolesRemaining: st.HolesRemaining,
		CurrentScore:   st.CurrentScore,
		Leader:         st.Leader(),
		IsDormie:       st.IsDormie,
		IsClosedOut:    st.IsClosedOut,
		Outcome:        score.Result.Outcome,
		Result:         score.Result.Notation(),
		Running:        matchplay.RunningNotation(st),
		Holes:          holes,
		PointsPerMatch: match.Session.PointsPerMatch,
		TeamAPoints:    score.Points.TeamA,
		TeamBPoints:    score.Points.TeamB,
		State:          st,
		MatchResult:    score.Result,
	}, nil
}
