package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/cup-trip/internal/matchplay"
	"github.com/trentd187/cup-trip/internal/metrics"
	"github.com/trentd187/cup-trip/internal/models"
)

// seedLedger writes winners for holes 1..n straight into the fake store.
func seedLedger(t *testing.T, repo *fakeRepo, matchID uuid.UUID, winners ...matchplay.Winner) {
	t.Helper()
	for i, w := range winners {
		row := models.HoleResult{
			MatchID:    matchID,
			HoleNumber: i + 1,
			Winner:     w,
			RecordedAt: teeTime.Add(time.Duration(i) * 10 * time.Minute),
		}
		_, err := repo.AppendHoleResult(context.Background(), &row, nil)
		require.NoError(t, err)
	}
}

func halves(n int) []matchplay.Winner {
	out := make([]matchplay.Winner, n)
	for i := range out {
		out[i] = H
	}
	return out
}

func TestSessionStandings(t *testing.T) {
	repo := newFakeRepo()
	trip := repo.addTrip("Pinehurst", "Stripes", "Plaids")
	session := repo.addSession(trip.ID, 1, "1")

	won := repo.addMatch(session.ID, 1)
	halved := repo.addMatch(session.ID, 2)
	running := repo.addMatch(session.ID, 3)
	cancelled := repo.addMatch(session.ID, 4)

	// 10&8 to team B.
	seedLedger(t, repo, won.ID, B, B, B, B, B, B, B, B, B, B)
	// Halved.
	seedLedger(t, repo, halved.ID, halves(18)...)
	// 2 UP thru 2.
	seedLedger(t, repo, running.ID, A, A)
	// Would be a win for A.
	seedLedger(t, repo, cancelled.ID, A, A, A, A, A, A, A, A, A, A)
	repo.setStatus(cancelled.ID, models.MatchStatusCancelled)

	reg := prometheus.NewRegistry()
	svc := New(repo, nil, metrics.New(reg), zerolog.Nop())

	got, err := svc.SessionStandings(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, got.SessionID)
	assert.Equal(t, "Session 1", got.Name)
	assert.Equal(t, "0.5", got.TeamA.String())
	assert.Equal(t, "1.5", got.TeamB.String())
	assert.Equal(t, "1", got.PointsAvailable.String())
	assert.Equal(t, 2, got.MatchesFinished)
	assert.Equal(t, 1, got.MatchesInProgress)
	assert.Equal(t, matchplay.SideTeamB, got.Leader)

	assert.Equal(t, float64(1), sample(t, reg, "cup_trip_standings_recompute_seconds", map[string]string{"scope": "session"}))
}

func TestSessionStandings_EmptySession(t *testing.T) {
	repo := newFakeRepo()
	trip := repo.addTrip("Pinehurst", "Stripes", "Plaids")
	session := repo.addSession(trip.ID, 1, "0.5")

	svc := New(repo, nil, nil, zerolog.Nop())
	got, err := svc.SessionStandings(context.Background(), session.ID)
	require.NoError(t, err)

	assert.True(t, got.TeamA.IsZero())
	assert.True(t, got.TeamB.IsZero())
	assert.Empty(t, got.Leader)
	assert.Equal(t, "0.5", got.PointsPerMatch.String())
}

func TestSessionStandings_UnknownSession(t *testing.T) {
	svc := New(newFakeRepo(), nil, nil, zerolog.Nop())
	_, err := svc.SessionStandings(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestTripStandings(t *testing.T) {
	repo := newFakeRepo()
	trip := repo.addTrip("Whistling Straits", "USA", "Europe")
	foursomes := repo.addSession(trip.ID, 1, "0.5")
	singles := repo.addSession(trip.ID, 2, "1")
	other := repo.addTrip("Somewhere else", "X", "Y")
	stray := repo.addSession(other.ID, 1, "1")

	// Registered out of order; standings follow session number.
	s1 := repo.addMatch(singles.ID, 1)
	f1 := repo.addMatch(foursomes.ID, 1)
	f2 := repo.addMatch(foursomes.ID, 2)
	x1 := repo.addMatch(stray.ID, 1)

	// 0.25 each.
	seedLedger(t, repo, f1.ID, halves(18)...)
	// 0.5 to USA.
	seedLedger(t, repo, f2.ID, A, A, A, A, A, A, A, A, A, A)
	// Europe 2 UP.
	seedLedger(t, repo, s1.ID, B, A, B, B, H, H, H, H, H, H, H, H, H, H, H, H, H, H)
	seedLedger(t, repo, x1.ID, B, B, B, B, B, B, B, B, B, B)

	reg := prometheus.NewRegistry()
	svc := New(repo, nil, metrics.New(reg), zerolog.Nop())

	got, err := svc.TripStandings(context.Background(), trip.ID)
	require.NoError(t, err)

	assert.Equal(t, "Whistling Straits", got.Name)
	assert.Equal(t, "USA", got.TeamAName)
	assert.Equal(t, "Europe", got.TeamBName)
	assert.Equal(t, "0.75", got.TeamA.String())
	assert.Equal(t, "1.25", got.TeamB.String())
	assert.True(t, got.PointsAvailable.IsZero())
	assert.Equal(t, 3, got.MatchesFinished)
	assert.Equal(t, matchplay.SideTeamB, got.Leader)

	require.Len(t, got.Sessions, 2)
	assert.Equal(t, foursomes.ID, got.Sessions[0].SessionID)
	assert.Equal(t, "0.75", got.Sessions[0].TeamA.String())
	assert.Equal(t, "0.25", got.Sessions[0].TeamB.String())
	assert.Equal(t, singles.ID, got.Sessions[1].SessionID)
	assert.Equal(t, 2, got.Sessions[1].SessionNumber)
	assert.Equal(t, "1", got.Sessions[1].TeamB.String())

	// Session subtotals always add up to the trip total.
	sumA := got.Sessions[0].TeamA.Add(got.Sessions[1].TeamA)
	sumB := got.Sessions[0].TeamB.Add(got.Sessions[1].TeamB)
	assert.True(t, sumA.Equal(got.TeamA))
	assert.True(t, sumB.Equal(got.TeamB))

	assert.Equal(t, float64(1), sample(t, reg, "cup_trip_standings_recompute_seconds", map[string]string{"scope": "trip"}))
}

func TestTripStandings_FollowsCorrections(t *testing.T) {
	repo := newFakeRepo()
	trip := repo.addTrip("Kohler", "USA", "Europe")
	session := repo.addSession(trip.ID, 1, "1")
	match := repo.addMatch(session.ID, 1, models.MatchPlayer{UserID: uuid.New(), Side: models.TeamSideA})

	svc := New(repo, nil, nil, zerolog.Nop())
	captain := Actor{UserID: uuid.New(), Role: models.UserRoleCaptain}
	ctx := context.Background()

	// 1 UP after 18.
	seedLedger(t, repo, match.ID, append([]matchplay.Winner{A}, halves(17)...)...)
	before, err := svc.TripStandings(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", before.TeamA.String())

	// Hole 1 was actually halved.
	_, err = svc.RecordHole(ctx, RecordHoleInput{
		MatchID: match.ID, HoleNumber: 1, Winner: H, RecordedAt: teeTime.Add(6 * time.Hour), Actor: captain,
	})
	require.NoError(t, err)

	after, err := svc.TripStandings(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.5", after.TeamA.String())
	assert.Equal(t, "0.5", after.TeamB.String())

	// Undoing the correction restores the original result.
	_, err = svc.UndoLastHole(ctx, match.ID, captain)
	require.NoError(t, err)
	restored, err := svc.TripStandings(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, restored.TeamA.Equal(before.TeamA))
	assert.True(t, restored.TeamB.Equal(before.TeamB))
}
