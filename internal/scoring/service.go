// Package scoring connects the match ledger in the store to the matchplay engine.
//
// Every operation reloads the ledger and recomputes from scratch: the engine is pure, so the
// service never caches a running score. After a write it updates the match's advisory status,
// counts the event in Prometheus and pushes the fresh MatchSummary to live watchers.
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trentd187/cup-trip/internal/matchplay"
	"github.com/trentd187/cup-trip/internal/metrics"
	"github.com/trentd187/cup-trip/internal/models"
	"github.com/trentd187/cup-trip/internal/store"
)

var (
	// ErrForbidden is returned when the actor may not write to the match.
	ErrForbidden = errors.New("not allowed to score this match")
	// ErrMatchCancelled is returned when a write targets a cancelled match.
	ErrMatchCancelled = errors.New("match is cancelled")
	// ErrNothingToUndo is returned by UndoLastHole on an empty ledger.
	ErrNothingToUndo = errors.New("no hole results to undo")
)

// Repository is the part of the store the service reads and writes.
type Repository interface {
	GetTrip(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	UpdateMatchStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error
	ListSessionMatches(ctx context.Context, sessionID uuid.UUID) ([]models.Match, error)
	ListTripMatches(ctx context.Context, tripID uuid.UUID) ([]models.Match, error)
	ListHoleResults(ctx context.Context, matchID uuid.UUID) ([]models.HoleResult, error)
	AppendHoleResult(ctx context.Context, row *models.HoleResult, accept func(ledger []models.HoleResult) error) ([]models.HoleResult, error)
	DeleteLatestHoleResult(ctx context.Context, matchID uuid.UUID) (*models.HoleResult, error)
}

// Broadcaster pushes encoded match summaries to clients watching a match.
type Broadcaster interface {
	BroadcastToMatch(matchID string, data []byte)
}

// Actor is the authenticated user performing a write.
type Actor struct {
	UserID uuid.UUID
	Role   models.UserRole
}

// RecordHoleInput is one hole result submitted by a scorer.
// A zero RecordedAt means "now"; clients syncing results entered offline send the original time.
type RecordHoleInput struct {
	MatchID    uuid.UUID
	HoleNumber int
	Winner     matchplay.Winner
	RecordedAt time.Time
	Actor      Actor
}

// Service runs the scoring use cases.
type Service struct {
	repo    Repository
	live    Broadcaster
	metrics *metrics.Collectors
	log     zerolog.Logger
	now     func() time.Time
}

// New builds a Service. live and m may be nil.
func New(repo Repository, live Broadcaster, m *metrics.Collectors, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		live:    live,
		metrics: m,
		log:     logger.With().Str("component", "scoring").Logger(),
		now:     time.Now,
	}
}

// RecordHole appends a hole result to a match's ledger. A result for a hole that already has one
// is a correction: it is stored as a new row and wins because it is recorded later.
// The candidate ledger is run through the engine while the store holds the match locked, so
// invalid input is rejected with a matchplay.ValidationError and nothing is written.
func (s *Service) RecordHole(ctx context.Context, in RecordHoleInput) (MatchSummary, error) {
	match, err := s.repo.GetMatch(ctx, in.MatchID)
	if err != nil {
		return MatchSummary{}, err
	}
	if err := authorize(match, in.Actor); err != nil {
		return MatchSummary{}, err
	}

	// Ledger timestamps are stored with microsecond precision; validate what will be read back.
	recordedAt := in.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}
	row := models.HoleResult{
		MatchID:    match.ID,
		HoleNumber: in.HoleNumber,
		Winner:     in.Winner,
		RecordedAt: recordedAt.UTC().Truncate(time.Microsecond),
		RecordedBy: in.Actor.UserID,
	}

	var (
		candidate []models.HoleResult
		score     matchplay.MatchScore
	)
	ledger, err := s.repo.AppendHoleResult(ctx, &row, func(ledger []models.HoleResult) error {
		candidate = append(slices.Clone(ledger), row)
		var err error
		score, err = matchplay.ScoreMatch(match.TotalHoles, models.EngineLedger(candidate), match.Session.PointsPerMatch)
		return err
	})
	if err != nil {
		s.rejected(match.ID, err)
		return MatchSummary{}, err
	}
	candidate[len(candidate)-1] = row

	correction := slices.ContainsFunc(ledger, func(h models.HoleResult) bool {
		return h.HoleNumber == row.HoleNumber
	})
	s.metrics.HoleRecorded(correction)
	s.log.Debug().
		Str("match_id", match.ID.String()).
		Int("hole", row.HoleNumber).
		Str("winner", string(row.Winner)).
		Bool("correction", correction).
		Msg("hole recorded")

	return s.settle(ctx, match, candidate, score)
}

// UndoLastHole removes the ledger row that reached the server most recently and rescores.
// Undoing a correction brings back the result it replaced.
func (s *Service) UndoLastHole(ctx context.Context, matchID uuid.UUID, actor Actor) (MatchSummary, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return MatchSummary{}, err
	}
	if err := authorize(match, actor); err != nil {
		return MatchSummary{}, err
	}

	removed, err := s.repo.DeleteLatestHoleResult(ctx, match.ID)
	if errors.Is(err, store.ErrNotFound) {
		return MatchSummary{}, fmt.Errorf("match %s: %w", match.ID, ErrNothingToUndo)
	}
	if err != nil {
		return MatchSummary{}, err
	}

	ledger, err := s.repo.ListHoleResults(ctx, match.ID)
	if err != nil {
		return MatchSummary{}, err
	}
	score, err := matchplay.ScoreMatch(match.TotalHoles, models.EngineLedger(ledger), match.Session.PointsPerMatch)
	if err != nil {
		return MatchSummary{}, fmt.Errorf("rescore match %s after undo: %w", match.ID, err)
	}

	s.metrics.HoleUndone()
	s.log.Info().
		Str("match_id", match.ID.String()).
		Int("hole", removed.HoleNumber).
		Str("winner", string(removed.Winner)).
		Msg("hole result undone")

	return s.settle(ctx, match, ledger, score)
}

// MatchSummary scores a match from its current ledger.
func (s *Service) MatchSummary(ctx context.Context, matchID uuid.UUID) (MatchSummary, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return MatchSummary{}, err
	}
	ledger, err := s.repo.ListHoleResults(ctx, match.ID)
	if err != nil {
		return MatchSummary{}, err
	}
	score, err := matchplay.ScoreMatch(match.TotalHoles, models.EngineLedger(ledger), match.Session.PointsPerMatch)
	if err != nil {
		return MatchSummary{}, fmt.Errorf("score match %s: %w", match.ID, err)
	}
	return newMatchSummary(match, ledger, score)
}

// settle writes the advisory status implied by the new score and broadcasts the summary.
// The ledger is already committed at this point, so a failed status write is logged, not returned.
func (s *Service) settle(ctx context.Context, match *models.Match, ledger []models.HoleResult, score matchplay.MatchScore) (MatchSummary, error) {
	status := statusFor(len(ledger), score.Result)
	if status != match.Status {
		if err := s.repo.UpdateMatchStatus(ctx, match.ID, status); err != nil {
			s.log.Error().Err(err).
				Str("match_id", match.ID.String()).
				Str("status", string(status)).
				Msg("failed to update match status")
		} else {
			if status == models.MatchStatusFinal {
				s.metrics.MatchFinalized(string(score.Result.Outcome))
				s.log.Info().
					Str("match_id", match.ID.String()).
					Str("result", score.Result.String()).
					Msg("match final")
			}
			match.Status = status
		}
	}

	summary, err := newMatchSummary(match, ledger, score)
	if err != nil {
		return MatchSummary{}, err
	}
	s.publish(summary)
	return summary, nil
}

func (s *Service) publish(summary MatchSummary) {
	if s.live == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", summary.MatchID.String()).Msg("failed to encode match summary")
		return
	}
	s.live.BroadcastToMatch(summary.MatchID.String(), data)
}

func (s *Service) rejected(matchID uuid.UUID, err error) {
	var verr *matchplay.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	s.metrics.HoleRejected(verr.Field)
	s.log.Warn().
		Str("match_id", matchID.String()).
		Str("field", verr.Field).
		Str("value", verr.Value).
		Msg("hole result rejected")
}

// statusFor derives the advisory status from the ledger size and the engine's result.
func statusFor(ledgerLen int, result matchplay.MatchResult) models.MatchStatus {
	switch {
	case result.Outcome.Finished():
		return models.MatchStatusFinal
	case ledgerLen == 0:
		return models.MatchStatusScheduled
	}
	return models.MatchStatusInProgress
}

// authorize lets admins and captains score any match; players only the matches they play in.
// Cancelled matches take no writes from anyone.
func authorize(match *models.Match, actor Actor) error {
	if match.Status == models.MatchStatusCancelled {
		return fmt.Errorf("match %s: %w", match.ID, ErrMatchCancelled)
	}
	switch actor.Role {
	case models.UserRoleAdmin, models.UserRoleCaptain:
		return nil
	}
	for _, p := range match.Players {
		if p.UserID == actor.UserID {
			return nil
		}
	}
	return fmt.Errorf("match %s: %w", match.ID, ErrForbidden)
}
