// Package metrics defines the Prometheus collectors for scoring activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cup_trip"

// Collectors groups the scoring counters and histograms.
// A nil *Collectors is valid and records nothing.
type Collectors struct {
	holesRecorded    *prometheus.CounterVec
	holesRejected    *prometheus.CounterVec
	holesUndone      prometheus.Counter
	matchesFinalized *prometheus.CounterVec
	standingsSeconds *prometheus.HistogramVec
}

// New registers the scoring collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		holesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holes_recorded_total",
			Help:      "Hole results appended to match ledgers, by kind (new or correction).",
		}, []string{"kind"}),
		holesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holes_rejected_total",
			Help:      "Hole results rejected by validation, by offending field.",
		}, []string{"field"}),
		holesUndone: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holes_undone_total",
			Help:      "Ledger entries removed by undo.",
		}),
		matchesFinalized: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finalized_total",
			Help:      "Matches that reached a terminal result, by outcome.",
		}, []string{"outcome"}),
		standingsSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "standings_recompute_seconds",
			Help:      "Time to recompute standings from match ledgers, by scope (session or trip).",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"scope"}),
	}
}

// HoleRecorded counts an appended ledger entry.
func (c *Collectors) HoleRecorded(correction bool) {
	if c == nil {
		return
	}
	kind := "new"
	if correction {
		kind = "correction"
	}
	c.holesRecorded.WithLabelValues(kind).Inc()
}

// HoleRejected counts a validation failure on the given field.
func (c *Collectors) HoleRejected(field string) {
	if c == nil {
		return
	}
	c.holesRejected.WithLabelValues(field).Inc()
}

// HoleUndone counts an undo.
func (c *Collectors) HoleUndone() {
	if c == nil {
		return
	}
	c.holesUndone.Inc()
}

// MatchFinalized counts a match that just reached a terminal outcome.
func (c *Collectors) MatchFinalized(outcome string) {
	if c == nil {
		return
	}
	c.matchesFinalized.WithLabelValues(outcome).Inc()
}

// ObserveStandings records how long a standings recomputation took.
func (c *Collectors) ObserveStandings(scope string, d time.Duration) {
	if c == nil {
		return
	}
	c.standingsSeconds.WithLabelValues(scope).Observe(d.Seconds())
}
