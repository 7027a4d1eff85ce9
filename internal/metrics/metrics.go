// Package metrics exposes Prometheus collectors for the turn engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Turn outcomes recorded by TurnResolved.
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeExpired   = "expired"
	OutcomeUngated   = "ungated"
)

// Metrics groups the engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	SessionsCreated prometheus.Counter
	ActiveSessions  prometheus.Gauge
	Rolls           prometheus.Counter
	TurnsResolved   *prometheus.CounterVec
	PendingExpired  prometheus.Counter
	Wins            prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizboard",
			Name:      "sessions_created_total",
			Help:      "Game sessions created by room partitioning.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quizboard",
			Name:      "active_sessions",
			Help:      "Game sessions currently in the active state.",
		}),
		Rolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizboard",
			Name:      "rolls_total",
			Help:      "Accepted dice rolls.",
		}),
		TurnsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizboard",
			Name:      "turns_resolved_total",
			Help:      "Resolved turns by outcome.",
		}, []string{"outcome"}),
		PendingExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizboard",
			Name:      "pending_expired_total",
			Help:      "Pending turns auto-resolved after their answer deadline.",
		}),
		Wins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizboard",
			Name:      "wins_total",
			Help:      "Sessions finished by a player reaching square 100.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.SessionsCreated, m.ActiveSessions, m.Rolls, m.TurnsResolved, m.PendingExpired, m.Wins)
	}
	return m
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) Rolled() {
	if m == nil {
		return
	}
	m.Rolls.Inc()
}

func (m *Metrics) TurnResolved(outcome string, won bool) {
	if m == nil {
		return
	}
	m.TurnsResolved.WithLabelValues(outcome).Inc()
	if outcome == OutcomeExpired {
		m.PendingExpired.Inc()
	}
	if won {
		m.Wins.Inc()
	}
}
