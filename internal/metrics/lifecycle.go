// Package metrics exposes prometheus instrumentation for the session lifecycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalog_admin"

// Refresh outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Lifecycle records sign-in and token refresh activity. A nil *Lifecycle is a no-op.
type Lifecycle struct {
	attempts  *prometheus.CounterVec
	scheduled prometheus.Gauge
	signIns   *prometheus.CounterVec
}

func NewLifecycle(reg prometheus.Registerer) *Lifecycle {
	m := &Lifecycle{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Token refresh checks by outcome.",
		}, []string{"outcome"}),
		scheduled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "token_refresh_scheduled_seconds",
			Help:      "Delay of the currently pending refresh check.",
		}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_in_total",
			Help:      "Sign-in attempts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.attempts, m.scheduled, m.signIns)
	return m
}

// Attempt counts one refresh check.
func (m *Lifecycle) Attempt(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *Lifecycle) Scheduled(d time.Duration) {
	if m == nil {
		return
	}
	m.scheduled.Set(d.Seconds())
}

func (m *Lifecycle) SignIn(outcome string) {
	if m == nil {
		return
	}
	m.signIns.WithLabelValues(outcome).Inc()
}
