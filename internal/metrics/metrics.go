// Package metrics holds the Prometheus collectors of the credit program and
// its API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

const namespace = "credit"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	instructions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	invocations  *prometheus.CounterVec
	quotes       *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// New registers the collectors on reg. When both reg and gatherer are nil an
// isolated registry is used, so tests and multiple instances do not collide.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	if reg == nil && gatherer == nil {
		registry := prometheus.NewRegistry()
		reg = registry
		gatherer = registry
	} else if reg != nil && gatherer == nil {
		if g, ok := reg.(prometheus.Gatherer); ok {
			gatherer = g
		} else {
			gatherer = prometheus.DefaultGatherer
		}
	} else if reg == nil && gatherer != nil {
		if r, ok := gatherer.(prometheus.Registerer); ok {
			reg = r
		} else {
			registry := prometheus.NewRegistry()
			reg = registry
			gatherer = registry
		}
	}

	f := promauto.With(reg)
	return &Metrics{
		instructions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "program",
			Name:      "instructions_total",
			Help:      "Processed instructions by kind and outcome.",
		}, []string{"instruction", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "program",
			Name:      "instruction_duration_seconds",
			Help:      "Time spent processing an instruction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"instruction"}),
		invocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "program",
			Name:      "cross_program_invocations_total",
			Help:      "Cross-program invocations issued, by callee step and outcome.",
		}, []string{"step", "outcome"}),
		quotes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "price_quotes_total",
			Help:      "Price quotes served, by pool and source.",
		}, []string{"pool", "source"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Price cache lookups by result.",
		}, []string{"result"}),
		Registerer: reg,
		Gatherer:   gatherer,
	}
}

// Outcome labels an error by its program error code.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code, ok := programerr.CodeOf(err); ok {
		return code.String()
	}
	return "external"
}

// ObserveInstruction records one processed instruction.
func (m *Metrics) ObserveInstruction(kind string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.instructions.WithLabelValues(kind, Outcome(err)).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// ObserveInvocation records one cross-program invocation.
func (m *Metrics) ObserveInvocation(step string, err error) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(step, Outcome(err)).Inc()
}

// ObserveQuote records a served price quote.
func (m *Metrics) ObserveQuote(pool, source string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(pool, source).Inc()
}

// ObserveCacheLookup records a cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
