// Package metrics exposes Prometheus collectors for parse activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Tier labels. A call that parsed without rewriting is "strict"; one that
// needed auto-quoting is "autoquote".
const (
	TierStrict    = "strict"
	TierAutoQuote = "autoquote"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	parses      *prometheus.CounterVec
	errors      *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	batchSize   prometheus.Histogram
}

// New registers the collectors with reg. If a collector is already
// registered the existing one is reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fncall",
			Name:      "parses_total",
			Help:      "Call strings parsed, by outcome and tier.",
		}, []string{"outcome", "tier"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fncall",
			Name:      "parse_errors_total",
			Help:      "Rejected call strings, by diagnostic code.",
		}, []string{"code"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fncall",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Parse results served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fncall",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Parse results computed because they were not cached.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fncall",
			Name:      "batch_size",
			Help:      "Number of call strings per batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	var err error
	if m.parses, err = register(reg, m.parses); err != nil {
		return nil, err
	}
	if m.errors, err = register(reg, m.errors); err != nil {
		return nil, err
	}
	if m.cacheHits, err = register(reg, m.cacheHits); err != nil {
		return nil, err
	}
	if m.cacheMisses, err = register(reg, m.cacheMisses); err != nil {
		return nil, err
	}
	if m.batchSize, err = register(reg, m.batchSize); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveParse records one parse.
func (m *Metrics) ObserveParse(tier string, code string) {
	if m == nil {
		return
	}
	if code == "" {
		m.parses.WithLabelValues(OutcomeOK, tier).Inc()
		return
	}
	m.parses.WithLabelValues(OutcomeError, tier).Inc()
	m.errors.WithLabelValues(code).Inc()
}

// CacheHit records a cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss records a cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// ObserveBatch records the size of a batch.
func (m *Metrics) ObserveBatch(n int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(n))
}

// Snapshot returns current counter totals, keyed by a short name. Used for
// end-of-run summaries.
func (m *Metrics) Snapshot() map[string]float64 {
	out := map[string]float64{}
	if m == nil {
		return out
	}
	out["cache_hits"] = readCounter(m.cacheHits)
	out["cache_misses"] = readCounter(m.cacheMisses)
	for _, outcome := range []string{OutcomeOK, OutcomeError} {
		for _, tier := range []string{TierStrict, TierAutoQuote} {
			out[outcome+"_"+tier] = readCounter(m.parses.WithLabelValues(outcome, tier))
		}
	}
	return out
}

func readCounter(c prometheus.Counter) float64 {
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		return 0
	}
	return pb.GetCounter().GetValue()
}
