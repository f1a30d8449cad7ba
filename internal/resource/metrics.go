package resource

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Observer receives hook outcomes. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	Mutation(entity string, op Op, err error)
	CacheLookup(entity string, hit bool)
	StaleDiscarded(entity string)
}

type nopObserver struct{}

func (nopObserver) Mutation(string, Op, error) {}
func (nopObserver) CacheLookup(string, bool)   {}
func (nopObserver) StaleDiscarded(string)      {}

var (
	mutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_mutations_total",
			Help: "Entity mutations by entity, operation, and outcome.",
		},
		[]string{"entity", "op", "outcome"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_cache_lookups_total",
			Help: "Collection cache lookups by entity and result (hit/miss).",
		},
		[]string{"entity", "result"},
	)

	staleResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_stale_responses_total",
			Help: "Collection reads whose result was not cached because a newer write invalidated it.",
		},
		[]string{"entity"},
	)
)

func init() {
	prometheus.MustRegister(mutationsTotal, cacheLookups, staleResponses)
}

// PrometheusObserver exports hook outcomes as Prometheus counters.
type PrometheusObserver struct{}

func (PrometheusObserver) Mutation(entity string, op Op, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	mutationsTotal.WithLabelValues(entity, string(op), outcome).Inc()
}

func (PrometheusObserver) CacheLookup(entity string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(entity, result).Inc()
}

func (PrometheusObserver) StaleDiscarded(entity string) {
	staleResponses.WithLabelValues(entity).Inc()
}
