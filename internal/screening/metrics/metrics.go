// Package metrics exposes Prometheus metrics for the screening engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the screening engine's Prometheus collectors.
type Recorder struct {
	verdicts      *prometheus.CounterVec
	notFound      prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	screenSeconds prometheus.Histogram
}

// NewRecorder registers the collectors on the default registry.
func NewRecorder() *Recorder {
	return &Recorder{
		verdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenet_screening_verdicts_total",
			Help: "Screening rows produced, labeled by aggregate verdict",
		}, []string{"verdict"}),
		notFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tenet_screening_not_found_total",
			Help: "Screening requests for tickers absent from the registry",
		}),
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tenet_screening_cache_hits_total",
			Help: "Verdict cache hits",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tenet_screening_cache_misses_total",
			Help: "Verdict cache misses",
		}),
		screenSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tenet_screening_duration_seconds",
			Help:    "Latency of full screening requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (r *Recorder) IncVerdict(verdict string) {
	if r == nil {
		return
	}
	r.verdicts.WithLabelValues(verdict).Inc()
}

func (r *Recorder) IncNotFound() {
	if r == nil {
		return
	}
	r.notFound.Inc()
}

func (r *Recorder) IncCacheHit() {
	if r == nil {
		return
	}
	r.cacheHits.Inc()
}

func (r *Recorder) IncCacheMiss() {
	if r == nil {
		return
	}
	r.cacheMisses.Inc()
}

func (r *Recorder) ObserveScreenDuration(seconds float64) {
	if r == nil {
		return
	}
	r.screenSeconds.Observe(seconds)
}
