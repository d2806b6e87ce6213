// Package metrics exposes Prometheus gauges for registry health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the monitor's Prometheus collectors.
type Metrics struct {
	coveragePercent  prometheus.Gauge
	duplicateCount   prometheus.Gauge
	issueCount       prometheus.Gauge
	alertsByLevel    *prometheus.CounterVec
	auditRunDuration prometheus.Histogram
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		coveragePercent: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tenet_registry_ticker_coverage_percent",
			Help: "Share of active companies holding a ticker",
		}),
		duplicateCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tenet_registry_duplicate_companies",
			Help: "Active companies sharing a normalized name with another",
		}),
		issueCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tenet_registry_validation_issues",
			Help: "Ticker validation issues found by the last audit",
		}),
		alertsByLevel: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenet_monitor_alerts_total",
			Help: "Alerts raised by registry audits, labeled by level",
		}, []string{"level"}),
		auditRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tenet_monitor_audit_duration_seconds",
			Help:    "Latency of full registry audits",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) SetCoverage(pct float64) {
	if m == nil {
		return
	}
	m.coveragePercent.Set(pct)
}

func (m *Metrics) SetDuplicates(n int) {
	if m == nil {
		return
	}
	m.duplicateCount.Set(float64(n))
}

func (m *Metrics) SetIssues(n int) {
	if m == nil {
		return
	}
	m.issueCount.Set(float64(n))
}

func (m *Metrics) IncAlert(level string) {
	if m == nil {
		return
	}
	m.alertsByLevel.WithLabelValues(level).Inc()
}

func (m *Metrics) ObserveAuditDuration(seconds float64) {
	if m == nil {
		return
	}
	m.auditRunDuration.Observe(seconds)
}
