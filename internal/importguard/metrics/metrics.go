package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks import gate outcomes.
type Metrics struct {
	ImportsAccepted prometheus.Counter
	ImportsRejected prometheus.Counter
	ImportWarnings  prometheus.Counter
	UpdatesApplied  prometheus.Counter
}

// New creates and registers the import guard metrics.
func New() *Metrics {
	return &Metrics{
		ImportsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tenet_imports_accepted_total",
			Help: "Company imports that passed validation and were persisted",
		}),
		ImportsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tenet_imports_rejected_total",
			Help: "Company imports rejected by the guard",
		}),
		ImportWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tenet_import_warnings_total",
			Help: "Non-blocking data-quality warnings raised on imports",
		}),
		UpdatesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tenet_company_updates_total",
			Help: "Company updates applied through the guard",
		}),
	}
}
