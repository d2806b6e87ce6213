// Package audit records screening decisions for traceability. Every verdict
// a caller receives carries an audit id that resolves to one persisted event.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is one recorded screening decision. Transport-agnostic so sinks can
// fan out to memory, Kafka, or anything else.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
	Ticker     string    `json:"ticker"`
	CompanyID  string    `json:"company_id,omitempty"`
	Verdict    string    `json:"verdict"`
	Reasons    []string  `json:"reasons,omitempty"`
	Confidence string    `json:"confidence"`
	// Filters is the serialized filter configuration the verdict was
	// computed under. Verdicts are only comparable under equal filters.
	Filters string `json:"filters,omitempty"`
}
