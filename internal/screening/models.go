// Package screening computes per-category and aggregate compliance verdicts
// for companies. The rules are pure functions of a company's persisted
// evidence and financials; every request recomputes from scratch.
package screening

import (
	"time"

	"github.com/google/uuid"

	"tenet/internal/registry/models"
)

// CategoryStatus is the per-category outcome.
type CategoryStatus string

const (
	StatusPass     CategoryStatus = "pass"
	StatusExcluded CategoryStatus = "excluded"
	StatusReview   CategoryStatus = "review"
)

// Verdict is the aggregated outcome for one company.
type Verdict string

const (
	VerdictPass     Verdict = "PASS"
	VerdictExcluded Verdict = "EXCLUDED"
	VerdictReview   Verdict = "REVIEW"
)

// Confidence grades how much specific supporting evidence backs a verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Filters enumerates the enabled categories with their per-category options.
// A nil category is disabled. At least one category must be enabled or the
// whole request is rejected.
type Filters struct {
	BDS          *BDSOptions       `json:"bds,omitempty"`
	Defense      *TagOptions       `json:"defense,omitempty"`
	Surveillance *TagOptions       `json:"surveillance,omitempty"`
	Religious    *ReligiousOptions `json:"religious_compliance,omitempty"`
}

// BDSOptions narrows the BDS screen to specific sub-categories. Empty means
// all sub-categories.
type BDSOptions struct {
	SubCategories []string `json:"sub_categories,omitempty"`
}

// TagOptions is the empty option set for plain evidence-tag screens. Present
// means enabled.
type TagOptions struct{}

// ReligiousOptions overrides the configured ratio ceilings per request. Nil
// fields fall back to server configuration.
type ReligiousOptions struct {
	DebtToAssetsMax        *float64 `json:"max_debt_ratio,omitempty"`
	CashToAssetsMax        *float64 `json:"max_cash_ratio,omitempty"`
	ReceivablesToMarketMax *float64 `json:"max_receivables_ratio,omitempty"`
}

// Enabled reports whether any category is switched on.
func (f Filters) Enabled() bool {
	return f.BDS != nil || f.Defense != nil || f.Surveillance != nil || f.Religious != nil
}

// CategoryResult is one category's verdict for one company.
type CategoryResult struct {
	Category      models.Tag     `json:"category"`
	Status        CategoryStatus `json:"status"`
	SubCategories []string       `json:"sub_categories,omitempty"`
	Reasons       []string       `json:"reasons,omitempty"`
	// Evidence holds the specific supporting strings that drive the
	// aggregate confidence grade.
	Evidence []string `json:"evidence,omitempty"`
}

// SourceRef is a citation attached to a screening row.
type SourceRef struct {
	Domain string `json:"domain"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// Row is the screening outcome for one requested identifier.
type Row struct {
	Ticker     string           `json:"ticker"`
	CompanyID  *uuid.UUID       `json:"company_id,omitempty"`
	Name       string           `json:"name,omitempty"`
	Categories []CategoryResult `json:"categories"`
	Verdict    Verdict          `json:"verdict"`
	Reasons    []string         `json:"reasons"`
	Confidence Confidence       `json:"confidence"`
	Sources    []SourceRef      `json:"sources,omitempty"`
	AuditID    string           `json:"audit_id"`
	NotFound   bool             `json:"not_found,omitempty"`
}

// Request is one screening call. An empty Tickers list means "browse all
// flagged companies": every active company is screened and only non-passing
// rows are returned.
type Request struct {
	Tickers []string
	Filters Filters
}

// Response is the request-level envelope.
type Response struct {
	RequestID   string    `json:"request_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
	Warnings    []string  `json:"warnings"`
}

// snapshot is everything the pure rules need about one company.
type snapshot struct {
	company    *models.Company
	evidence   []models.Evidence
	financials *models.Financials
}
