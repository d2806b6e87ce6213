package models

import (
	"time"

	"github.com/google/uuid"

	platformstrings "tenet/pkg/platform/strings"
)

// Tag names a compliance category. Static reference data; effectively
// immutable at runtime.
type Tag string

const (
	TagBDS          Tag = "bds"
	TagDefense      Tag = "defense"
	TagSurveillance Tag = "surveillance"
	TagReligious    Tag = "religious_compliance"
)

// Strength grades how directly a piece of evidence supports its claim.
type Strength string

const (
	StrengthLow    Strength = "LOW"
	StrengthMedium Strength = "MEDIUM"
	StrengthHigh   Strength = "HIGH"
)

// Source is a citation backing one or more evidence records. Immutable once
// created; referenced, not owned, by evidence.
type Source struct {
	ID        uuid.UUID `json:"id"`
	Domain    string    `json:"domain"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Publisher string    `json:"publisher,omitempty"`
}

// Evidence is one observed fact linking a company to a tag, backed by exactly
// one source.
//
// Invariant under maintenance: for a given company, no two evidence records
// share the same (Tag, normalized notes) pair. Such duplicates are a
// data-entry defect, not a stronger signal; the dedupe sweep keeps the
// earliest record and removes the rest.
type Evidence struct {
	ID          uuid.UUID `json:"id"`
	CompanyID   uuid.UUID `json:"company_id"`
	Tag         Tag       `json:"tag"`
	SourceID    uuid.UUID `json:"source_id"`
	Strength    Strength  `json:"strength"`
	Notes       string    `json:"notes"`
	SubCategory string    `json:"sub_category,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupKey identifies the duplicate class of an evidence record. Typed so
// grouping never degenerates into ad hoc string concatenation.
type GroupKey struct {
	Tag            Tag
	NormalizedNote string
}

// Key returns the evidence record's duplicate-group key.
func (e Evidence) Key() GroupKey {
	return GroupKey{Tag: e.Tag, NormalizedNote: platformstrings.NormalizeKey(e.Notes)}
}

// Financials is a periodic snapshot for a company. The screening engine uses
// only the most recent snapshot per company. Monetary values are reported in
// the source's currency; ratios are unit-free. Nil pointer means the figure
// was not reported, which the ratio screen treats as missing data.
type Financials struct {
	ID             uuid.UUID `json:"id"`
	CompanyID      uuid.UUID `json:"company_id"`
	MarketCap      *float64  `json:"market_cap,omitempty"`
	TotalAssets    *float64  `json:"total_assets,omitempty"`
	TotalDebt      *float64  `json:"total_debt,omitempty"`
	CashSecurities *float64  `json:"cash_securities,omitempty"`
	Receivables    *float64  `json:"receivables,omitempty"`
	Period         string    `json:"period"`
	SourceID       uuid.UUID `json:"source_id"`
}
