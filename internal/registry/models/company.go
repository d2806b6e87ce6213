package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "tenet/pkg/domain-errors"
)

// Company is the aggregate root for one publicly traded company in the
// registry.
//
// Invariants:
//   - Name is non-empty and at least 2 characters
//   - At most one *active* company may hold a given non-empty Ticker
//   - "Delete" means Active=false; only an explicit merge removes a record
//
// Ticker uniqueness is enforced twice: the identifier validator rejects
// colliding assignments on the write path, and the storage layer carries a
// partial unique index over active rows so two concurrent imports cannot both
// succeed. Inactive companies keep their ticker for historical traceability
// but do not participate in uniqueness or duplicate checks.
type Company struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Ticker  string    `json:"ticker,omitempty"`
	Country string    `json:"country,omitempty"`
	Active  bool      `json:"active"`
	// Profile text filled from the financial-data provider on the import
	// path; the religious-compliance keyword screen reads it.
	Sector      string    `json:"sector,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AliasType classifies an alternate name bound to a company.
type AliasType string

const (
	AliasBrand       AliasType = "brand"
	AliasLegalName   AliasType = "legal_name"
	AliasPriorTicker AliasType = "prior_ticker"
)

// Alias is an alternate name or identifier for a company, used to widen
// duplicate and lookup matching. Owned by its company; removed with it.
type Alias struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Value     string    `json:"value"`
	Type      AliasType `json:"type"`
}

// NewCompany validates and constructs an active company record.
func NewCompany(name, ticker, country string, now time.Time) (*Company, error) {
	if len(name) < 2 {
		return nil, dErrors.New(dErrors.CodeValidation, "company name must be at least 2 characters")
	}
	return &Company{
		ID:        uuid.New(),
		Name:      name,
		Ticker:    ticker,
		Country:   country,
		Active:    true,
		UpdatedAt: now,
	}, nil
}

// Deactivate soft-deletes the company. Its ticker is released for reuse by
// active companies.
func (c *Company) Deactivate(now time.Time) {
	c.Active = false
	c.UpdatedAt = now
}
