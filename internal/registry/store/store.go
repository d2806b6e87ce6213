// Package store defines the data-access surface the classification core
// requires from the persistence collaborator, with in-memory and PostgreSQL
// implementations.
package store

import (
	"context"

	"github.com/google/uuid"

	"tenet/internal/registry/models"
)

// Store is interface-driven to keep the domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business
// code. Implementations return sentinel errors (pkg/platform/sentinel) for
// infrastructure facts; services translate them into domain errors.
type Store interface {
	// Company lookups. Find* return sentinel.ErrNotFound when absent.
	FindCompanyByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	FindActiveByTicker(ctx context.Context, ticker string) (*models.Company, error)
	// SearchActiveByWord returns active companies whose name contains word,
	// case-insensitive, up to limit.
	SearchActiveByWord(ctx context.Context, word string, limit int) ([]models.Company, error)
	ListActiveCompanies(ctx context.Context) ([]models.Company, error)

	// Company writes. CreateCompany and UpdateCompany return
	// sentinel.ErrConflict when the active-ticker uniqueness constraint would
	// be violated; UpdateCompany and DeleteCompany return sentinel.ErrNotFound
	// for unknown ids. DeleteCompany physically removes the record and its
	// owned evidence and aliases (merge path only).
	CreateCompany(ctx context.Context, company *models.Company) error
	UpdateCompany(ctx context.Context, company *models.Company) error
	DeleteCompany(ctx context.Context, id uuid.UUID) error

	// Evidence, aliases, financials. ListEvidence preserves insertion order.
	ListEvidence(ctx context.Context, companyID uuid.UUID) ([]models.Evidence, error)
	CreateEvidence(ctx context.Context, evidence *models.Evidence) error
	DeleteEvidence(ctx context.Context, id uuid.UUID) error
	ListAliases(ctx context.Context, companyID uuid.UUID) ([]models.Alias, error)
	CreateAlias(ctx context.Context, alias *models.Alias) error
	FindSource(ctx context.Context, id uuid.UUID) (*models.Source, error)
	CreateSource(ctx context.Context, source *models.Source) error
	LatestFinancials(ctx context.Context, companyID uuid.UUID) (*models.Financials, error)
	CreateFinancials(ctx context.Context, financials *models.Financials) error

	// Aggregate queries for the duplicate detector and the monitor.
	// CountDuplicateNames counts normalized-name groups shared by more than
	// one active company; CountDuplicateTickers counts tickers bound to more
	// than one active company (an invariant violation); DuplicateTickers
	// lists them.
	CountDuplicateNames(ctx context.Context) (int, error)
	CountDuplicateTickers(ctx context.Context) (int, error)
	DuplicateTickers(ctx context.Context) ([]string, error)
}
