// Package maintenance bundles the batch hygiene jobs: the duplicate-evidence
// sweep and the ticker backfill. Both are thin drivers over the detector and
// the import guard so the CLI and any scheduler share one code path.
package maintenance

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tenet/internal/dedupe"
	"tenet/internal/importguard"
	"tenet/internal/registry/models"
	"tenet/internal/ticker"
	dErrors "tenet/pkg/domain-errors"
)

// Registry lists the companies the jobs iterate.
type Registry interface {
	ListActiveCompanies(ctx context.Context) ([]models.Company, error)
}

// Guard is the write path the backfill uses. Writes stay guarded even in
// batch jobs.
type Guard interface {
	UpdateSafely(ctx context.Context, companyID uuid.UUID, updates importguard.Updates) (*importguard.UpdateResult, error)
}

// SweepResult summarizes one duplicate-evidence sweep.
type SweepResult struct {
	CompaniesVisited int `json:"companies_visited"`
	EvidenceRemoved  int `json:"evidence_removed"`
}

// BackfillResult summarizes one ticker backfill run.
type BackfillResult struct {
	Candidates int      `json:"candidates"`
	Assigned   int      `json:"assigned"`
	Skipped    []string `json:"skipped,omitempty"`
}

// Runner executes the maintenance jobs.
type Runner struct {
	registry  Registry
	detector  *dedupe.Detector
	validator *ticker.Validator
	guard     Guard
	logger    *slog.Logger
}

// NewRunner wires the maintenance jobs.
func NewRunner(registry Registry, detector *dedupe.Detector, validator *ticker.Validator, guard Guard, logger *slog.Logger) *Runner {
	return &Runner{
		registry:  registry,
		detector:  detector,
		validator: validator,
		guard:     guard,
		logger:    logger,
	}
}

// SweepDuplicateEvidence removes redundant evidence across every active
// company, keeping the earliest record of each (tag, normalized notes)
// group. Idempotent: a second run over a clean registry removes nothing.
func (r *Runner) SweepDuplicateEvidence(ctx context.Context) (*SweepResult, error) {
	companies, err := r.registry.ListActiveCompanies(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list active companies")
	}

	result := &SweepResult{}
	for _, company := range companies {
		removed, err := r.detector.CleanupDuplicateEvidence(ctx, company.ID)
		if err != nil {
			return result, dErrors.Wrap(err, dErrors.CodeUnavailable, "sweep evidence for "+company.Name)
		}
		result.CompaniesVisited++
		result.EvidenceRemoved += removed
		if removed > 0 {
			r.logger.InfoContext(ctx, "removed duplicate evidence",
				"company", company.Name,
				"removed", removed,
			)
		}
	}
	return result, nil
}

// BackfillTickers assigns reference-table tickers to active companies that
// lack one. Assignments go through the guarded update path so a backfill can
// never bind a ticker twice.
func (r *Runner) BackfillTickers(ctx context.Context) (*BackfillResult, error) {
	companies, err := r.registry.ListActiveCompanies(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list active companies")
	}

	result := &BackfillResult{}
	for _, company := range companies {
		if company.Ticker != "" {
			continue
		}
		result.Candidates++

		suggestion, ok := r.validator.AutoAssign(company.Name)
		if !ok {
			result.Skipped = append(result.Skipped, company.Name)
			continue
		}
		update, err := r.guard.UpdateSafely(ctx, company.ID, importguard.Updates{Ticker: &suggestion})
		if err != nil {
			return result, err
		}
		if !update.Success {
			r.logger.WarnContext(ctx, "backfill rejected by guard",
				"company", company.Name,
				"ticker", suggestion,
				"errors", update.Errors,
			)
			result.Skipped = append(result.Skipped, company.Name)
			continue
		}
		result.Assigned++
	}
	return result, nil
}
