// Package importguard is the single gate through which every new or updated
// company record must pass. It composes the identifier validator and the
// duplicate detector; collectors and backfill scripts call it instead of
// writing to the store directly.
package importguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tenet/internal/dedupe"
	"tenet/internal/importguard/metrics"
	"tenet/internal/registry/models"
	"tenet/internal/ticker"
	dErrors "tenet/pkg/domain-errors"
	"tenet/pkg/platform/sentinel"
	"tenet/pkg/requestcontext"
)

// maxCountryLen is a sanity bound; longer values are almost always a column
// shift in the import feed.
const maxCountryLen = 56

// Registry is the store surface the guard needs.
type Registry interface {
	FindCompanyByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	CreateCompany(ctx context.Context, company *models.Company) error
	UpdateCompany(ctx context.Context, company *models.Company) error
}

// Candidate is an incoming company record, pre-persistence.
type Candidate struct {
	Name    string `json:"name"`
	Ticker  string `json:"ticker,omitempty"`
	Country string `json:"country,omitempty"`
}

// Validation is the full set of findings for one candidate. All rules are
// evaluated; nothing short-circuits, so a caller sees every issue at once.
type Validation struct {
	Valid           bool     `json:"valid"`
	Warnings        []string `json:"warnings"`
	Errors          []string `json:"errors"`
	SuggestedTicker string   `json:"suggested_ticker,omitempty"`
}

// CreateResult reports the outcome of a guarded create.
type CreateResult struct {
	Success   bool      `json:"success"`
	CompanyID uuid.UUID `json:"company_id,omitempty"`
	Warnings  []string  `json:"warnings"`
	Errors    []string  `json:"errors"`
}

// Updates carries the mutable company fields; nil means unchanged.
type Updates struct {
	Name    *string `json:"name,omitempty"`
	Ticker  *string `json:"ticker,omitempty"`
	Country *string `json:"country,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// UpdateResult reports the outcome of a guarded update.
type UpdateResult struct {
	Success  bool     `json:"success"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// QualityReport is the aggregate health summary the monitor consumes.
type QualityReport struct {
	TotalCompanies        int            `json:"total_companies"`
	CompaniesWithTicker   int            `json:"companies_with_ticker"`
	TickerCoveragePercent float64        `json:"ticker_coverage_percent"`
	DuplicateCompanyCount int            `json:"duplicate_company_count"`
	ValidationIssueCount  int            `json:"validation_issue_count"`
	HighSeverityIssues    int            `json:"high_severity_issues"`
	Issues                []ticker.Issue `json:"issues,omitempty"`
}

// Guard validates and persists company records.
type Guard struct {
	registry  Registry
	validator *ticker.Validator
	detector  *dedupe.Detector
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New constructs the import guard. Metrics may be nil in tests.
func New(registry Registry, validator *ticker.Validator, detector *dedupe.Detector, logger *slog.Logger, m *metrics.Metrics) *Guard {
	return &Guard{
		registry:  registry,
		validator: validator,
		detector:  detector,
		logger:    logger,
		metrics:   m,
	}
}

// ValidateImport evaluates every import rule against the candidate. Errors
// block the write; warnings ride along with a successful one.
func (g *Guard) ValidateImport(ctx context.Context, candidate Candidate) (*Validation, error) {
	v := &Validation{Warnings: []string{}, Errors: []string{}}

	name := strings.TrimSpace(candidate.Name)
	if len(name) < 2 {
		v.Errors = append(v.Errors, "company name must be at least 2 characters")
	}

	if name != "" {
		similar, err := g.detector.FindSimilarCompanies(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(similar) > 0 {
			names := make([]string, 0, len(similar))
			for _, company := range similar {
				names = append(names, company.Name)
				if v.SuggestedTicker == "" && company.Ticker != "" {
					v.SuggestedTicker = strings.ToUpper(company.Ticker)
				}
			}
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("possible duplicates of existing companies: %s", strings.Join(names, ", ")))
		}
	}

	if candidate.Ticker != "" {
		assignment, err := g.validator.ValidateAssignment(ctx, name, candidate.Ticker)
		if err != nil {
			return nil, err
		}
		if !assignment.Valid {
			v.Errors = append(v.Errors, assignment.Reason)
			if assignment.SuggestedTicker != "" {
				v.SuggestedTicker = assignment.SuggestedTicker
			}
		}
	} else if suggestion, ok := g.validator.AutoAssign(name); ok {
		v.SuggestedTicker = suggestion
		v.Warnings = append(v.Warnings, fmt.Sprintf("no ticker supplied; reference table suggests %s", suggestion))
	}

	if len(candidate.Country) > maxCountryLen {
		v.Warnings = append(v.Warnings, "country value is implausibly long")
	}

	v.Valid = len(v.Errors) == 0
	return v, nil
}

// CreateSafely validates the candidate and persists it when clean. On
// validation failure nothing is written. The persisted ticker is the
// caller's, or the reference table's suggestion when the caller supplied
// none. A ticker hinted from a similar existing company is advisory only:
// that company still holds it, so persisting the hint would collide.
func (g *Guard) CreateSafely(ctx context.Context, candidate Candidate) (*CreateResult, error) {
	validation, err := g.ValidateImport(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		g.countRejected()
		return &CreateResult{Success: false, Warnings: validation.Warnings, Errors: validation.Errors}, nil
	}

	assignedTicker := strings.ToUpper(strings.TrimSpace(candidate.Ticker))
	callerSupplied := assignedTicker != ""
	if !callerSupplied {
		if suggestion, ok := g.validator.AutoAssign(strings.TrimSpace(candidate.Name)); ok {
			assignedTicker = suggestion
		}
	}

	company, err := models.NewCompany(strings.TrimSpace(candidate.Name), assignedTicker, candidate.Country, requestcontext.Now(ctx))
	if err != nil {
		g.countRejected()
		return &CreateResult{Success: false, Warnings: validation.Warnings, Errors: []string{err.Error()}}, nil
	}

	if err := g.registry.CreateCompany(ctx, company); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// The storage constraint is the authority. A caller-supplied
			// ticker that passed validation can only collide with a
			// concurrent import; an auto-assigned one may simply already
			// belong to the registered holder.
			msg := fmt.Sprintf("ticker %s is already assigned to an active company", assignedTicker)
			if callerSupplied {
				msg = fmt.Sprintf("ticker %s was claimed by a concurrent import", assignedTicker)
			}
			g.countRejected()
			return &CreateResult{
				Success:  false,
				Warnings: validation.Warnings,
				Errors:   []string{msg},
			}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist company failed")
	}

	g.logger.InfoContext(ctx, "company created",
		"company_id", company.ID,
		"name", company.Name,
		"ticker", company.Ticker,
		"warnings", len(validation.Warnings),
	)
	if g.metrics != nil {
		g.metrics.ImportsAccepted.Inc()
		g.metrics.ImportWarnings.Add(float64(len(validation.Warnings)))
	}

	return &CreateResult{
		Success:   true,
		CompanyID: company.ID,
		Warnings:  validation.Warnings,
		Errors:    []string{},
	}, nil
}

// UpdateSafely loads the company, re-validates the ticker assignment when the
// update changes it, and applies the update. An unknown id is a result error,
// not a transport failure.
func (g *Guard) UpdateSafely(ctx context.Context, companyID uuid.UUID, updates Updates) (*UpdateResult, error) {
	result := &UpdateResult{Warnings: []string{}, Errors: []string{}}

	company, err := g.registry.FindCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			result.Errors = append(result.Errors, fmt.Sprintf("company %s not found", companyID))
			return result, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load company failed")
	}

	newName := company.Name
	if updates.Name != nil {
		newName = strings.TrimSpace(*updates.Name)
		if len(newName) < 2 {
			result.Errors = append(result.Errors, "company name must be at least 2 characters")
		}
	}

	if updates.Ticker != nil {
		newTicker := strings.ToUpper(strings.TrimSpace(*updates.Ticker))
		if newTicker != "" && !strings.EqualFold(newTicker, company.Ticker) {
			assignment, err := g.validator.ValidateAssignment(ctx, newName, newTicker)
			if err != nil {
				return nil, err
			}
			if !assignment.Valid {
				result.Errors = append(result.Errors, assignment.Reason)
			}
		}
	}

	if updates.Country != nil && len(*updates.Country) > maxCountryLen {
		result.Warnings = append(result.Warnings, "country value is implausibly long")
	}

	if len(result.Errors) > 0 {
		return result, nil
	}

	company.Name = newName
	if updates.Ticker != nil {
		company.Ticker = strings.ToUpper(strings.TrimSpace(*updates.Ticker))
	}
	if updates.Country != nil {
		company.Country = *updates.Country
	}
	if updates.Active != nil {
		company.Active = *updates.Active
	}
	company.UpdatedAt = requestcontext.Now(ctx)

	if err := g.registry.UpdateCompany(ctx, company); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			result.Errors = append(result.Errors, "ticker was claimed by a concurrent import")
			return result, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist company update failed")
	}

	g.logger.InfoContext(ctx, "company updated", "company_id", company.ID)
	if g.metrics != nil {
		g.metrics.UpdatesApplied.Inc()
	}
	result.Success = true
	return result, nil
}

// BuildQualityReport composes the validator's report and the detector's
// aggregate counts into the summary the monitor consumes.
func (g *Guard) BuildQualityReport(ctx context.Context) (*QualityReport, error) {
	tickerReport, err := g.validator.BuildReport(ctx)
	if err != nil {
		return nil, err
	}
	duplicates, err := g.detector.CountDuplicateNamePairs(ctx)
	if err != nil {
		return nil, err
	}

	report := &QualityReport{
		TotalCompanies:        tickerReport.TotalCompanies,
		CompaniesWithTicker:   tickerReport.CompaniesWithTicker,
		DuplicateCompanyCount: duplicates,
		ValidationIssueCount:  len(tickerReport.Issues),
		Issues:                tickerReport.Issues,
	}
	if report.TotalCompanies > 0 {
		report.TickerCoveragePercent = 100 * float64(report.CompaniesWithTicker) / float64(report.TotalCompanies)
	}
	for _, issue := range tickerReport.Issues {
		if issue.Severity == ticker.SeverityHigh {
			report.HighSeverityIssues++
		}
	}
	return report, nil
}

func (g *Guard) countRejected() {
	if g.metrics != nil {
		g.metrics.ImportsRejected.Inc()
	}
}
