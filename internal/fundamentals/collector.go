package fundamentals

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tenet/internal/registry/models"
	dErrors "tenet/pkg/domain-errors"
)

// Registry is the store surface the collector writes through.
type Registry interface {
	ListActiveCompanies(ctx context.Context) ([]models.Company, error)
	UpdateCompany(ctx context.Context, company *models.Company) error
	CreateSource(ctx context.Context, source *models.Source) error
	CreateFinancials(ctx context.Context, financials *models.Financials) error
}

// RefreshResult summarizes one batch run. Partial results are retained: a
// company refreshed before a fatal stop keeps its new data.
type RefreshResult struct {
	Refreshed int      `json:"refreshed"`
	Skipped   int      `json:"skipped"`
	Failures  []string `json:"failures,omitempty"`
}

// Collector refreshes profiles and financials for every active company that
// holds a ticker. One provider failure degrades that company to missing-data
// handling; only context cancellation stops the batch.
type Collector struct {
	registry Registry
	provider Provider
	logger   *slog.Logger
}

// NewCollector wires the collector.
func NewCollector(registry Registry, provider Provider, logger *slog.Logger) *Collector {
	return &Collector{registry: registry, provider: provider, logger: logger}
}

// RefreshAll runs one batch over the registry. The provider's own limiter
// paces the calls.
func (c *Collector) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	companies, err := c.registry.ListActiveCompanies(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list active companies")
	}

	source := &models.Source{
		ID:     uuid.New(),
		Domain: "fundamentals-provider",
		Title:  "automated fundamentals refresh " + time.Now().UTC().Format("2006-01-02"),
	}
	if err := c.registry.CreateSource(ctx, source); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "create refresh source")
	}

	result := &RefreshResult{}
	for i := range companies {
		company := &companies[i]
		if company.Ticker == "" {
			result.Skipped++
			continue
		}
		if err := c.refreshCompany(ctx, company, source.ID); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			c.logger.WarnContext(ctx, "fundamentals refresh failed, continuing",
				"ticker", company.Ticker,
				"error", err,
			)
			result.Failures = append(result.Failures, company.Ticker)
			continue
		}
		result.Refreshed++
	}
	return result, nil
}

func (c *Collector) refreshCompany(ctx context.Context, company *models.Company, sourceID uuid.UUID) error {
	profile, err := c.provider.Profile(ctx, company.Ticker)
	if err != nil {
		return err
	}
	company.Sector = profile.Sector
	company.Industry = profile.Industry
	company.Description = profile.Description
	if err := c.registry.UpdateCompany(ctx, company); err != nil {
		return err
	}

	figures, err := c.provider.Financials(ctx, company.Ticker)
	if err != nil {
		return err
	}
	return c.registry.CreateFinancials(ctx, &models.Financials{
		ID:             uuid.New(),
		CompanyID:      company.ID,
		MarketCap:      figures.MarketCap,
		TotalAssets:    figures.TotalAssets,
		TotalDebt:      figures.TotalDebt,
		CashSecurities: figures.CashSecurities,
		Receivables:    figures.Receivables,
		Period:         figures.Period,
		SourceID:       sourceID,
	})
}
