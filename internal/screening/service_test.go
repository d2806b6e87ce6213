package screening_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tenet/internal/audit"
	"tenet/internal/platform/config"
	"tenet/internal/registry/models"
	"tenet/internal/registry/store"
	"tenet/internal/screening"
	dErrors "tenet/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	sink    *audit.MemorySink
	service *screening.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.sink = audit.NewMemorySink()
	cfg := config.ScreeningConfig{
		DebtToAssetsMax:        0.40,
		CashToAssetsMax:        0.30,
		ReceivablesToMarketMax: 0.49,
	}
	s.service = screening.NewService(s.store, cfg,
		screening.WithAudit(audit.NewPublisher(s.sink)),
	)
}

func (s *ServiceSuite) seed(name, ticker string) *models.Company {
	company, err := models.NewCompany(name, ticker, "US", time.Now())
	s.Require().NoError(err)
	company.Sector = "Industrials"
	company.Industry = "Freight and Logistics"
	s.Require().NoError(s.store.CreateCompany(context.Background(), company))
	s.seedFinancials(company.ID)
	return company
}

func (s *ServiceSuite) seedFinancials(companyID uuid.UUID) {
	v := func(x float64) *float64 { return &x }
	s.Require().NoError(s.store.CreateFinancials(context.Background(), &models.Financials{
		ID:             uuid.New(),
		CompanyID:      companyID,
		MarketCap:      v(1000),
		TotalAssets:    v(500),
		TotalDebt:      v(100),
		CashSecurities: v(50),
		Receivables:    v(40),
		Period:         "2025-Q4",
		SourceID:       uuid.New(),
	}))
}

func (s *ServiceSuite) seedEvidence(companyID uuid.UUID, tag models.Tag, notes string) {
	source := &models.Source{ID: uuid.New(), Domain: "example.org", Title: "report", URL: "https://example.org/r"}
	s.Require().NoError(s.store.CreateSource(context.Background(), source))
	s.Require().NoError(s.store.CreateEvidence(context.Background(), &models.Evidence{
		ID:        uuid.New(),
		CompanyID: companyID,
		Tag:       tag,
		SourceID:  source.ID,
		Strength:  models.StrengthHigh,
		Notes:     notes,
	}))
}

func defenseOnly() screening.Filters {
	return screening.Filters{Defense: &screening.TagOptions{}}
}

func (s *ServiceSuite) TestScreenRejectsEmptyFilters() {
	_, err := s.service.Screen(context.Background(), screening.Request{Tickers: []string{"PL"}})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestScreenPreservesRequestOrder() {
	ctx := context.Background()
	s.seed("Plain Logistics", "PL")
	s.seed("Quiet Holdings", "QH")
	s.seed("Grain Shipping", "GS")

	resp, err := s.service.Screen(ctx, screening.Request{
		Tickers: []string{"GS", "PL", "QH"},
		Filters: defenseOnly(),
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Rows, 3)
	s.Equal("GS", resp.Rows[0].Ticker)
	s.Equal("PL", resp.Rows[1].Ticker)
	s.Equal("QH", resp.Rows[2].Ticker)
	s.NotEmpty(resp.RequestID)
	s.Empty(resp.Warnings)
}

func (s *ServiceSuite) TestUnknownTickerIsAReviewRowNotAnError() {
	resp, err := s.service.Screen(context.Background(), screening.Request{
		Tickers: []string{"GHOST"},
		Filters: defenseOnly(),
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Rows, 1)

	row := resp.Rows[0]
	s.True(row.NotFound)
	s.Equal(screening.VerdictReview, row.Verdict)
	s.Equal(screening.ConfidenceLow, row.Confidence)
	s.Contains(row.Reasons[0], "not found")
	s.NotEmpty(row.AuditID)

	s.Require().Len(resp.Warnings, 1)
	s.Contains(resp.Warnings[0], "GHOST")
}

func (s *ServiceSuite) TestRepeatedUnknownTickerWarnsOnce() {
	resp, err := s.service.Screen(context.Background(), screening.Request{
		Tickers: []string{"GHOST", "GHOST", "GHOST"},
		Filters: defenseOnly(),
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Rows, 3, "every requested row is answered")

	s.Require().Len(resp.Warnings, 1)
	s.Contains(resp.Warnings[0], "GHOST")
}

func (s *ServiceSuite) TestScreenExclusionCarriesSourcesAndAudit() {
	ctx := context.Background()
	company := s.seed("Elbit Systems", "ESLT")
	s.seedEvidence(company.ID, models.TagDefense, "drone components")

	resp, err := s.service.Screen(ctx, screening.Request{
		Tickers: []string{"eslt"},
		Filters: defenseOnly(),
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Rows, 1)

	row := resp.Rows[0]
	s.Equal(screening.VerdictExcluded, row.Verdict)
	s.Equal("ESLT", row.Ticker, "lookup is case-insensitive, response is canonical")
	s.Require().Len(row.Sources, 1)
	s.Equal("example.org", row.Sources[0].Domain)

	// The audit trail holds the same decision under the row's audit id.
	event, err := s.sink.Find(row.AuditID)
	s.Require().NoError(err)
	s.Equal(string(screening.VerdictExcluded), event.Verdict)
	s.Equal("ESLT", event.Ticker)
}

func (s *ServiceSuite) TestBrowseModeReturnsOnlyFlaggedRows() {
	ctx := context.Background()
	s.seed("Plain Logistics", "PL")
	flagged := s.seed("Elbit Systems", "ESLT")
	s.seedEvidence(flagged.ID, models.TagDefense, "drone components")

	resp, err := s.service.Screen(ctx, screening.Request{Filters: defenseOnly()})
	s.Require().NoError(err)
	s.Require().Len(resp.Rows, 1, "passing companies are omitted in browse mode")
	s.Equal("ESLT", resp.Rows[0].Ticker)
}

func (s *ServiceSuite) TestDisabledCategoriesAreNotEvaluated() {
	ctx := context.Background()
	company := s.seed("Elbit Systems", "ESLT")
	s.seedEvidence(company.ID, models.TagBDS, "bds-tagged fact")

	resp, err := s.service.Screen(ctx, screening.Request{
		Tickers: []string{"ESLT"},
		Filters: defenseOnly(),
	})
	s.Require().NoError(err)

	row := resp.Rows[0]
	s.Equal(screening.VerdictPass, row.Verdict, "bds evidence is invisible to a defense-only screen")
	s.Require().Len(row.Categories, 1)
	s.Equal(models.TagDefense, row.Categories[0].Category)
}
