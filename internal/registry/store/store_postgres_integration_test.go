//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tenet/internal/registry/models"
	"tenet/internal/registry/store"
	"tenet/pkg/platform/sentinel"
	"tenet/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "evidence", "financials", "aliases", "companies", "sources")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seed(name, ticker string) *models.Company {
	company, err := models.NewCompany(name, ticker, "US", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateCompany(context.Background(), company))
	return company
}

func (s *PostgresStoreSuite) seedSource() *models.Source {
	source := &models.Source{
		ID:     uuid.New(),
		Domain: "example.org",
		Title:  "integration fixture",
		URL:    "https://example.org/report",
	}
	s.Require().NoError(s.store.CreateSource(context.Background(), source))
	return source
}

func (s *PostgresStoreSuite) TestCompanyRoundTrip() {
	ctx := context.Background()
	company := s.seed("Elbit Systems", "ESLT")

	found, err := s.store.FindCompanyByID(ctx, company.ID)
	s.Require().NoError(err)
	s.Equal(company.Name, found.Name)
	s.Equal("ESLT", found.Ticker)
	s.WithinDuration(company.UpdatedAt, found.UpdatedAt, time.Second)

	byTicker, err := s.store.FindActiveByTicker(ctx, "eslt")
	s.Require().NoError(err)
	s.Equal(company.ID, byTicker.ID)

	company.Sector = "Aerospace & Defense"
	s.Require().NoError(s.store.UpdateCompany(ctx, company))
	found, err = s.store.FindCompanyByID(ctx, company.ID)
	s.Require().NoError(err)
	s.Equal("Aerospace & Defense", found.Sector)

	_, err = s.store.FindCompanyByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentTickerBinding races concurrent imports onto one identifier.
// The partial unique index must let exactly one through.
func (s *PostgresStoreSuite) TestConcurrentTickerBinding() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var created atomic.Int32
	var conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			company, err := models.NewCompany(fmt.Sprintf("Racing Import %02d", n), "RACE", "US", time.Now().UTC())
			s.Require().NoError(err)

			switch err := s.store.CreateCompany(ctx, company); {
			case err == nil:
				created.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			default:
				s.Failf("unexpected error", "create company: %v", err)
			}
		}(i)
	}

	wg.Wait()

	s.Equal(int32(1), created.Load(), "exactly one import should bind the ticker")
	s.Equal(int32(goroutines-1), conflicts.Load(), "remaining imports should conflict")
}

func (s *PostgresStoreSuite) TestDeactivationReleasesTicker() {
	ctx := context.Background()
	original := s.seed("Old Boeing Listing", "BA")

	original.Deactivate(time.Now().UTC())
	s.Require().NoError(s.store.UpdateCompany(ctx, original))

	replacement := s.seed("Boeing Company", "BA")

	// Reactivating the old listing would bind the ticker twice.
	original.Active = true
	s.ErrorIs(s.store.UpdateCompany(ctx, original), sentinel.ErrConflict)

	found, err := s.store.FindActiveByTicker(ctx, "BA")
	s.Require().NoError(err)
	s.Equal(replacement.ID, found.ID)
}

func (s *PostgresStoreSuite) TestEvidenceRoundTrip() {
	ctx := context.Background()
	company := s.seed("General Dynamics", "GD")
	source := s.seedSource()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, notes := range []string{"first", "second"} {
		s.Require().NoError(s.store.CreateEvidence(ctx, &models.Evidence{
			ID:         uuid.New(),
			CompanyID:  company.ID,
			Tag:        models.TagDefense,
			SourceID:   source.ID,
			Strength:   models.StrengthHigh,
			Notes:      notes,
			ObservedAt: base,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := s.store.ListEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("first", records[0].Notes)
	s.Equal("second", records[1].Notes)
	// NULL sub_category scans back as the empty string.
	s.Empty(records[0].SubCategory)

	s.Require().NoError(s.store.DeleteEvidence(ctx, records[0].ID))
	records, err = s.store.ListEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *PostgresStoreSuite) TestLatestFinancials() {
	ctx := context.Background()
	company := s.seed("Plain Logistics", "PL")
	source := s.seedSource()

	debtOld, debtNew := 10.0, 25.0
	for period, debt := range map[string]*float64{
		"2025-Q1": &debtOld,
		"2025-Q3": &debtNew,
	} {
		s.Require().NoError(s.store.CreateFinancials(ctx, &models.Financials{
			ID:        uuid.New(),
			CompanyID: company.ID,
			TotalDebt: debt,
			Period:    period,
			SourceID:  source.ID,
		}))
	}

	latest, err := s.store.LatestFinancials(ctx, company.ID)
	s.Require().NoError(err)
	s.Equal("2025-Q3", latest.Period)
	s.Require().NotNil(latest.TotalDebt)
	s.Equal(25.0, *latest.TotalDebt)
	s.Nil(latest.MarketCap)

	_, err = s.store.LatestFinancials(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteCompanyCascades() {
	ctx := context.Background()
	company := s.seed("Absent From Vendor", "AFV")
	source := s.seedSource()
	s.Require().NoError(s.store.CreateEvidence(ctx, &models.Evidence{
		ID:         uuid.New(),
		CompanyID:  company.ID,
		Tag:        models.TagSurveillance,
		SourceID:   source.ID,
		Strength:   models.StrengthLow,
		Notes:      "cascades away",
		ObservedAt: time.Now().UTC(),
		CreatedAt:  time.Now().UTC(),
	}))

	s.Require().NoError(s.store.DeleteCompany(ctx, company.ID))

	records, err := s.store.ListEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Empty(records)

	// Sources outlive the companies citing them.
	_, err = s.store.FindSource(ctx, source.ID)
	s.NoError(err)
}

func (s *PostgresStoreSuite) TestDuplicateNameCount() {
	ctx := context.Background()
	s.seed("Acme Corp", "ACME")
	s.seed("ACME Corp.", "")
	s.seed("Quiet Holdings", "QH")

	names, err := s.store.CountDuplicateNames(ctx)
	s.Require().NoError(err)
	s.Equal(1, names)

	tickers, err := s.store.DuplicateTickers(ctx)
	s.Require().NoError(err)
	s.Empty(tickers)
}
