package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tenet/internal/registry/models"
	"tenet/internal/registry/store"
	"tenet/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *store.InMemory
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = store.NewInMemory()
}

func (s *InMemorySuite) seed(name, ticker string) *models.Company {
	company, err := models.NewCompany(name, ticker, "US", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateCompany(context.Background(), company))
	return company
}

func (s *InMemorySuite) TestActiveTickerUniqueness() {
	ctx := context.Background()
	s.seed("Elbit Systems", "ESLT")

	s.Run("second active company with the same ticker conflicts", func() {
		dup, err := models.NewCompany("Elbit Systems of America", "ESLT", "US", time.Now())
		s.Require().NoError(err)
		s.ErrorIs(s.store.CreateCompany(ctx, dup), sentinel.ErrConflict)
	})

	s.Run("comparison is case-insensitive", func() {
		dup, err := models.NewCompany("Elbit Shadow", "eslt", "US", time.Now())
		s.Require().NoError(err)
		s.ErrorIs(s.store.CreateCompany(ctx, dup), sentinel.ErrConflict)
	})

	s.Run("empty tickers never conflict", func() {
		s.seed("First Unlisted", "")
		s.seed("Second Unlisted", "")
	})
}

func (s *InMemorySuite) TestDeactivationReleasesTicker() {
	ctx := context.Background()
	original := s.seed("Old Boeing Listing", "BA")

	original.Deactivate(time.Now())
	s.Require().NoError(s.store.UpdateCompany(ctx, original))

	// The released identifier is free for a new active company.
	replacement := s.seed("Boeing Company", "BA")

	_, err := s.store.FindActiveByTicker(ctx, "ba")
	s.Require().NoError(err)

	// Reactivating the old listing would bind BA twice.
	original.Active = true
	s.ErrorIs(s.store.UpdateCompany(ctx, original), sentinel.ErrConflict)

	found, err := s.store.FindActiveByTicker(ctx, "BA")
	s.Require().NoError(err)
	s.Equal(replacement.ID, found.ID)
}

func (s *InMemorySuite) TestLatestFinancialsPicksNewestPeriod() {
	ctx := context.Background()
	company := s.seed("Plain Logistics", "PL")
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
		}))
	}

	latest, err := s.store.LatestFinancials(ctx, company.ID)
	s.Require().NoError(err)
	s.Equal("2025-Q3", latest.Period)
	s.Require().NotNil(latest.TotalDebt)
	s.Equal(25.0, *latest.TotalDebt)

	_, err = s.store.LatestFinancials(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestEvidencePreservesInsertionOrder() {
	ctx := context.Background()
	company := s.seed("General Dynamics", "GD")
	for _, notes := range []string{"first", "second", "third"} {
		s.Require().NoError(s.store.CreateEvidence(ctx, &models.Evidence{
			ID:        uuid.New(),
			CompanyID: company.ID,
			Tag:       models.TagDefense,
			SourceID:  uuid.New(),
			Strength:  models.StrengthLow,
			Notes:     notes,
		}))
	}

	records, err := s.store.ListEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("first", records[0].Notes)
	s.Equal("third", records[2].Notes)
}

func (s *InMemorySuite) TestDuplicateCounts() {
	ctx := context.Background()
	s.seed("Acme Corp", "ACME")
	s.seed("ACME Corp.", "")
	s.seed("Quiet Holdings", "QH")

	// The ticker constraint blocks duplicate tickers at write time, so only
	// name duplicates can accumulate.
	names, err := s.store.CountDuplicateNames(ctx)
	s.Require().NoError(err)
	s.Equal(1, names)

	tickers, err := s.store.DuplicateTickers(ctx)
	s.Require().NoError(err)
	s.Empty(tickers)

	count, err := s.store.CountDuplicateTickers(ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *InMemorySuite) TestDeleteCompanyRemovesChildren() {
	ctx := context.Background()
	company := s.seed("Absent From Vendor", "AFV")
	s.Require().NoError(s.store.CreateEvidence(ctx, &models.Evidence{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Tag:       models.TagSurveillance,
		SourceID:  uuid.New(),
		Strength:  models.StrengthHigh,
	}))

	s.Require().NoError(s.store.DeleteCompany(ctx, company.ID))

	_, err := s.store.FindCompanyByID(ctx, company.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	records, err := s.store.ListEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Empty(records)

	s.ErrorIs(s.store.DeleteCompany(ctx, company.ID), sentinel.ErrNotFound)
}
