package dedupe_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tenet/internal/dedupe"
	"tenet/internal/registry/models"
	"tenet/internal/registry/store"
)

func TestIsPotentialDuplicate(t *testing.T) {
	cases := []struct {
		name  string
		a, b  string
		match bool
	}{
		{"exact names", "Elbit Systems Ltd", "Elbit Systems Ltd", true},
		{"punctuation and case are ignored", "Elbit Systems, Ltd.", "elbit systems ltd", true},
		{"containment", "Raytheon", "Raytheon Technologies Corporation", true},
		{"corporate suffix stripped", "Caterpillar Inc", "Caterpillar Corp", true},
		{"short names never match via stripping", "A Inc", "A Corp", false},
		{"unrelated names", "Elbit Systems", "Caterpillar", false},
		{"both empty", "", "", true},
		{"one empty", "Elbit", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := dedupe.IsPotentialDuplicate(tc.a, tc.b); got != tc.match {
				t.Fatalf("IsPotentialDuplicate(%q, %q) = %t, want %t", tc.a, tc.b, got, tc.match)
			}
			// Symmetric by construction.
			if got := dedupe.IsPotentialDuplicate(tc.b, tc.a); got != tc.match {
				t.Fatalf("IsPotentialDuplicate(%q, %q) = %t, want %t (asymmetric)", tc.b, tc.a, got, tc.match)
			}
		})
	}
}

type DetectorSuite struct {
	suite.Suite
	store    *store.InMemory
	detector *dedupe.Detector
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorSuite))
}

func (s *DetectorSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.detector = dedupe.New(s.store)
}

func (s *DetectorSuite) seedCompany(name, ticker string) *models.Company {
	company, err := models.NewCompany(name, ticker, "US", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateCompany(context.Background(), company))
	return company
}

func (s *DetectorSuite) seedEvidence(companyID uuid.UUID, tag models.Tag, notes string) models.Evidence {
	ev := models.Evidence{
		ID:        uuid.New(),
		CompanyID: companyID,
		Tag:       tag,
		SourceID:  uuid.New(),
		Strength:  models.StrengthMedium,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	s.Require().NoError(s.store.CreateEvidence(context.Background(), &ev))
	return ev
}

func (s *DetectorSuite) seedAlias(companyID uuid.UUID, value string, typ models.AliasType) {
	alias := models.Alias{ID: uuid.New(), CompanyID: companyID, Value: value, Type: typ}
	s.Require().NoError(s.store.CreateAlias(context.Background(), &alias))
}

func (s *DetectorSuite) TestFindSimilarCompanies() {
	ctx := context.Background()

	for _, name := range []string{
		"General Dynamics Corporation",
		"General Mills",
		"General Atomics",
		"Dynamic Yield Ltd",
		"Unrelated Foods",
	} {
		s.seedCompany(name, "")
	}

	similar, err := s.detector.FindSimilarCompanies(ctx, "General Dynamics")
	s.Require().NoError(err)

	names := make([]string, 0, len(similar))
	for _, c := range similar {
		names = append(names, c.Name)
	}
	s.Contains(names, "General Dynamics Corporation")
	s.Contains(names, "General Mills")
	s.NotContains(names, "Unrelated Foods")

	// A company is reported once even when several words match it.
	seen := map[string]int{}
	for _, n := range names {
		seen[n]++
	}
	for n, count := range seen {
		s.Equalf(1, count, "company %s reported %d times", n, count)
	}
}

func (s *DetectorSuite) TestFindDuplicateEvidence() {
	ctx := context.Background()
	company := s.seedCompany("Elbit Systems", "ESLT")

	first := s.seedEvidence(company.ID, models.TagBDS, "Supplies surveillance towers")
	s.seedEvidence(company.ID, models.TagBDS, "supplies SURVEILLANCE towers!") // same normalized notes
	s.seedEvidence(company.ID, models.TagDefense, "Supplies surveillance towers")
	s.seedEvidence(company.ID, models.TagBDS, "Different fact entirely")

	groups, err := s.detector.FindDuplicateEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Require().Len(groups, 1, "only the same-tag same-notes pair is a duplicate group")
	s.Equal(models.TagBDS, groups[0].Key.Tag)
	s.Len(groups[0].Records, 2)
	s.Equal(first.ID, groups[0].Records[0].ID, "earliest record leads the group")
	s.Len(groups[0].Removable(), 1)
}

func (s *DetectorSuite) TestCleanupDuplicateEvidenceIsIdempotent() {
	ctx := context.Background()
	company := s.seedCompany("Elbit Systems", "ESLT")

	kept := s.seedEvidence(company.ID, models.TagBDS, "note one")
	s.seedEvidence(company.ID, models.TagBDS, "Note One")
	s.seedEvidence(company.ID, models.TagBDS, "NOTE ONE.")
	s.seedEvidence(company.ID, models.TagSurveillance, "note one") // different tag, untouched

	removed, err := s.detector.CleanupDuplicateEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Equal(2, removed)

	remaining, err := s.store.ListEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Len(remaining, 2)
	s.Equal(kept.ID, remaining[0].ID, "earliest record survives")

	// Second run over clean data is a no-op.
	removed, err = s.detector.CleanupDuplicateEvidence(ctx, company.ID)
	s.Require().NoError(err)
	s.Zero(removed)
}

func (s *DetectorSuite) TestCompanyCandidates() {
	ctx := context.Background()
	company := s.seedCompany("Elbit Systems Ltd", "ESLT")
	s.seedEvidence(company.ID, models.TagBDS, "fact")
	s.seedEvidence(company.ID, models.TagDefense, "another fact")
	s.seedAlias(company.ID, "Elbit", models.AliasBrand)
	s.seedAlias(company.ID, "Elbit Systems Limited", models.AliasLegalName)
	s.seedAlias(company.ID, "ESL", models.AliasPriorTicker)

	candidates, err := s.detector.CompanyCandidates(ctx, "Elbit Systems")
	s.Require().NoError(err)
	s.Require().Len(candidates, 1)
	s.Equal(company.ID, candidates[0].Company.ID)
	s.Equal(2, candidates[0].EvidenceCount)
	s.Equal(3, candidates[0].AliasCount)

	bare := s.seedCompany("Elbit Industrial", "")
	candidates, err = s.detector.CompanyCandidates(ctx, "Elbit Industrial")
	s.Require().NoError(err)
	for _, c := range candidates {
		if c.Company.ID == bare.ID {
			s.Zero(c.AliasCount, "a company without aliases counts zero")
		}
	}
}
