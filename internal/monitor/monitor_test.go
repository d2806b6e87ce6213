package monitor

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"tenet/internal/importguard"
	"tenet/internal/platform/config"
	"tenet/internal/registry/models"
	"tenet/pkg/platform/sentinel"
)

// stubReporter serves a canned quality report.
type stubReporter struct {
	report importguard.QualityReport
}

func (s *stubReporter) BuildQualityReport(context.Context) (*importguard.QualityReport, error) {
	r := s.report
	return &r, nil
}

// stubIndex serves duplicate tickers and watchlist lookups. Using a stub
// rather than the real store lets tests simulate invariant violations the
// store's uniqueness constraint would normally prevent.
type stubIndex struct {
	duplicates []string
	active     map[string]bool
	lookups    int
}

func (s *stubIndex) DuplicateTickers(context.Context) ([]string, error) {
	return s.duplicates, nil
}

func (s *stubIndex) FindActiveByTicker(_ context.Context, ticker string) (*models.Company, error) {
	s.lookups++
	if s.active[ticker] {
		return &models.Company{Ticker: ticker, Active: true}, nil
	}
	return nil, sentinel.ErrNotFound
}

type MonitorSuite struct {
	suite.Suite
	reporter *stubReporter
	index    *stubIndex
}

func TestMonitorSuite(t *testing.T) {
	suite.Run(t, new(MonitorSuite))
}

func (s *MonitorSuite) SetupTest() {
	s.reporter = &stubReporter{report: importguard.QualityReport{
		TotalCompanies:        100,
		CompaniesWithTicker:   90,
		TickerCoveragePercent: 90,
	}}
	s.index = &stubIndex{active: map[string]bool{}}
}

func (s *MonitorSuite) monitor(cfg config.MonitorConfig) *Monitor {
	return New(s.reporter, s.index, cfg, slog.Default(), nil)
}

func (s *MonitorSuite) TestHealthyRegistryIsExcellent() {
	report, err := s.monitor(config.MonitorConfig{}).RunAudit(context.Background())
	s.Require().NoError(err)
	s.Equal(HealthExcellent, report.Health)
	s.Empty(report.Alerts)
}

func (s *MonitorSuite) TestCoverageThresholds() {
	s.Run("below warning floor", func() {
		s.reporter.report.TickerCoveragePercent = 45
		report, err := s.monitor(config.MonitorConfig{}).RunAudit(context.Background())
		s.Require().NoError(err)
		s.Require().Len(report.Alerts, 1)
		s.Equal(LevelWarning, report.Alerts[0].Level)
		s.Equal(HealthGood, report.Health, "a single warning is still good health")
	})

	s.Run("below critical floor", func() {
		s.reporter.report.TickerCoveragePercent = 15
		report, err := s.monitor(config.MonitorConfig{}).RunAudit(context.Background())
		s.Require().NoError(err)
		s.Require().Len(report.Alerts, 1)
		s.Equal(LevelCritical, report.Alerts[0].Level)
		s.Equal(HealthCritical, report.Health)
	})
}

func (s *MonitorSuite) TestDuplicateAndIssueThresholds() {
	s.Run("duplicate companies above warning limit", func() {
		s.reporter.report.DuplicateCompanyCount = 11
		report, err := s.monitor(config.MonitorConfig{}).RunAudit(context.Background())
		s.Require().NoError(err)
		s.Require().Len(report.Alerts, 1)
		s.Equal(LevelWarning, report.Alerts[0].Level)
	})

	s.Run("issues above critical limit", func() {
		s.reporter.report.DuplicateCompanyCount = 0
		s.reporter.report.HighSeverityIssues = 11
		report, err := s.monitor(config.MonitorConfig{}).RunAudit(context.Background())
		s.Require().NoError(err)
		s.Require().Len(report.Alerts, 1)
		s.Equal(LevelCritical, report.Alerts[0].Level)
	})

	s.Run("value exactly at the limit does not alert", func() {
		s.reporter.report.HighSeverityIssues = 10
		s.reporter.report.DuplicateCompanyCount = 10
		report, err := s.monitor(config.MonitorConfig{}).RunAudit(context.Background())
		s.Require().NoError(err)
		sawIssueAlert := false
		for _, a := range report.Alerts {
			if a.Check == "validation_issues" || a.Check == "duplicate_companies" {
				sawIssueAlert = true
			}
		}
		s.False(sawIssueAlert)
	})
}

func (s *MonitorSuite) TestDuplicateTickerIsAlwaysCritical() {
	s.index.duplicates = []string{"AAPL"}

	report, err := s.monitor(config.MonitorConfig{
		DuplicatesWarnAbove: 1000,
		DuplicatesCritAbove: 2000,
	}).RunAudit(context.Background())
	s.Require().NoError(err)

	s.Require().Len(report.Alerts, 1)
	s.Equal(LevelCritical, report.Alerts[0].Level)
	s.Equal("duplicate_ticker", report.Alerts[0].Check)
	s.Equal(HealthCritical, report.Health, "invariant violations cannot be downgraded by thresholds")
}

func (s *MonitorSuite) TestWatchlist() {
	s.index.active["AAPL"] = true

	report, err := s.monitor(config.MonitorConfig{
		Watchlist: []string{"AAPL", "MSFT", "AMZN", "GOOGL"},
	}).RunAudit(context.Background())
	s.Require().NoError(err)

	s.Require().Len(report.Alerts, 3, "each uncovered watchlist name warns")
	for _, alert := range report.Alerts {
		s.Equal(LevelWarning, alert.Level)
		s.Equal("watchlist", alert.Check)
	}
	s.Equal(HealthWarning, report.Health, "more than two warnings degrade overall health")
}

func (s *MonitorSuite) TestDefaultConfigWatchlistFires() {
	// An otherwise healthy registry that covers none of the default
	// watch-list names must not grade excellent under the stock config.
	report, err := s.monitor(config.FromEnv().Monitor).RunAudit(context.Background())
	s.Require().NoError(err)

	s.Require().NotEmpty(report.Alerts, "stock config carries a non-empty watch-list")
	for _, alert := range report.Alerts {
		s.Equal("watchlist", alert.Check)
		s.Equal(LevelWarning, alert.Level)
	}
	s.Equal(HealthWarning, report.Health)
}

func (s *MonitorSuite) TestQuickHealthCheck() {
	s.Run("healthy", func() {
		healthy, alerts, err := s.monitor(config.MonitorConfig{}).QuickHealthCheck(context.Background())
		s.Require().NoError(err)
		s.True(healthy)
		s.Zero(alerts)
	})

	s.Run("critical trips the boolean", func() {
		s.index.duplicates = []string{"AAPL"}
		healthy, alerts, err := s.monitor(config.MonitorConfig{}).QuickHealthCheck(context.Background())
		s.Require().NoError(err)
		s.False(healthy)
		s.Equal(1, alerts)
	})

	s.Run("skips per-ticker watch-list lookups", func() {
		s.index.duplicates = nil
		cfg := config.MonitorConfig{Watchlist: []string{"AAPL", "MSFT"}}

		healthy, _, err := s.monitor(cfg).QuickHealthCheck(context.Background())
		s.Require().NoError(err)
		s.True(healthy)
		s.Zero(s.index.lookups)

		_, err = s.monitor(cfg).RunAudit(context.Background())
		s.Require().NoError(err)
		s.Equal(2, s.index.lookups, "the full audit still walks the watch-list")
	})
}
