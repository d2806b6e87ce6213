// Package monitor audits registry health on demand and turns the import
// guard's quality report into leveled alerts. It performs no writes.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tenet/internal/importguard"
	"tenet/internal/monitor/metrics"
	"tenet/internal/platform/config"
	"tenet/internal/registry/models"
	dErrors "tenet/pkg/domain-errors"
	"tenet/pkg/platform/sentinel"
)

// Level grades an alert.
type Level string

const (
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Health is the overall registry grade.
type Health string

const (
	HealthExcellent Health = "excellent"
	HealthGood      Health = "good"
	HealthWarning   Health = "warning"
	HealthCritical  Health = "critical"
)

// Alert is one leveled finding from an audit run.
type Alert struct {
	Level   Level  `json:"level"`
	Check   string `json:"check"`
	Message string `json:"message"`
}

// Report is the outcome of one full audit.
type Report struct {
	RanAt   time.Time                 `json:"ran_at"`
	Health  Health                    `json:"health"`
	Alerts  []Alert                   `json:"alerts"`
	Quality importguard.QualityReport `json:"quality"`
}

// Reporter builds the quality report the monitor grades.
type Reporter interface {
	BuildQualityReport(ctx context.Context) (*importguard.QualityReport, error)
}

// TickerIndex answers the two direct registry questions the monitor asks
// beyond the quality report. Satisfied by the registry store.
type TickerIndex interface {
	DuplicateTickers(ctx context.Context) ([]string, error)
	FindActiveByTicker(ctx context.Context, ticker string) (*models.Company, error)
}

// Monitor audits the registry against configured thresholds.
type Monitor struct {
	reporter Reporter
	index    TickerIndex
	cfg      config.MonitorConfig
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a Monitor. Zero-valued thresholds fall back to defaults so a
// partial config cannot silently disable a check. Metrics may be nil.
func New(reporter Reporter, index TickerIndex, cfg config.MonitorConfig, logger *slog.Logger, m *metrics.Metrics) *Monitor {
	if cfg.CoverageWarnBelow == 0 {
		cfg.CoverageWarnBelow = 50
	}
	if cfg.CoverageCriticalBelow == 0 {
		cfg.CoverageCriticalBelow = 20
	}
	if cfg.DuplicatesWarnAbove == 0 {
		cfg.DuplicatesWarnAbove = 10
	}
	if cfg.DuplicatesCritAbove == 0 {
		cfg.DuplicatesCritAbove = 20
	}
	if cfg.IssuesWarnAbove == 0 {
		cfg.IssuesWarnAbove = 5
	}
	if cfg.IssuesCritAbove == 0 {
		cfg.IssuesCritAbove = 10
	}
	return &Monitor{reporter: reporter, index: index, cfg: cfg, logger: logger, metrics: m}
}

// RunAudit executes the full check suite and grades overall health.
func (m *Monitor) RunAudit(ctx context.Context) (*Report, error) {
	start := time.Now()

	report, err := m.audit(ctx, true)
	if err != nil {
		return nil, err
	}
	quality := &report.Quality

	m.metrics.SetCoverage(quality.TickerCoveragePercent)
	m.metrics.SetDuplicates(quality.DuplicateCompanyCount)
	m.metrics.SetIssues(quality.ValidationIssueCount)
	for _, alert := range report.Alerts {
		m.metrics.IncAlert(string(alert.Level))
	}
	m.metrics.ObserveAuditDuration(time.Since(start).Seconds())

	m.logger.InfoContext(ctx, "registry audit complete",
		"health", report.Health,
		"alerts", len(report.Alerts),
		"coverage_pct", quality.TickerCoveragePercent,
	)
	return report, nil
}

// audit runs the check suite and grades the result. The quick path skips the
// per-ticker watch-list lookups; those raise warnings only, so they can never
// change the critical boolean.
func (m *Monitor) audit(ctx context.Context, withWatchlist bool) (*Report, error) {
	quality, err := m.reporter.BuildQualityReport(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "build quality report")
	}

	report := &Report{
		RanAt:   time.Now().UTC(),
		Quality: *quality,
		Alerts:  []Alert{},
	}

	m.checkCoverage(report, quality.TickerCoveragePercent)
	m.checkDuplicateNames(report, quality.DuplicateCompanyCount)
	m.checkIssues(report, quality.HighSeverityIssues)
	if err := m.checkDuplicateTickers(ctx, report); err != nil {
		return nil, err
	}
	if withWatchlist {
		if err := m.checkWatchlist(ctx, report); err != nil {
			return nil, err
		}
	}

	report.Health = grade(report.Alerts)
	return report, nil
}

// QuickHealthCheck is the polling variant: healthy means no critical
// condition, count is how many alerts the checks it ran raised. It skips the
// watch-list lookups and emits no metrics, keeping a poll to the quality
// report plus one aggregate query.
func (m *Monitor) QuickHealthCheck(ctx context.Context) (bool, int, error) {
	report, err := m.audit(ctx, false)
	if err != nil {
		return false, 0, err
	}
	return report.Health != HealthCritical, len(report.Alerts), nil
}

func (m *Monitor) checkCoverage(report *Report, pct float64) {
	switch {
	case pct < m.cfg.CoverageCriticalBelow:
		m.add(report, LevelCritical, "ticker_coverage",
			fmt.Sprintf("ticker coverage %.1f%% below critical floor %.1f%%", pct, m.cfg.CoverageCriticalBelow))
	case pct < m.cfg.CoverageWarnBelow:
		m.add(report, LevelWarning, "ticker_coverage",
			fmt.Sprintf("ticker coverage %.1f%% below warning floor %.1f%%", pct, m.cfg.CoverageWarnBelow))
	}
}

func (m *Monitor) checkDuplicateNames(report *Report, count int) {
	switch {
	case count > m.cfg.DuplicatesCritAbove:
		m.add(report, LevelCritical, "duplicate_companies",
			fmt.Sprintf("%d companies share a normalized name (limit %d)", count, m.cfg.DuplicatesCritAbove))
	case count > m.cfg.DuplicatesWarnAbove:
		m.add(report, LevelWarning, "duplicate_companies",
			fmt.Sprintf("%d companies share a normalized name (limit %d)", count, m.cfg.DuplicatesWarnAbove))
	}
}

func (m *Monitor) checkIssues(report *Report, count int) {
	switch {
	case count > m.cfg.IssuesCritAbove:
		m.add(report, LevelCritical, "validation_issues",
			fmt.Sprintf("%d high-severity ticker issues (limit %d)", count, m.cfg.IssuesCritAbove))
	case count > m.cfg.IssuesWarnAbove:
		m.add(report, LevelWarning, "validation_issues",
			fmt.Sprintf("%d high-severity ticker issues (limit %d)", count, m.cfg.IssuesWarnAbove))
	}
}

// checkDuplicateTickers flags tickers bound to more than one active company.
// This breaks the registry's core invariant, so it is always critical and
// never subject to thresholds.
func (m *Monitor) checkDuplicateTickers(ctx context.Context, report *Report) error {
	tickers, err := m.index.DuplicateTickers(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "list duplicate tickers")
	}
	for _, ticker := range tickers {
		m.add(report, LevelCritical, "duplicate_ticker",
			fmt.Sprintf("ticker %s is bound to more than one active company", ticker))
	}
	return nil
}

func (m *Monitor) checkWatchlist(ctx context.Context, report *Report) error {
	for _, ticker := range m.cfg.Watchlist {
		_, err := m.index.FindActiveByTicker(ctx, ticker)
		if errors.Is(err, sentinel.ErrNotFound) {
			m.add(report, LevelWarning, "watchlist",
				fmt.Sprintf("watchlist ticker %s has no active company", ticker))
			continue
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "watchlist lookup for "+ticker)
		}
	}
	return nil
}

func (m *Monitor) add(report *Report, level Level, check, message string) {
	report.Alerts = append(report.Alerts, Alert{Level: level, Check: check, Message: message})
}

// grade folds alerts into the overall health label.
func grade(alerts []Alert) Health {
	criticals, warnings := 0, 0
	for _, alert := range alerts {
		switch alert.Level {
		case LevelCritical:
			criticals++
		case LevelWarning:
			warnings++
		}
	}
	switch {
	case criticals > 0:
		return HealthCritical
	case warnings > 2:
		return HealthWarning
	case warnings > 0:
		return HealthGood
	default:
		return HealthExcellent
	}
}
