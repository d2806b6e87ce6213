package screening

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"tenet/internal/audit"
	"tenet/internal/platform/config"
	"tenet/internal/registry/models"
	"tenet/internal/registry/store"
	"tenet/internal/screening/cache"
	"tenet/internal/screening/metrics"
	dErrors "tenet/pkg/domain-errors"
	"tenet/pkg/platform/sentinel"
	platformstrings "tenet/pkg/platform/strings"
	"tenet/pkg/requestcontext"
)

// screenConcurrency caps the parallel per-ticker fan-out.
const screenConcurrency = 8

// Service runs screening requests: it resolves identifiers, loads each
// company's evidentiary and financial snapshot, applies the category rules,
// and records one audit event per row. It never mutates the registry.
type Service struct {
	store     store.Store
	cache     *cache.VerdictCache
	publisher *audit.Publisher
	metrics   *metrics.Recorder
	logger    *slog.Logger
	tracer    trace.Tracer
	ceilings  ratioCeilings
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithCache attaches a verdict cache.
func WithCache(c *cache.VerdictCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithAudit attaches a decision audit publisher.
func WithAudit(p *audit.Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Recorder) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a screening service over the registry store.
func NewService(st store.Store, cfg config.ScreeningConfig, opts ...ServiceOption) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		tracer: otel.Tracer("tenet/screening"),
		ceilings: ratioCeilings{
			debtToAssets:        cfg.DebtToAssetsMax,
			cashToAssets:        cfg.CashToAssetsMax,
			receivablesToMarket: cfg.ReceivablesToMarketMax,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen evaluates every requested identifier under the given filters. An
// empty identifier list switches to browse mode: every active company is
// screened and only rows that did not pass are returned. A request with no
// enabled category is a caller error and rejects the whole request.
func (s *Service) Screen(ctx context.Context, req Request) (*Response, error) {
	if !req.Filters.Enabled() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one screening category must be enabled")
	}

	start := time.Now()
	requestID := requestcontext.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx, span := s.tracer.Start(ctx, "screening.Screen",
		trace.WithAttributes(
			attribute.Int("tickers", len(req.Tickers)),
			attribute.Bool("browse", len(req.Tickers) == 0),
		))
	defer span.End()

	var (
		rows []Row
		err  error
	)
	if len(req.Tickers) == 0 {
		rows, err = s.screenAll(ctx, requestID, req.Filters)
	} else {
		rows, err = s.screenTickers(ctx, requestID, req.Tickers, req.Filters)
	}
	if err != nil {
		return nil, err
	}

	resp := &Response{
		RequestID:   requestID,
		GeneratedAt: time.Now().UTC(),
		Rows:        rows,
	}
	for _, row := range rows {
		if row.NotFound {
			resp.Warnings = append(resp.Warnings, row.Ticker+": not found in registry")
		}
		s.metrics.IncVerdict(string(row.Verdict))
	}
	// The same unknown ticker repeated in a request warns once.
	resp.Warnings = platformstrings.DedupeAndTrim(resp.Warnings)
	s.metrics.ObserveScreenDuration(time.Since(start).Seconds())
	return resp, nil
}

// screenTickers fans out per identifier, bounded, preserving request order.
func (s *Service) screenTickers(ctx context.Context, requestID string, tickers []string, filters Filters) ([]Row, error) {
	rows := make([]Row, len(tickers))
	fingerprint := cache.Fingerprint(filters)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(screenConcurrency)
	for i, raw := range tickers {
		g.Go(func() error {
			row, err := s.screenTicker(ctx, requestID, raw, filters, fingerprint)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// screenAll evaluates every active company and keeps the non-passing rows.
func (s *Service) screenAll(ctx context.Context, requestID string, filters Filters) ([]Row, error) {
	companies, err := s.store.ListActiveCompanies(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list active companies")
	}

	all := make([]Row, len(companies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(screenConcurrency)
	for i, company := range companies {
		g.Go(func() error {
			row, err := s.screenCompany(ctx, requestID, &company, filters)
			if err != nil {
				return err
			}
			all[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	flagged := make([]Row, 0, len(all))
	for _, row := range all {
		if row.Verdict != VerdictPass {
			flagged = append(flagged, row)
		}
	}
	return flagged, nil
}

func (s *Service) screenTicker(ctx context.Context, requestID, raw string, filters Filters, fingerprint string) (Row, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))

	if payload, ok := s.cache.Get(ctx, ticker, fingerprint); ok {
		var row Row
		if err := json.Unmarshal(payload, &row); err == nil {
			s.metrics.IncCacheHit()
			return row, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable cached verdict", "ticker", ticker)
	}
	s.metrics.IncCacheMiss()

	company, err := s.store.FindActiveByTicker(ctx, ticker)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.notFoundRow(ctx, requestID, ticker, filters), nil
	}
	if err != nil {
		return Row{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "resolve ticker "+ticker)
	}

	row, err := s.screenCompany(ctx, requestID, company, filters)
	if err != nil {
		return Row{}, err
	}
	if payload, err := json.Marshal(row); err == nil {
		s.cache.Set(ctx, ticker, fingerprint, payload)
	}
	return row, nil
}

// screenCompany loads the snapshot and applies the pure rules.
func (s *Service) screenCompany(ctx context.Context, requestID string, company *models.Company, filters Filters) (Row, error) {
	evidence, err := s.store.ListEvidence(ctx, company.ID)
	if err != nil {
		return Row{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "load evidence for "+company.Ticker)
	}
	financials, err := s.store.LatestFinancials(ctx, company.ID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return Row{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "load financials for "+company.Ticker)
	}

	snap := snapshot{company: company, evidence: evidence, financials: financials}
	categories, verdict, reasons, confidence := evaluateCompany(snap, filters, s.ceilings)

	row := Row{
		Ticker:     company.Ticker,
		CompanyID:  &company.ID,
		Name:       company.Name,
		Categories: categories,
		Verdict:    verdict,
		Reasons:    reasons,
		Confidence: confidence,
	}
	row.Sources = s.collectSources(ctx, categories, evidence)
	row.AuditID = s.emitAudit(ctx, requestID, row, filters)
	return row, nil
}

// notFoundRow models an unrecognized identifier as data, not an error. It
// must never read as a clean pass with high confidence.
func (s *Service) notFoundRow(ctx context.Context, requestID, ticker string, filters Filters) Row {
	s.metrics.IncNotFound()
	row := Row{
		Ticker:     ticker,
		Verdict:    VerdictReview,
		Reasons:    []string{"company not found in registry"},
		Confidence: ConfidenceLow,
		NotFound:   true,
	}
	row.AuditID = s.emitAudit(ctx, requestID, row, filters)
	return row
}

// collectSources resolves the citations behind evidence that contributed to
// a non-passing category, deduplicated, in evidence order.
func (s *Service) collectSources(ctx context.Context, categories []CategoryResult, evidence []models.Evidence) []SourceRef {
	flagged := make(map[models.Tag]bool, len(categories))
	for _, cat := range categories {
		if cat.Status != StatusPass {
			flagged[cat.Category] = true
		}
	}
	if len(flagged) == 0 {
		return nil
	}

	var refs []SourceRef
	seen := make(map[uuid.UUID]bool)
	for _, ev := range evidence {
		if !flagged[ev.Tag] || seen[ev.SourceID] {
			continue
		}
		seen[ev.SourceID] = true
		src, err := s.store.FindSource(ctx, ev.SourceID)
		if err != nil {
			s.logger.WarnContext(ctx, "source lookup failed", "source_id", ev.SourceID, "error", err)
			continue
		}
		refs = append(refs, SourceRef{Domain: src.Domain, Title: src.Title, URL: src.URL})
	}
	return refs
}

func (s *Service) emitAudit(ctx context.Context, requestID string, row Row, filters Filters) string {
	if s.publisher == nil {
		return uuid.NewString()
	}
	event := audit.Event{
		RequestID:  requestID,
		Ticker:     row.Ticker,
		Verdict:    string(row.Verdict),
		Reasons:    row.Reasons,
		Confidence: string(row.Confidence),
	}
	if row.CompanyID != nil {
		event.CompanyID = row.CompanyID.String()
	}
	if payload, err := json.Marshal(filters); err == nil {
		event.Filters = string(payload)
	}
	return s.publisher.Emit(ctx, event)
}
