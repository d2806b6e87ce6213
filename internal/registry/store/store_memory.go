package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tenet/internal/registry/models"
	"tenet/pkg/platform/sentinel"
	platformstrings "tenet/pkg/platform/strings"
)

// InMemory is the registry store used by unit tests and local development.
// Behavior mirrors the PostgreSQL store, including the active-ticker
// uniqueness constraint.
type InMemory struct {
	mu         sync.RWMutex
	companies  map[uuid.UUID]models.Company
	evidence   map[uuid.UUID][]models.Evidence // company id -> insertion order
	aliases    map[uuid.UUID][]models.Alias
	sources    map[uuid.UUID]models.Source
	financials map[uuid.UUID][]models.Financials // company id -> period order
}

// NewInMemory constructs an empty in-memory registry store.
func NewInMemory() *InMemory {
	return &InMemory{
		companies:  make(map[uuid.UUID]models.Company),
		evidence:   make(map[uuid.UUID][]models.Evidence),
		aliases:    make(map[uuid.UUID][]models.Alias),
		sources:    make(map[uuid.UUID]models.Source),
		financials: make(map[uuid.UUID][]models.Financials),
	}
}

func (s *InMemory) FindCompanyByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &company, nil
}

func (s *InMemory) FindActiveByTicker(_ context.Context, ticker string) (*models.Company, error) {
	if ticker == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, company := range s.companies {
		if company.Active && strings.EqualFold(company.Ticker, ticker) {
			c := company
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) SearchActiveByWord(_ context.Context, word string, limit int) ([]models.Company, error) {
	needle := strings.ToLower(word)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Company
	for _, company := range s.companies {
		if company.Active && strings.Contains(strings.ToLower(company.Name), needle) {
			out = append(out, company)
		}
	}
	// Map iteration order is random; sort for deterministic results.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) ListActiveCompanies(_ context.Context) ([]models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Company
	for _, company := range s.companies {
		if company.Active {
			out = append(out, company)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) CreateCompany(_ context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTickerFree(company.Ticker, company.ID); err != nil {
		return err
	}
	s.companies[company.ID] = *company
	return nil
}

func (s *InMemory) UpdateCompany(_ context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[company.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if company.Active {
		if err := s.checkTickerFree(company.Ticker, company.ID); err != nil {
			return err
		}
	}
	s.companies[company.ID] = *company
	return nil
}

// checkTickerFree enforces the active-ticker uniqueness invariant. Caller
// holds the write lock.
func (s *InMemory) checkTickerFree(ticker string, selfID uuid.UUID) error {
	if ticker == "" {
		return nil
	}
	for _, existing := range s.companies {
		if existing.ID != selfID && existing.Active && strings.EqualFold(existing.Ticker, ticker) {
			return sentinel.ErrConflict
		}
	}
	return nil
}

func (s *InMemory) DeleteCompany(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.companies, id)
	delete(s.evidence, id)
	delete(s.aliases, id)
	delete(s.financials, id)
	return nil
}

func (s *InMemory) ListEvidence(_ context.Context, companyID uuid.UUID) ([]models.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.evidence[companyID]
	out := make([]models.Evidence, len(records))
	copy(out, records)
	return out, nil
}

func (s *InMemory) CreateEvidence(_ context.Context, evidence *models.Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[evidence.CompanyID]; !ok {
		return sentinel.ErrNotFound
	}
	s.evidence[evidence.CompanyID] = append(s.evidence[evidence.CompanyID], *evidence)
	return nil
}

func (s *InMemory) DeleteEvidence(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for companyID, records := range s.evidence {
		for i, record := range records {
			if record.ID == id {
				s.evidence[companyID] = append(records[:i:i], records[i+1:]...)
				return nil
			}
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) ListAliases(_ context.Context, companyID uuid.UUID) ([]models.Alias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.aliases[companyID]
	out := make([]models.Alias, len(records))
	copy(out, records)
	return out, nil
}

func (s *InMemory) CreateAlias(_ context.Context, alias *models.Alias) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[alias.CompanyID]; !ok {
		return sentinel.ErrNotFound
	}
	s.aliases[alias.CompanyID] = append(s.aliases[alias.CompanyID], *alias)
	return nil
}

func (s *InMemory) FindSource(_ context.Context, id uuid.UUID) (*models.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	source, ok := s.sources[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &source, nil
}

func (s *InMemory) CreateSource(_ context.Context, source *models.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[source.ID] = *source
	return nil
}

func (s *InMemory) LatestFinancials(_ context.Context, companyID uuid.UUID) (*models.Financials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshots := s.financials[companyID]
	if len(snapshots) == 0 {
		return nil, sentinel.ErrNotFound
	}
	latest := snapshots[0]
	for _, snapshot := range snapshots[1:] {
		if snapshot.Period > latest.Period {
			latest = snapshot
		}
	}
	return &latest, nil
}

func (s *InMemory) CreateFinancials(_ context.Context, financials *models.Financials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[financials.CompanyID]; !ok {
		return sentinel.ErrNotFound
	}
	s.financials[financials.CompanyID] = append(s.financials[financials.CompanyID], *financials)
	return nil
}

func (s *InMemory) CountDuplicateNames(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make(map[string]int)
	for _, company := range s.companies {
		if company.Active {
			groups[platformstrings.NormalizeKey(company.Name)]++
		}
	}
	count := 0
	for _, n := range groups {
		if n > 1 {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountDuplicateTickers(ctx context.Context) (int, error) {
	tickers, err := s.DuplicateTickers(ctx)
	return len(tickers), err
}

func (s *InMemory) DuplicateTickers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make(map[string]int)
	for _, company := range s.companies {
		if company.Active && company.Ticker != "" {
			groups[strings.ToUpper(company.Ticker)]++
		}
	}
	var out []string
	for ticker, n := range groups {
		if n > 1 {
			out = append(out, ticker)
		}
	}
	sort.Strings(out)
	return out, nil
}
