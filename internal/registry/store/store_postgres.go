package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"tenet/internal/registry/models"
	"tenet/pkg/platform/sentinel"
)

// Postgres persists the registry in PostgreSQL. This store is pure I/O; all
// validation and duplicate policy belongs to the guard and detector. The
// active-ticker invariant is backed by a partial unique index
// (companies_active_ticker_key) so concurrent imports cannot both win.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const pgUniqueViolation = "23505"

// translateWriteErr maps constraint violations to sentinel errors.
func translateWriteErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return sentinel.ErrConflict
	}
	return infraErr(op, err)
}

// infraErr tags a storage failure as unavailable so callers can tell an
// infrastructure fault from a domain fact.
func infraErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}

func (s *Postgres) FindCompanyByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `
		SELECT id, name, ticker, country, active, sector, industry, description, updated_at
		FROM companies
		WHERE id = $1
	`
	company, err := scanCompany(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, infraErr("find company by id", err)
	}
	return company, nil
}

func (s *Postgres) FindActiveByTicker(ctx context.Context, ticker string) (*models.Company, error) {
	query := `
		SELECT id, name, ticker, country, active, sector, industry, description, updated_at
		FROM companies
		WHERE active AND upper(ticker) = upper($1)
	`
	company, err := scanCompany(s.db.QueryRowContext(ctx, query, ticker))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, infraErr("find company by ticker", err)
	}
	return company, nil
}

func (s *Postgres) SearchActiveByWord(ctx context.Context, word string, limit int) ([]models.Company, error) {
	query := `
		SELECT id, name, ticker, country, active, sector, industry, description, updated_at
		FROM companies
		WHERE active AND name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, word, limit)
	if err != nil {
		return nil, infraErr("search companies", err)
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (s *Postgres) ListActiveCompanies(ctx context.Context) ([]models.Company, error) {
	query := `
		SELECT id, name, ticker, country, active, sector, industry, description, updated_at
		FROM companies
		WHERE active
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, infraErr("list active companies", err)
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (s *Postgres) CreateCompany(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, ticker, country, active, sector, industry, description, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		company.ID, company.Name, company.Ticker, company.Country, company.Active,
		company.Sector, company.Industry, company.Description, company.UpdatedAt)
	return translateWriteErr(err, "create company")
}

func (s *Postgres) UpdateCompany(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $2, ticker = NULLIF($3, ''), country = $4, active = $5,
		    sector = $6, industry = $7, description = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		company.ID, company.Name, company.Ticker, company.Country, company.Active,
		company.Sector, company.Industry, company.Description, company.UpdatedAt)
	if err != nil {
		return translateWriteErr(err, "update company")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return infraErr("update company", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	// Evidence, aliases and financials cascade via FK.
	result, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return infraErr("delete company", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return infraErr("delete company", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListEvidence(ctx context.Context, companyID uuid.UUID) ([]models.Evidence, error) {
	query := `
		SELECT id, company_id, tag, source_id, strength, notes, sub_category, observed_at, created_at
		FROM evidence
		WHERE company_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, infraErr("list evidence", err)
	}
	defer rows.Close()

	var out []models.Evidence
	for rows.Next() {
		var e models.Evidence
		var subCategory sql.NullString
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Tag, &e.SourceID, &e.Strength,
			&e.Notes, &subCategory, &e.ObservedAt, &e.CreatedAt); err != nil {
			return nil, infraErr("scan evidence", err)
		}
		e.SubCategory = subCategory.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateEvidence(ctx context.Context, evidence *models.Evidence) error {
	query := `
		INSERT INTO evidence (id, company_id, tag, source_id, strength, notes, sub_category, observed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		evidence.ID, evidence.CompanyID, evidence.Tag, evidence.SourceID, evidence.Strength,
		evidence.Notes, evidence.SubCategory, evidence.ObservedAt, evidence.CreatedAt)
	return translateWriteErr(err, "create evidence")
}

func (s *Postgres) DeleteEvidence(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM evidence WHERE id = $1`, id)
	if err != nil {
		return infraErr("delete evidence", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return infraErr("delete evidence", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListAliases(ctx context.Context, companyID uuid.UUID) ([]models.Alias, error) {
	query := `
		SELECT id, company_id, value, type
		FROM aliases
		WHERE company_id = $1
		ORDER BY value
	`
	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, infraErr("list aliases", err)
	}
	defer rows.Close()

	var out []models.Alias
	for rows.Next() {
		var a models.Alias
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Value, &a.Type); err != nil {
			return nil, infraErr("scan alias", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateAlias(ctx context.Context, alias *models.Alias) error {
	query := `
		INSERT INTO aliases (id, company_id, value, type)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, alias.ID, alias.CompanyID, alias.Value, alias.Type)
	return translateWriteErr(err, "create alias")
}

func (s *Postgres) FindSource(ctx context.Context, id uuid.UUID) (*models.Source, error) {
	query := `
		SELECT id, domain, title, url, publisher
		FROM sources
		WHERE id = $1
	`
	var source models.Source
	var publisher sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&source.ID, &source.Domain, &source.Title, &source.URL, &publisher)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, infraErr("find source", err)
	}
	source.Publisher = publisher.String
	return &source, nil
}

func (s *Postgres) CreateSource(ctx context.Context, source *models.Source) error {
	query := `
		INSERT INTO sources (id, domain, title, url, publisher)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	`
	_, err := s.db.ExecContext(ctx, query,
		source.ID, source.Domain, source.Title, source.URL, source.Publisher)
	return translateWriteErr(err, "create source")
}

func (s *Postgres) LatestFinancials(ctx context.Context, companyID uuid.UUID) (*models.Financials, error) {
	query := `
		SELECT id, company_id, market_cap, total_assets, total_debt, cash_securities, receivables, period, source_id
		FROM financials
		WHERE company_id = $1
		ORDER BY period DESC
		LIMIT 1
	`
	var f models.Financials
	err := s.db.QueryRowContext(ctx, query, companyID).Scan(
		&f.ID, &f.CompanyID, &f.MarketCap, &f.TotalAssets, &f.TotalDebt,
		&f.CashSecurities, &f.Receivables, &f.Period, &f.SourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, infraErr("latest financials", err)
	}
	return &f, nil
}

func (s *Postgres) CreateFinancials(ctx context.Context, financials *models.Financials) error {
	query := `
		INSERT INTO financials (id, company_id, market_cap, total_assets, total_debt, cash_securities, receivables, period, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		financials.ID, financials.CompanyID, financials.MarketCap, financials.TotalAssets,
		financials.TotalDebt, financials.CashSecurities, financials.Receivables,
		financials.Period, financials.SourceID)
	return translateWriteErr(err, "create financials")
}

func (s *Postgres) CountDuplicateNames(ctx context.Context) (int, error) {
	query := `
		SELECT count(*) FROM (
			SELECT lower(regexp_replace(name, '[^a-zA-Z0-9]', '', 'g'))
			FROM companies
			WHERE active
			GROUP BY 1
			HAVING count(*) > 1
		) dupes
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, infraErr("count duplicate names", err)
	}
	return count, nil
}

func (s *Postgres) CountDuplicateTickers(ctx context.Context) (int, error) {
	query := `
		SELECT count(*) FROM (
			SELECT upper(ticker)
			FROM companies
			WHERE active AND ticker IS NOT NULL
			GROUP BY 1
			HAVING count(*) > 1
		) dupes
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, infraErr("count duplicate tickers", err)
	}
	return count, nil
}

func (s *Postgres) DuplicateTickers(ctx context.Context) ([]string, error) {
	query := `
		SELECT upper(ticker)
		FROM companies
		WHERE active AND ticker IS NOT NULL
		GROUP BY 1
		HAVING count(*) > 1
		ORDER BY 1
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, infraErr("duplicate tickers", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, infraErr("scan ticker", err)
		}
		out = append(out, ticker)
	}
	return out, rows.Err()
}

func scanCompany(row *sql.Row) (*models.Company, error) {
	var company models.Company
	var ticker, country sql.NullString
	if err := row.Scan(&company.ID, &company.Name, &ticker, &country, &company.Active,
		&company.Sector, &company.Industry, &company.Description, &company.UpdatedAt); err != nil {
		return nil, err
	}
	company.Ticker = ticker.String
	company.Country = country.String
	return &company, nil
}

func collectCompanies(rows *sql.Rows) ([]models.Company, error) {
	var out []models.Company
	for rows.Next() {
		var company models.Company
		var ticker, country sql.NullString
		if err := rows.Scan(&company.ID, &company.Name, &ticker, &country, &company.Active,
			&company.Sector, &company.Industry, &company.Description, &company.UpdatedAt); err != nil {
			return nil, infraErr("scan company", err)
		}
		company.Ticker = ticker.String
		company.Country = country.String
		out = append(out, company)
	}
	return out, rows.Err()
}
