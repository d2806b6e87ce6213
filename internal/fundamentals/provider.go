// Package fundamentals pulls company profiles and financial statements from
// an external market-data provider. Calls are rate-limited with a fixed
// inter-call delay so batch refreshes never hammer the vendor, and a circuit
// breaker fails fast when the vendor keeps erroring.
package fundamentals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"tenet/internal/platform/config"
	dErrors "tenet/pkg/domain-errors"
	"tenet/pkg/platform/circuit"
)

// Profile is the descriptive slice of a company the keyword screen consumes.
type Profile struct {
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

// Figures is one reported financial period. Nil means the provider did not
// report the figure; downstream ratio checks treat that as missing data.
type Figures struct {
	MarketCap      *float64 `json:"market_cap"`
	TotalAssets    *float64 `json:"total_assets"`
	TotalDebt      *float64 `json:"total_debt"`
	CashSecurities *float64 `json:"cash_and_securities"`
	Receivables    *float64 `json:"net_receivables"`
	Period         string   `json:"period"`
}

// Provider is the external data surface the collector consumes.
type Provider interface {
	Profile(ctx context.Context, ticker string) (*Profile, error)
	Financials(ctx context.Context, ticker string) (*Figures, error)
}

// HTTPProvider talks to the vendor REST API.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	breaker *circuit.Breaker
}

// NewHTTPProvider builds a provider from config. The limiter enforces one
// call per configured interval with no burst allowance.
func NewHTTPProvider(cfg config.FundamentalsConfig) *HTTPProvider {
	return &HTTPProvider{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.CallInterval), 1),
		breaker: circuit.New("fundamentals-provider"),
	}
}

// Profile fetches the company's descriptive profile.
func (p *HTTPProvider) Profile(ctx context.Context, ticker string) (*Profile, error) {
	var profile Profile
	if err := p.get(ctx, "/v3/profile/"+url.PathEscape(ticker), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Financials fetches the most recent reported period.
func (p *HTTPProvider) Financials(ctx context.Context, ticker string) (*Figures, error) {
	var figures Figures
	if err := p.get(ctx, "/v3/financials/"+url.PathEscape(ticker), &figures); err != nil {
		return nil, err
	}
	return &figures, nil
}

func (p *HTTPProvider) get(ctx context.Context, path string, out any) error {
	if !p.breaker.Allow() {
		return dErrors.New(dErrors.CodeUnavailable, "fundamentals provider circuit open")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build provider request")
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.breaker.RecordFailure()
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "provider request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// A symbol the vendor does not cover is not a vendor outage.
		p.breaker.RecordSuccess()
		return dErrors.New(dErrors.CodeNotFound, "symbol not covered by provider")
	case resp.StatusCode != http.StatusOK:
		p.breaker.RecordFailure()
		return dErrors.Newf(dErrors.CodeUnavailable, "provider returned status %d", resp.StatusCode)
	}

	p.breaker.RecordSuccess()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("decode provider response for %s", path))
	}
	return nil
}
