package handler

import (
	"tenet/internal/screening"
	dErrors "tenet/pkg/domain-errors"
)

// ScreenRequest is the wire shape of one screening call. Tickers may be
// empty (browse-all-flagged mode); the filter object may not.
type ScreenRequest struct {
	Tickers []string           `json:"tickers"`
	Filters *screening.Filters `json:"filters"`
}

// Validate enforces the one caller-error rule the engine has: a request
// without an enabled category rejects as a whole, never per row.
func (r *ScreenRequest) Validate() error {
	if r.Filters == nil || !r.Filters.Enabled() {
		return dErrors.New(dErrors.CodeBadRequest, "filters must enable at least one screening category")
	}
	if len(r.Tickers) > maxTickersPerRequest {
		return dErrors.Newf(dErrors.CodeBadRequest, "at most %d tickers per request", maxTickersPerRequest)
	}
	return nil
}

// ToDomain converts the wire request into the engine's request type.
func (r *ScreenRequest) ToDomain() screening.Request {
	return screening.Request{Tickers: r.Tickers, Filters: *r.Filters}
}
