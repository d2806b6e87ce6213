// Package handler exposes guarded company imports and the quality report
// over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tenet/internal/importguard"
	dErrors "tenet/pkg/domain-errors"
	"tenet/pkg/platform/httputil"
	"tenet/pkg/requestcontext"
)

// Guard is the import surface the handler consumes.
type Guard interface {
	ValidateImport(ctx context.Context, candidate importguard.Candidate) (*importguard.Validation, error)
	CreateSafely(ctx context.Context, candidate importguard.Candidate) (*importguard.CreateResult, error)
	UpdateSafely(ctx context.Context, companyID uuid.UUID, updates importguard.Updates) (*importguard.UpdateResult, error)
	BuildQualityReport(ctx context.Context) (*importguard.QualityReport, error)
}

// CacheInvalidator drops cached verdicts after a registry write. Nil-safe
// implementations are expected.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, ticker string)
}

// Handler handles registry import endpoints.
type Handler struct {
	guard  Guard
	cache  CacheInvalidator
	logger *slog.Logger
}

// New creates the import Handler. cache may be nil.
func New(guard Guard, cache CacheInvalidator, logger *slog.Logger) *Handler {
	return &Handler{guard: guard, cache: cache, logger: logger}
}

// Register mounts the import routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/companies", h.handleCreate)
	r.Post("/v1/companies/validate", h.handleValidate)
	r.Patch("/v1/companies/{id}", h.handleUpdate)
	r.Get("/v1/quality/report", h.handleQualityReport)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	validation, err := h.guard.ValidateImport(ctx, req.toCandidate())
	if err != nil {
		h.logger.ErrorContext(ctx, "import validation failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validation)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.guard.CreateSafely(ctx, req.toCandidate())
	if err != nil {
		h.logger.ErrorContext(ctx, "guarded create failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	if !result.Success {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	h.invalidate(ctx, req.Ticker)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "company id must be a UUID"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[updateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.guard.UpdateSafely(ctx, companyID, req.toUpdates())
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "guarded update failed",
			"request_id", requestID,
			"company_id", companyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if !result.Success {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	if req.Ticker != nil {
		h.invalidate(ctx, *req.Ticker)
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleQualityReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.guard.BuildQualityReport(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "quality report failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) invalidate(ctx context.Context, ticker string) {
	if h.cache == nil || ticker == "" {
		return
	}
	h.cache.Invalidate(ctx, ticker)
}
