// Package handler exposes the screening engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tenet/internal/screening"
	dErrors "tenet/pkg/domain-errors"
	"tenet/pkg/platform/httputil"
	"tenet/pkg/requestcontext"
)

// maxTickersPerRequest bounds the fan-out one request can demand.
const maxTickersPerRequest = 200

// Service is the screening surface the handler consumes.
type Service interface {
	Screen(ctx context.Context, req screening.Request) (*screening.Response, error)
}

// Handler handles screening endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a screening Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the screening routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/screen", h.handleScreen)
}

func (h *Handler) handleScreen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ScreenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	resp, err := h.service.Screen(ctx, req.ToDomain())
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "screening request failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
