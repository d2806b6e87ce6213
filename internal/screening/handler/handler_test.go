package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenet/internal/screening"
)

type stubService struct {
	lastRequest screening.Request
	response    *screening.Response
	err         error
}

func (s *stubService) Screen(_ context.Context, req screening.Request) (*screening.Response, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func newTestRouter(service Service) http.Handler {
	r := chi.NewRouter()
	New(service, slog.Default()).Register(r)
	return r
}

func TestHandleScreen(t *testing.T) {
	t.Run("valid request returns the service response", func(t *testing.T) {
		stub := &stubService{response: &screening.Response{
			RequestID:   "req-1",
			GeneratedAt: time.Now(),
			Rows: []screening.Row{
				{Ticker: "ESLT", Verdict: screening.VerdictExcluded, Confidence: screening.ConfidenceHigh},
			},
		}}

		body := `{"tickers":["ESLT"],"filters":{"defense":{}}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/screen", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		newTestRouter(stub).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp screening.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "req-1", resp.RequestID)
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, screening.VerdictExcluded, resp.Rows[0].Verdict)

		assert.Equal(t, []string{"ESLT"}, stub.lastRequest.Tickers)
		assert.NotNil(t, stub.lastRequest.Filters.Defense)
	})

	t.Run("missing filters rejects the whole request", func(t *testing.T) {
		stub := &stubService{}

		body := `{"tickers":["ESLT"]}`
		req := httptest.NewRequest(http.MethodPost, "/v1/screen", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		newTestRouter(stub).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var errBody map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
		assert.Equal(t, "bad_request", errBody["error"])
	})

	t.Run("no enabled category rejects the whole request", func(t *testing.T) {
		stub := &stubService{}

		body := `{"tickers":["ESLT"],"filters":{}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/screen", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		newTestRouter(stub).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		stub := &stubService{}

		req := httptest.NewRequest(http.MethodPost, "/v1/screen", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		newTestRouter(stub).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty ticker list passes through as browse mode", func(t *testing.T) {
		stub := &stubService{response: &screening.Response{RequestID: "req-2"}}

		body := `{"tickers":[],"filters":{"bds":{}}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/screen", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		newTestRouter(stub).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, stub.lastRequest.Tickers)
		assert.NotNil(t, stub.lastRequest.Filters.BDS)
	})
}
