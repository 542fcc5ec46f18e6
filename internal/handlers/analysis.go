package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodchainx/api/internal/integrations/analysis"
	"github.com/foodchainx/api/internal/platform/auth"
	"github.com/foodchainx/api/internal/platform/httpx"
)

const maxAnalysisUploadSize = 8 << 20

// AnalysisHandlers proxies produce quality analysis requests.
type AnalysisHandlers struct {
	authn    *auth.Authenticator
	analysis *analysis.Client
}

// NewAnalysisHandlers constructs a new AnalysisHandlers instance.
func NewAnalysisHandlers(authn *auth.Authenticator, client *analysis.Client) *AnalysisHandlers {
	return &AnalysisHandlers{
		authn:    authn,
		analysis: client,
	}
}

// Routes registers the /analysis endpoints.
func (h *AnalysisHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/predict", h.predict)
}

func (h *AnalysisHandlers) predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.analysis == nil {
		httpx.WriteError(ctx, w, httpx.NewError("analysis_unavailable", "analysis service is not configured", http.StatusServiceUnavailable))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAnalysisUploadSize)
	if err := r.ParseMultipartForm(maxAnalysisUploadSize); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "multipart form with a file field is required", http.StatusBadRequest))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "file field is required", http.StatusBadRequest))
		return
	}
	defer file.Close()

	result, err := h.analysis.Analyze(ctx, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNotConfigured):
			httpx.WriteError(ctx, w, httpx.NewError("analysis_unavailable", "analysis service is not configured", http.StatusServiceUnavailable))
		case errors.Is(err, analysis.ErrUpstream):
			httpx.WriteError(ctx, w, httpx.NewError("analysis_upstream_error", "analysis service failed", http.StatusBadGateway))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("analysis_error", "failed to analyse file", http.StatusInternalServerError))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Payload)
}
