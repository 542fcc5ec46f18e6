package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodchainx/api/internal/integrations/telemetry"
	"github.com/foodchainx/api/internal/platform/auth"
	"github.com/foodchainx/api/internal/platform/httpx"
)

// DeviceHandlers exposes cold-storage telemetry endpoints.
type DeviceHandlers struct {
	authn     *auth.Authenticator
	telemetry *telemetry.Client
}

// NewDeviceHandlers constructs a new DeviceHandlers instance.
func NewDeviceHandlers(authn *auth.Authenticator, client *telemetry.Client) *DeviceHandlers {
	return &DeviceHandlers{
		authn:     authn,
		telemetry: client,
	}
}

// Routes registers the /devices endpoints.
func (h *DeviceHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/telemetry", h.latestReading)
}

func (h *DeviceHandlers) latestReading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.telemetry == nil {
		httpx.WriteError(ctx, w, httpx.NewError("telemetry_unavailable", "telemetry is not configured", http.StatusServiceUnavailable))
		return
	}

	reading, err := h.telemetry.Latest(ctx)
	if err != nil {
		if errors.Is(err, telemetry.ErrChannelNotConfigured) {
			httpx.WriteError(ctx, w, httpx.NewError("telemetry_unavailable", "telemetry is not configured", http.StatusServiceUnavailable))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("telemetry_error", "failed to fetch telemetry", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, reading)
}
