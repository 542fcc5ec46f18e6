package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/platform/auth"
	"github.com/foodchainx/api/internal/platform/httpx"
	"github.com/foodchainx/api/internal/services"
)

type createPaymentRequest struct {
	OrderID            string `json:"orderId"`
	Amount             int64  `json:"amount"`
	Method             string `json:"paymentMethod"`
	Status             string `json:"status"`
	DueDate            string `json:"dueDate"`
	Notes              string `json:"notes"`
	AutoReleaseEnabled *bool  `json:"autoReleaseEnabled"`
}

type releasePaymentRequest struct {
	Notes string `json:"notes"`
}

type lockPaymentRequest struct {
	Reason string `json:"reason"`
}

type updatePaymentStatusRequest struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
	Notes         string `json:"notes"`
}

type paymentPayload struct {
	ID                  string `json:"id"`
	OrderID             string `json:"orderId"`
	Vendor              string `json:"vendor"`
	VendorName          string `json:"vendorName,omitempty"`
	Amount              int64  `json:"amount"`
	Status              string `json:"status"`
	Method              string `json:"paymentMethod"`
	TransactionID       string `json:"transactionId,omitempty"`
	ReleaseDate         string `json:"releaseDate,omitempty"`
	DueDate             string `json:"dueDate"`
	Notes               string `json:"notes,omitempty"`
	ApprovedBy          string `json:"approvedBy,omitempty"`
	ProcessedBy         string `json:"processedBy,omitempty"`
	DeliveryConfirmed   bool   `json:"deliveryConfirmed"`
	DeliveryConfirmedAt string `json:"deliveryConfirmedAt,omitempty"`
	AutoReleaseEnabled  bool   `json:"autoReleaseEnabled"`
	CreatedAt           string `json:"createdAt"`
	UpdatedAt           string `json:"updatedAt"`
}

type paymentListResponse struct {
	Items []paymentPayload `json:"items"`
	Count int              `json:"count"`
}

type processPaymentResponse struct {
	Settled bool            `json:"settled"`
	Payment *paymentPayload `json:"payment,omitempty"`
}

// PaymentHandlers exposes the settlement endpoints.
type PaymentHandlers struct {
	authn       *auth.Authenticator
	settlements services.SettlementService
	stats       services.StatsService
}

// NewPaymentHandlers constructs a new PaymentHandlers instance.
func NewPaymentHandlers(authn *auth.Authenticator, settlements services.SettlementService, stats services.StatsService) *PaymentHandlers {
	return &PaymentHandlers{
		authn:       authn,
		settlements: settlements,
		stats:       stats,
	}
}

// Routes registers the /payments endpoints. Sweep and explicit ledger writes
// are restricted to procurement and admin roles.
func (h *PaymentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.listPayments)
	r.Get("/stats", h.paymentStats)

	restricted := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			actor, ok := actorFromContext(req)
			if !ok {
				writeUnauthenticated(req.Context(), w)
				return
			}
			if actor.Role != auth.RoleProcurement && actor.Role != auth.RoleAdmin {
				httpx.WriteError(req.Context(), w, httpx.NewError("insufficient_role", "procurement role required", http.StatusForbidden))
				return
			}
			next(w, req)
		}
	}

	r.Post("/", restricted(h.createPayment))
	r.Post("/auto-process", restricted(h.autoProcess))
	r.Post("/{orderID}/process", restricted(h.processPayment))
	r.Post("/{orderID}/release", restricted(h.releasePayment))
	r.Post("/{orderID}/lock", restricted(h.lockPayment))
	r.Patch("/{orderID}/status", restricted(h.updatePaymentStatus))
}

func (h *PaymentHandlers) listPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	payments, err := h.settlements.ListPayments(ctx, services.PaymentListQuery{
		Actor:  actor,
		Status: domain.PaymentStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	items := make([]paymentPayload, 0, len(payments))
	for _, payment := range payments {
		items = append(items, buildPaymentPayload(payment))
	}
	writeJSONResponse(w, http.StatusOK, paymentListResponse{Items: items, Count: len(items)})
}

func (h *PaymentHandlers) paymentStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	stats, err := h.stats.PaymentStats(ctx, actor)
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}

func (h *PaymentHandlers) createPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(r)

	var req createPaymentRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	cmd := services.CreatePaymentCommand{
		Actor:              actor,
		OrderID:            strings.TrimSpace(req.OrderID),
		Amount:             req.Amount,
		Method:             domain.PaymentMethod(req.Method),
		Status:             domain.PaymentStatus(req.Status),
		Notes:              req.Notes,
		AutoReleaseEnabled: req.AutoReleaseEnabled,
	}
	if raw := strings.TrimSpace(req.DueDate); raw != "" {
		ts, err := parseTimeParam(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "dueDate must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.DueDate = &ts
	}

	payment, err := h.settlements.CreatePayment(ctx, cmd)
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildPaymentPayload(payment))
}

func (h *PaymentHandlers) processPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))

	result, err := h.settlements.ProcessPayment(ctx, orderID)
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}
	resp := processPaymentResponse{Settled: result.Settled}
	if result.Payment != nil {
		payload := buildPaymentPayload(*result.Payment)
		resp.Payment = &payload
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *PaymentHandlers) releasePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(r)

	// An empty body is fine here; notes are optional.
	var req releasePaymentRequest
	if body, err := readLimitedBody(r, maxOrderRequestBody); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
			return
		}
	}

	payment, err := h.settlements.ReleasePayment(ctx, services.ReleasePaymentCommand{
		Actor:   actor,
		OrderID: strings.TrimSpace(chi.URLParam(r, "orderID")),
		Notes:   req.Notes,
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPaymentPayload(payment))
}

func (h *PaymentHandlers) lockPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(r)

	// An empty body is fine here; the reason is optional.
	var req lockPaymentRequest
	if body, err := readLimitedBody(r, maxOrderRequestBody); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
			return
		}
	}

	payment, err := h.settlements.LockPayment(ctx, services.LockPaymentCommand{
		Actor:   actor,
		OrderID: strings.TrimSpace(chi.URLParam(r, "orderID")),
		Reason:  req.Reason,
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPaymentPayload(payment))
}

func (h *PaymentHandlers) autoProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.settlements.AutoProcessPayments(ctx)
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

func (h *PaymentHandlers) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(r)

	var req updatePaymentStatusRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	payment, err := h.settlements.UpdatePaymentStatus(ctx, services.UpdatePaymentStatusCommand{
		Actor:         actor,
		OrderID:       strings.TrimSpace(chi.URLParam(r, "orderID")),
		Status:        domain.PaymentStatus(strings.TrimSpace(req.Status)),
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPaymentPayload(payment))
}

func buildPaymentPayload(payment services.Payment) paymentPayload {
	return paymentPayload{
		ID:                  payment.ID,
		OrderID:             payment.OrderID,
		Vendor:              payment.Vendor,
		VendorName:          payment.VendorName,
		Amount:              payment.Amount,
		Status:              string(payment.Status),
		Method:              string(payment.Method),
		TransactionID:       payment.TransactionID,
		ReleaseDate:         formatTimePtr(payment.ReleaseDate),
		DueDate:             formatTime(payment.DueDate),
		Notes:               payment.Notes,
		ApprovedBy:          payment.ApprovedBy,
		ProcessedBy:         payment.ProcessedBy,
		DeliveryConfirmed:   payment.DeliveryConfirmed,
		DeliveryConfirmedAt: formatTimePtr(payment.DeliveryConfirmedAt),
		AutoReleaseEnabled:  payment.AutoReleaseEnabled,
		CreatedAt:           formatTime(payment.CreatedAt),
		UpdatedAt:           formatTime(payment.UpdatedAt),
	}
}

func writePaymentError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrPaymentInvalidInput), errors.Is(err, services.ErrStatsInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPaymentNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("payment_not_found", "payment not found", http.StatusNotFound))
	case errors.Is(err, services.ErrPaymentInvalidState):
		httpx.WriteError(ctx, w, httpx.NewError("payment_invalid_state", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrPaymentConflict):
		httpx.WriteError(ctx, w, httpx.NewError("payment_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrPaymentUnavailable), errors.Is(err, services.ErrStatsUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("storage_unavailable", "storage temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("payment_error", "failed to process payment request", http.StatusInternalServerError))
	}
}
