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
	"github.com/foodchainx/api/internal/repositories"
	"github.com/foodchainx/api/internal/services"
)

const maxOrderRequestBody = 64 * 1024

type orderItemRequest struct {
	ItemName     string `json:"itemName"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	PricePerUnit int64  `json:"pricePerUnit"`
}

type createOrderRequest struct {
	Vendor               string             `json:"vendor"`
	Items                []orderItemRequest `json:"items"`
	TotalAmount          int64              `json:"totalAmount"`
	Priority             string             `json:"priority"`
	ExpectedDeliveryDate string             `json:"expectedDeliveryDate"`
	DeliveryAddress      string             `json:"deliveryAddress"`
	Notes                string             `json:"notes"`
}

type updateOrderRequest struct {
	Priority             *string `json:"priority"`
	ExpectedDeliveryDate *string `json:"expectedDeliveryDate"`
	DeliveryAddress      *string `json:"deliveryAddress"`
	Notes                *string `json:"notes"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type bulkUpdateStatusRequest struct {
	OrderIDs []string `json:"orderIds"`
	Status   string   `json:"status"`
}

type orderItemPayload struct {
	ItemName     string `json:"itemName"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	PricePerUnit int64  `json:"pricePerUnit"`
	TotalPrice   int64  `json:"totalPrice"`
}

type orderPayload struct {
	ID                   string             `json:"id"`
	Vendor               string             `json:"vendor"`
	VendorName           string             `json:"vendorName,omitempty"`
	VendorCompanyName    string             `json:"vendorCompanyName,omitempty"`
	Items                []orderItemPayload `json:"items"`
	TotalAmount          int64              `json:"totalAmount"`
	Status               string             `json:"status"`
	Priority             string             `json:"priority"`
	ExpectedDeliveryDate string             `json:"expectedDeliveryDate,omitempty"`
	ActualDeliveryDate   string             `json:"actualDeliveryDate,omitempty"`
	DeliveryAddress      string             `json:"deliveryAddress,omitempty"`
	Notes                string             `json:"notes,omitempty"`
	PaymentStatus        string             `json:"paymentStatus"`
	CreatedBy            string             `json:"createdBy"`
	UpdatedBy            string             `json:"updatedBy,omitempty"`
	CreatedAt            string             `json:"createdAt"`
	UpdatedAt            string             `json:"updatedAt"`
}

type orderListResponse struct {
	Items []orderPayload `json:"items"`
	Count int            `json:"count"`
}

type bulkStatusResponse struct {
	Updated  []orderPayload               `json:"updated"`
	Failures []services.BulkStatusFailure `json:"failures"`
}

type overdueOrderPayload struct {
	Order       orderPayload `json:"order"`
	DaysOverdue int          `json:"daysOverdue"`
}

type confirmDeliveryResponse struct {
	Order   orderPayload   `json:"order"`
	Payment paymentPayload `json:"payment"`
}

// OrderHandlers exposes the order lifecycle endpoints.
type OrderHandlers struct {
	authn       *auth.Authenticator
	orders      services.OrderService
	settlements services.SettlementService
	stats       services.StatsService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService, settlements services.SettlementService, stats services.StatsService) *OrderHandlers {
	return &OrderHandlers{
		authn:       authn,
		orders:      orders,
		settlements: settlements,
		stats:       stats,
	}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.listOrders)
	r.Post("/", h.createOrder)
	r.Get("/stats", h.orderStats)
	r.Get("/overdue", h.listOverdue)
	r.Post("/bulk-status", h.bulkUpdateStatus)
	r.Get("/{orderID}", h.getOrder)
	r.Put("/{orderID}", h.updateOrder)
	r.Delete("/{orderID}", h.deleteOrder)
	r.Patch("/{orderID}/status", h.updateStatus)
	r.Post("/{orderID}/confirm-delivery", h.confirmDelivery)
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req createOrderRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	items := make([]services.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.OrderItem{
			ItemName:     strings.TrimSpace(item.ItemName),
			Category:     domain.ProductCategory(item.Category),
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			PricePerUnit: item.PricePerUnit,
		})
	}

	cmd := services.CreateOrderCommand{
		Actor:           actor,
		Vendor:          strings.TrimSpace(req.Vendor),
		Items:           items,
		TotalAmount:     req.TotalAmount,
		Priority:        domain.OrderPriority(req.Priority),
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	}
	if raw := strings.TrimSpace(req.ExpectedDeliveryDate); raw != "" {
		ts, err := parseTimeParam(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "expectedDeliveryDate must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.ExpectedDeliveryDate = &ts
	}

	order, err := h.orders.Create(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildOrderPayload(order))
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	query := r.URL.Query()
	listQuery := services.OrderListQuery{
		Actor:    actor,
		Status:   domain.OrderStatus(strings.TrimSpace(query.Get("status"))),
		Vendor:   strings.TrimSpace(query.Get("vendor")),
		Priority: domain.OrderPriority(strings.TrimSpace(query.Get("priority"))),
	}
	if sortBy := strings.TrimSpace(query.Get("sortBy")); sortBy != "" {
		listQuery.SortBy = repositories.OrderSort(sortBy)
	}
	listQuery.SortDescending = strings.TrimSpace(query.Get("sortOrder")) != "asc"

	orders, err := h.orders.List(ctx, listQuery)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	items := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		items = append(items, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, orderListResponse{Items: items, Count: len(items)})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))

	order, err := h.orders.Get(ctx, actor, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) updateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req updateOrderRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	cmd := services.UpdateOrderCommand{
		Actor:           actor,
		OrderID:         strings.TrimSpace(chi.URLParam(r, "orderID")),
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	}
	if req.Priority != nil {
		priority := domain.OrderPriority(*req.Priority)
		cmd.Priority = &priority
	}
	if req.ExpectedDeliveryDate != nil {
		ts, err := parseTimeParam(strings.TrimSpace(*req.ExpectedDeliveryDate))
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "expectedDeliveryDate must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.ExpectedDeliveryDate = &ts
	}

	order, err := h.orders.Update(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))

	if err := h.orders.Delete(ctx, actor, orderID); err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "deleted", "orderId": orderID})
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req updateOrderStatusRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(ctx, services.UpdateOrderStatusCommand{
		Actor:   actor,
		OrderID: strings.TrimSpace(chi.URLParam(r, "orderID")),
		Status:  domain.OrderStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) bulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req bulkUpdateStatusRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	result, err := h.orders.BulkUpdateStatus(ctx, services.BulkUpdateStatusCommand{
		Actor:    actor,
		OrderIDs: req.OrderIDs,
		Status:   domain.OrderStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	response := bulkStatusResponse{
		Updated:  make([]orderPayload, 0, len(result.Updated)),
		Failures: result.Failures,
	}
	for _, order := range result.Updated {
		response.Updated = append(response.Updated, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, response)
}

// confirmDelivery marks the order delivered and releases the vendor's payment
// in one call.
func (h *OrderHandlers) confirmDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))

	order, err := h.orders.UpdateStatus(ctx, services.UpdateOrderStatusCommand{
		Actor:   actor,
		OrderID: orderID,
		Status:  domain.OrderStatusDelivered,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	payment, err := h.settlements.ReleasePayment(ctx, services.ReleasePaymentCommand{
		Actor:   actor,
		OrderID: orderID,
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, confirmDeliveryResponse{
		Order:   buildOrderPayload(order),
		Payment: buildPaymentPayload(payment),
	})
}

func (h *OrderHandlers) listOverdue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	overdue, err := h.orders.ListOverdue(ctx, actor)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	items := make([]overdueOrderPayload, 0, len(overdue))
	for _, entry := range overdue {
		items = append(items, overdueOrderPayload{
			Order:       buildOrderPayload(entry.Order),
			DaysOverdue: entry.DaysOverdue,
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *OrderHandlers) orderStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	stats, err := h.stats.OrderStats(ctx, actor)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}

func buildOrderPayload(order services.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			ItemName:     item.ItemName,
			Category:     string(item.Category),
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			PricePerUnit: item.PricePerUnit,
			TotalPrice:   item.TotalPrice,
		})
	}
	return orderPayload{
		ID:                   order.ID,
		Vendor:               order.Vendor,
		VendorName:           order.VendorName,
		VendorCompanyName:    order.VendorCompanyName,
		Items:                items,
		TotalAmount:          order.TotalAmount,
		Status:               string(order.Status),
		Priority:             string(order.Priority),
		ExpectedDeliveryDate: formatTimePtr(order.ExpectedDeliveryDate),
		ActualDeliveryDate:   formatTimePtr(order.ActualDeliveryDate),
		DeliveryAddress:      order.DeliveryAddress,
		Notes:                order.Notes,
		PaymentStatus:        string(order.PaymentStatus),
		CreatedBy:            order.CreatedBy,
		UpdatedBy:            order.UpdatedBy,
		CreatedAt:            formatTime(order.CreatedAt),
		UpdatedAt:            formatTime(order.UpdatedAt),
	}
}

func decodeOrderBody(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := readLimitedBody(r, maxOrderRequestBody)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		} else {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return false
	}
	if len(body) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
		return false
	}
	return true
}

func writeUnauthenticated(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput), errors.Is(err, services.ErrStatsInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("order_forbidden", "not allowed to access this order", http.StatusForbidden))
	case errors.Is(err, services.ErrOrderInvalidState):
		httpx.WriteError(ctx, w, httpx.NewError("order_invalid_state", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("order_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderUnavailable), errors.Is(err, services.ErrStatsUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("storage_unavailable", "storage temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
