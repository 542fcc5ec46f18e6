package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/platform/auth"
	"github.com/foodchainx/api/internal/repositories"
	"github.com/foodchainx/api/internal/services"
)

func newOrderRouter(orders services.OrderService, settlements services.SettlementService, stats services.StatsService) chi.Router {
	if settlements == nil {
		settlements = &stubSettlementService{}
	}
	if stats == nil {
		stats = &stubStatsService{}
	}
	handler := NewOrderHandlers(nil, orders, settlements, stats)
	router := chi.NewRouter()
	router.Route("/orders", handler.Routes)
	return router
}

func authenticated(req *http.Request, role string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{
		UserID: "user-1",
		Email:  "user-1@example.com",
		Name:   "Priya Raman",
		Role:   role,
	}))
}

func sampleOrder() services.Order {
	created := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	return services.Order{
		ID:     "ORD-1700000000000-AB12C",
		Vendor: "vendor-1",
		Items: []services.OrderItem{
			{ItemName: "Basmati Rice", Category: domain.CategoryGrains, Quantity: 40, Unit: "kg", PricePerUnit: 150, TotalPrice: 6000},
		},
		TotalAmount:   6000,
		Status:        domain.OrderStatusPending,
		Priority:      domain.OrderPriorityMedium,
		PaymentStatus: domain.OrderPaymentPending,
		CreatedBy:     "user-1",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestOrderHandlersCreateOrder(t *testing.T) {
	var captured services.CreateOrderCommand
	orders := &stubOrderService{
		createFn: func(_ context.Context, cmd services.CreateOrderCommand) (services.Order, error) {
			captured = cmd
			return sampleOrder(), nil
		},
	}
	router := newOrderRouter(orders, nil, nil)

	body := `{"vendor":" vendor-1 ","items":[{"itemName":"Basmati Rice","category":"Grains","quantity":40,"unit":"kg","pricePerUnit":150}],"priority":"High","deliveryAddress":"Dock 4"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	if captured.Actor.UserID != "user-1" {
		t.Fatalf("expected actor user-1, got %q", captured.Actor.UserID)
	}
	if captured.Vendor != "vendor-1" {
		t.Fatalf("expected trimmed vendor, got %q", captured.Vendor)
	}
	if len(captured.Items) != 1 || captured.Items[0].Category != domain.CategoryGrains {
		t.Fatalf("unexpected items: %+v", captured.Items)
	}
	if captured.Priority != domain.OrderPriority("High") {
		t.Fatalf("unexpected priority: %q", captured.Priority)
	}

	var payload orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != "ORD-1700000000000-AB12C" || payload.TotalAmount != 6000 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestOrderHandlersCreateRequiresBody(t *testing.T) {
	router := newOrderRouter(&stubOrderService{}, nil, nil)

	req := authenticated(httptest.NewRequest(http.MethodPost, "/orders", nil), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestOrderHandlersRequireIdentity(t *testing.T) {
	router := newOrderRouter(&stubOrderService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestOrderHandlersListParsesQuery(t *testing.T) {
	var captured services.OrderListQuery
	orders := &stubOrderService{
		listFn: func(_ context.Context, query services.OrderListQuery) ([]services.Order, error) {
			captured = query
			return []services.Order{sampleOrder()}, nil
		},
	}
	router := newOrderRouter(orders, nil, nil)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/orders?status=Pending&vendor=vendor-1&sortBy=totalAmount&sortOrder=asc", nil), auth.RoleAdmin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if captured.Status != domain.OrderStatusPending || captured.Vendor != "vendor-1" {
		t.Fatalf("unexpected filter: %+v", captured)
	}
	if captured.SortBy != repositories.OrderSortTotalAmount {
		t.Fatalf("unexpected sort field: %q", captured.SortBy)
	}
	if captured.SortDescending {
		t.Fatalf("expected ascending sort for sortOrder=asc")
	}

	var payload orderListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 1 || len(payload.Items) != 1 {
		t.Fatalf("unexpected list response: %+v", payload)
	}
}

func TestOrderHandlersGetNotFound(t *testing.T) {
	orders := &stubOrderService{
		getFn: func(context.Context, services.Actor, string) (services.Order, error) {
			return services.Order{}, services.ErrOrderNotFound
		},
	}
	router := newOrderRouter(orders, nil, nil)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/orders/ORD-missing", nil), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestOrderHandlersUpdateStatusInvalidState(t *testing.T) {
	orders := &stubOrderService{
		statusFn: func(context.Context, services.UpdateOrderStatusCommand) (services.Order, error) {
			return services.Order{}, services.ErrOrderInvalidState
		},
	}
	router := newOrderRouter(orders, nil, nil)

	req := authenticated(httptest.NewRequest(http.MethodPatch, "/orders/ORD-1/status", strings.NewReader(`{"status":"Pending"}`)), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestOrderHandlersBulkStatusReportsFailures(t *testing.T) {
	orders := &stubOrderService{
		bulkFn: func(_ context.Context, cmd services.BulkUpdateStatusCommand) (services.BulkStatusResult, error) {
			if len(cmd.OrderIDs) != 2 || cmd.Status != domain.OrderStatusConfirmed {
				t.Fatalf("unexpected command: %+v", cmd)
			}
			return services.BulkStatusResult{
				Updated:  []services.Order{sampleOrder()},
				Failures: []services.BulkStatusFailure{{OrderID: "ORD-2", Reason: "order not found"}},
			}, nil
		},
	}
	router := newOrderRouter(orders, nil, nil)

	body := `{"orderIds":["ORD-1","ORD-2"],"status":"Confirmed"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/orders/bulk-status", strings.NewReader(body)), auth.RoleAdmin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var payload bulkStatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Updated) != 1 || len(payload.Failures) != 1 {
		t.Fatalf("unexpected bulk response: %+v", payload)
	}
	if payload.Failures[0].Reason != "order not found" {
		t.Fatalf("unexpected failure reason: %q", payload.Failures[0].Reason)
	}
}

func TestOrderHandlersConfirmDelivery(t *testing.T) {
	delivered := sampleOrder()
	delivered.Status = domain.OrderStatusDelivered
	orders := &stubOrderService{
		statusFn: func(_ context.Context, cmd services.UpdateOrderStatusCommand) (services.Order, error) {
			if cmd.Status != domain.OrderStatusDelivered {
				t.Fatalf("expected Delivered transition, got %q", cmd.Status)
			}
			return delivered, nil
		},
	}
	settlements := &stubSettlementService{
		releaseFn: func(_ context.Context, cmd services.ReleasePaymentCommand) (services.Payment, error) {
			if cmd.OrderID != delivered.ID {
				t.Fatalf("expected release for %q, got %q", delivered.ID, cmd.OrderID)
			}
			return services.Payment{ID: "PAY-1", OrderID: delivered.ID, Status: domain.PaymentStatusReleased}, nil
		},
	}
	router := newOrderRouter(orders, settlements, nil)

	req := authenticated(httptest.NewRequest(http.MethodPost, "/orders/"+delivered.ID+"/confirm-delivery", nil), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var payload confirmDeliveryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Order.Status != string(domain.OrderStatusDelivered) {
		t.Fatalf("unexpected order status: %q", payload.Order.Status)
	}
	if payload.Payment.Status != string(domain.PaymentStatusReleased) {
		t.Fatalf("unexpected payment status: %q", payload.Payment.Status)
	}
}

func TestOrderHandlersListOverdue(t *testing.T) {
	orders := &stubOrderService{
		listOverdueFn: func(context.Context, services.Actor) ([]services.OverdueOrder, error) {
			return []services.OverdueOrder{{Order: sampleOrder(), DaysOverdue: 3}}, nil
		},
	}
	router := newOrderRouter(orders, nil, nil)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/orders/overdue", nil), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Items []overdueOrderPayload `json:"items"`
		Count int                   `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 1 || payload.Items[0].DaysOverdue != 3 {
		t.Fatalf("unexpected overdue response: %+v", payload)
	}
}

func TestOrderHandlersStatsUnavailable(t *testing.T) {
	stats := &stubStatsService{
		orderStatsFn: func(context.Context, services.Actor) (services.OrderStats, error) {
			return services.OrderStats{}, services.ErrStatsUnavailable
		},
	}
	router := newOrderRouter(&stubOrderService{}, nil, stats)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/orders/stats", nil), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
