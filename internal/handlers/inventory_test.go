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
	"github.com/foodchainx/api/internal/services"
)

func newInventoryRouter(inventory services.InventoryService) chi.Router {
	handler := NewInventoryHandlers(nil, inventory)
	router := chi.NewRouter()
	router.Route("/inventory", handler.Routes)
	return router
}

func sampleInventoryItem() services.InventoryItem {
	created := time.Date(2026, time.February, 1, 6, 0, 0, 0, time.UTC)
	return services.InventoryItem{
		ID:            "01HTESTITEM",
		ItemName:      "Whole Wheat Flour",
		Category:      domain.CategoryGrains,
		Quantity:      120,
		Unit:          "kg",
		Status:        domain.InventoryStatusInStock,
		MinThreshold:  30,
		PricePerUnit:  55,
		LastRestocked: created,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestInventoryHandlersCreateItem(t *testing.T) {
	var captured services.CreateInventoryItemCommand
	inventory := &stubInventoryService{
		createFn: func(_ context.Context, cmd services.CreateInventoryItemCommand) (services.InventoryItem, error) {
			captured = cmd
			return sampleInventoryItem(), nil
		},
	}
	router := newInventoryRouter(inventory)

	body := `{"itemName":" Whole Wheat Flour ","category":"Grains","quantity":120,"unit":"kg","minThreshold":30,"pricePerUnit":55,"expiryDate":"2026-09-01T00:00:00Z"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/inventory", strings.NewReader(body)), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	if captured.ItemName != "Whole Wheat Flour" {
		t.Fatalf("expected trimmed item name, got %q", captured.ItemName)
	}
	if captured.ExpiryDate == nil {
		t.Fatalf("expected expiry date parsed")
	}
}

func TestInventoryHandlersCreateItemRejectsBadExpiry(t *testing.T) {
	router := newInventoryRouter(&stubInventoryService{})

	body := `{"itemName":"Flour","category":"Grains","quantity":1,"expiryDate":"next week"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/inventory", strings.NewReader(body)), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestInventoryHandlersListItems(t *testing.T) {
	var captured services.InventoryListQuery
	inventory := &stubInventoryService{
		listFn: func(_ context.Context, query services.InventoryListQuery) ([]services.InventoryItem, error) {
			captured = query
			return []services.InventoryItem{sampleInventoryItem()}, nil
		},
	}
	router := newInventoryRouter(inventory)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/inventory?status=Low+Stock&category=Grains", nil), auth.RoleAdmin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured.Status != domain.InventoryStatusLowStock || captured.Category != domain.CategoryGrains {
		t.Fatalf("unexpected query: %+v", captured)
	}

	var payload struct {
		Items []inventoryItemPayload `json:"items"`
		Count int                    `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 1 || payload.Items[0].Status != string(domain.InventoryStatusInStock) {
		t.Fatalf("unexpected list: %+v", payload)
	}
}

func TestInventoryHandlersUpdateItemForwardsRestockFlag(t *testing.T) {
	var captured services.UpdateInventoryItemCommand
	inventory := &stubInventoryService{
		updateFn: func(_ context.Context, cmd services.UpdateInventoryItemCommand) (services.InventoryItem, error) {
			captured = cmd
			return sampleInventoryItem(), nil
		},
	}
	router := newInventoryRouter(inventory)

	req := authenticated(httptest.NewRequest(http.MethodPut, "/inventory/01HTESTITEM", strings.NewReader(`{"quantity":200,"restocked":true}`)), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if captured.ItemID != "01HTESTITEM" || !captured.Restocked {
		t.Fatalf("unexpected command: %+v", captured)
	}
	if captured.Quantity == nil || *captured.Quantity != 200 {
		t.Fatalf("unexpected quantity: %v", captured.Quantity)
	}
}

func TestInventoryHandlersDeleteItemNotFound(t *testing.T) {
	inventory := &stubInventoryService{
		deleteFn: func(context.Context, string) error {
			return services.ErrInventoryNotFound
		},
	}
	router := newInventoryRouter(inventory)

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/inventory/unknown", nil), auth.RoleAdmin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestInventoryHandlersStats(t *testing.T) {
	inventory := &stubInventoryService{
		statsFn: func(context.Context) (services.InventoryStats, error) {
			return services.InventoryStats{
				TotalItems: 4,
				TotalValue: 18000,
				StatusCounts: map[string]int{
					string(domain.InventoryStatusInStock):  3,
					string(domain.InventoryStatusLowStock): 1,
				},
			}, nil
		},
	}
	router := newInventoryRouter(inventory)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/inventory/stats", nil), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload services.InventoryStats
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.TotalItems != 4 || payload.TotalValue != 18000 {
		t.Fatalf("unexpected stats: %+v", payload)
	}
}
