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

func newVendorRouter(vendors services.VendorService) chi.Router {
	handler := NewVendorHandlers(nil, vendors)
	router := chi.NewRouter()
	router.Route("/vendors", handler.Routes)
	return router
}

func sampleVendor() services.Vendor {
	created := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	return services.Vendor{
		ID:           "01HTESTVENDOR",
		UserID:       "user-1",
		BusinessName: "Green Farm Co",
		OwnerName:    "Asha Patel",
		Contact: domain.VendorContact{
			Email: "asha@greenfarm.example",
			Phone: "+91-98100-00000",
		},
		SupplyCategories: []string{"Grains", "Vegetables"},
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func TestVendorHandlersSaveProfile(t *testing.T) {
	var captured services.SaveVendorProfileCommand
	vendors := &stubVendorService{
		saveProfileFn: func(_ context.Context, cmd services.SaveVendorProfileCommand) (services.Vendor, error) {
			captured = cmd
			return sampleVendor(), nil
		},
	}
	router := newVendorRouter(vendors)

	body := `{"businessName":" Green Farm Co ","ownerName":"Asha Patel","email":"asha@greenfarm.example","supplyCategories":["Grains","Vegetables"]}`
	req := authenticated(httptest.NewRequest(http.MethodPut, "/vendors/profile", strings.NewReader(body)), auth.RoleVendor)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if captured.BusinessName != "Green Farm Co" {
		t.Fatalf("expected trimmed business name, got %q", captured.BusinessName)
	}
	if len(captured.SupplyCategories) != 2 {
		t.Fatalf("unexpected categories: %v", captured.SupplyCategories)
	}

	var payload vendorPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Email != "asha@greenfarm.example" {
		t.Fatalf("expected contact email flattened into payload, got %q", payload.Email)
	}
}

func TestVendorHandlersGetProfileNotFound(t *testing.T) {
	vendors := &stubVendorService{
		getProfileFn: func(context.Context, services.Actor) (services.Vendor, error) {
			return services.Vendor{}, services.ErrVendorNotFound
		},
	}
	router := newVendorRouter(vendors)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/vendors/profile", nil), auth.RoleVendor)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestVendorHandlersListProductsParsesQuery(t *testing.T) {
	var captured services.ProductListQuery
	vendors := &stubVendorService{
		listProductsFn: func(_ context.Context, query services.ProductListQuery) ([]services.VendorProduct, error) {
			captured = query
			return nil, nil
		},
	}
	router := newVendorRouter(vendors)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/vendors/products?category=Dairy&available=true&mine=true", nil), auth.RoleVendor)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured.Category != domain.CategoryDairy || !captured.AvailableOnly || !captured.MineOnly {
		t.Fatalf("unexpected query: %+v", captured)
	}
}

func TestVendorHandlersCreateProduct(t *testing.T) {
	var captured services.CreateProductCommand
	vendors := &stubVendorService{
		createProductFn: func(_ context.Context, cmd services.CreateProductCommand) (services.VendorProduct, error) {
			captured = cmd
			return services.VendorProduct{
				ID:          "01HTESTPRODUCT",
				ProductName: cmd.ProductName,
				Category:    cmd.Category,
				Quantity:    cmd.Quantity,
				IsAvailable: true,
			}, nil
		},
	}
	router := newVendorRouter(vendors)

	body := `{"productName":"Organic Tomatoes","category":"Vegetables","quantity":200,"unit":"kg","pricePerUnit":45,"harvestDate":"2026-03-01T00:00:00Z"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/vendors/products", strings.NewReader(body)), auth.RoleVendor)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	if captured.Category != domain.CategoryVegetables || captured.HarvestDate == nil {
		t.Fatalf("unexpected command: %+v", captured)
	}

	var payload productPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.IsAvailable || payload.ProductName != "Organic Tomatoes" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestVendorHandlersUpdateProductForbidden(t *testing.T) {
	vendors := &stubVendorService{
		updateProductFn: func(context.Context, services.UpdateProductCommand) (services.VendorProduct, error) {
			return services.VendorProduct{}, services.ErrVendorForbidden
		},
	}
	router := newVendorRouter(vendors)

	req := authenticated(httptest.NewRequest(http.MethodPut, "/vendors/products/01HTESTPRODUCT", strings.NewReader(`{"quantity":0}`)), auth.RoleVendor)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestVendorHandlersDeleteProductNotFound(t *testing.T) {
	vendors := &stubVendorService{
		deleteProductFn: func(context.Context, services.Actor, string) error {
			return services.ErrProductNotFound
		},
	}
	router := newVendorRouter(vendors)

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/vendors/products/unknown", nil), auth.RoleAdmin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestVendorHandlersListVendors(t *testing.T) {
	vendors := &stubVendorService{
		listVendorsFn: func(context.Context) ([]services.Vendor, error) {
			return []services.Vendor{sampleVendor()}, nil
		},
	}
	router := newVendorRouter(vendors)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/vendors", nil), auth.RoleProcurement)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Items []vendorPayload `json:"items"`
		Count int             `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 1 || payload.Items[0].BusinessName != "Green Farm Co" {
		t.Fatalf("unexpected vendor list: %+v", payload)
	}
}
