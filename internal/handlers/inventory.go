package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/platform/auth"
	"github.com/foodchainx/api/internal/platform/httpx"
	"github.com/foodchainx/api/internal/services"
)

type createInventoryItemRequest struct {
	ItemName     string `json:"itemName"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	Vendor       string `json:"vendor"`
	VendorName   string `json:"vendorName"`
	MinThreshold int    `json:"minThreshold"`
	MaxCapacity  int    `json:"maxCapacity"`
	PricePerUnit int64  `json:"pricePerUnit"`
	ExpiryDate   string `json:"expiryDate"`
	BatchNumber  string `json:"batchNumber"`
	Location     string `json:"location"`
}

type updateInventoryItemRequest struct {
	Quantity     *int    `json:"quantity"`
	MinThreshold *int    `json:"minThreshold"`
	MaxCapacity  *int    `json:"maxCapacity"`
	PricePerUnit *int64  `json:"pricePerUnit"`
	ExpiryDate   *string `json:"expiryDate"`
	BatchNumber  *string `json:"batchNumber"`
	Location     *string `json:"location"`
	Restocked    bool    `json:"restocked"`
}

type inventoryItemPayload struct {
	ID            string `json:"id"`
	ItemName      string `json:"itemName"`
	Category      string `json:"category"`
	Quantity      int    `json:"quantity"`
	Unit          string `json:"unit,omitempty"`
	Vendor        string `json:"vendor,omitempty"`
	VendorName    string `json:"vendorName,omitempty"`
	Status        string `json:"status"`
	MinThreshold  int    `json:"minThreshold"`
	MaxCapacity   int    `json:"maxCapacity,omitempty"`
	PricePerUnit  int64  `json:"pricePerUnit"`
	ExpiryDate    string `json:"expiryDate,omitempty"`
	BatchNumber   string `json:"batchNumber,omitempty"`
	Location      string `json:"location,omitempty"`
	LastRestocked string `json:"lastRestocked"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// InventoryHandlers exposes the warehouse stock endpoints.
type InventoryHandlers struct {
	authn     *auth.Authenticator
	inventory services.InventoryService
}

// NewInventoryHandlers constructs a new InventoryHandlers instance.
func NewInventoryHandlers(authn *auth.Authenticator, inventory services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{
		authn:     authn,
		inventory: inventory,
	}
}

// Routes registers the /inventory endpoints. Stock is managed by procurement
// and admin users only.
func (h *InventoryHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth(auth.RoleProcurement, auth.RoleAdmin))
	}
	r.Get("/", h.listItems)
	r.Post("/", h.createItem)
	r.Get("/stats", h.inventoryStats)
	r.Get("/{itemID}", h.getItem)
	r.Put("/{itemID}", h.updateItem)
	r.Delete("/{itemID}", h.deleteItem)
}

func (h *InventoryHandlers) listItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	items, err := h.inventory.ListItems(ctx, services.InventoryListQuery{
		Vendor:   strings.TrimSpace(query.Get("vendor")),
		Status:   domain.InventoryStatus(strings.TrimSpace(query.Get("status"))),
		Category: domain.ProductCategory(strings.TrimSpace(query.Get("category"))),
	})
	if err != nil {
		writeInventoryError(ctx, w, err)
		return
	}

	payload := make([]inventoryItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, buildInventoryItemPayload(item))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": payload, "count": len(payload)})
}

func (h *InventoryHandlers) createItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req createInventoryItemRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	cmd := services.CreateInventoryItemCommand{
		Actor:        actor,
		ItemName:     strings.TrimSpace(req.ItemName),
		Category:     domain.ProductCategory(req.Category),
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Vendor:       req.Vendor,
		VendorName:   req.VendorName,
		MinThreshold: req.MinThreshold,
		MaxCapacity:  req.MaxCapacity,
		PricePerUnit: req.PricePerUnit,
		BatchNumber:  req.BatchNumber,
		Location:     req.Location,
	}
	if raw := strings.TrimSpace(req.ExpiryDate); raw != "" {
		ts, err := parseTimeParam(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "expiryDate must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.ExpiryDate = &ts
	}

	item, err := h.inventory.CreateItem(ctx, cmd)
	if err != nil {
		writeInventoryError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildInventoryItemPayload(item))
}

func (h *InventoryHandlers) getItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item, err := h.inventory.GetItem(ctx, strings.TrimSpace(chi.URLParam(r, "itemID")))
	if err != nil {
		writeInventoryError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildInventoryItemPayload(item))
}

func (h *InventoryHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req updateInventoryItemRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	cmd := services.UpdateInventoryItemCommand{
		Actor:        actor,
		ItemID:       strings.TrimSpace(chi.URLParam(r, "itemID")),
		Quantity:     req.Quantity,
		MinThreshold: req.MinThreshold,
		MaxCapacity:  req.MaxCapacity,
		PricePerUnit: req.PricePerUnit,
		BatchNumber:  req.BatchNumber,
		Location:     req.Location,
		Restocked:    req.Restocked,
	}
	if req.ExpiryDate != nil {
		ts, err := parseTimeParam(strings.TrimSpace(*req.ExpiryDate))
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "expiryDate must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.ExpiryDate = &ts
	}

	item, err := h.inventory.UpdateItem(ctx, cmd)
	if err != nil {
		writeInventoryError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildInventoryItemPayload(item))
}

func (h *InventoryHandlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
	if err := h.inventory.DeleteItem(ctx, itemID); err != nil {
		writeInventoryError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "deleted", "itemId": itemID})
}

func (h *InventoryHandlers) inventoryStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.inventory.Stats(ctx)
	if err != nil {
		writeInventoryError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}

func buildInventoryItemPayload(item services.InventoryItem) inventoryItemPayload {
	return inventoryItemPayload{
		ID:            item.ID,
		ItemName:      item.ItemName,
		Category:      string(item.Category),
		Quantity:      item.Quantity,
		Unit:          item.Unit,
		Vendor:        item.Vendor,
		VendorName:    item.VendorName,
		Status:        string(item.Status),
		MinThreshold:  item.MinThreshold,
		MaxCapacity:   item.MaxCapacity,
		PricePerUnit:  item.PricePerUnit,
		ExpiryDate:    formatTimePtr(item.ExpiryDate),
		BatchNumber:   item.BatchNumber,
		Location:      item.Location,
		LastRestocked: formatTime(item.LastRestocked),
		CreatedAt:     formatTime(item.CreatedAt),
		UpdatedAt:     formatTime(item.UpdatedAt),
	}
}

func writeInventoryError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrInventoryInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrInventoryNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("inventory_not_found", "inventory item not found", http.StatusNotFound))
	case errors.Is(err, services.ErrInventoryConflict):
		httpx.WriteError(ctx, w, httpx.NewError("inventory_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrInventoryUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("storage_unavailable", "storage temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("inventory_error", "failed to process inventory request", http.StatusInternalServerError))
	}
}
