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

type saveVendorProfileRequest struct {
	BusinessName     string   `json:"businessName"`
	OwnerName        string   `json:"ownerName"`
	BusinessType     string   `json:"businessType"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	SupplyCategories []string `json:"supplyCategories"`
	OperationalArea  string   `json:"operationalArea"`
	LicenseNumber    string   `json:"licenseNumber"`
	YearsInBusiness  int      `json:"yearsInBusiness"`
	AvgCapacity      int      `json:"avgCapacity"`
}

type createProductRequest struct {
	ProductName           string   `json:"productName"`
	Category              string   `json:"category"`
	Description           string   `json:"description"`
	Quantity              int      `json:"quantity"`
	Unit                  string   `json:"unit"`
	PricePerUnit          int64    `json:"pricePerUnit"`
	MinOrderQuantity      int      `json:"minOrderQuantity"`
	MaxOrderQuantity      int      `json:"maxOrderQuantity"`
	HarvestDate           string   `json:"harvestDate"`
	ExpiryDate            string   `json:"expiryDate"`
	QualityCertifications []string `json:"qualityCertifications"`
	Location              string   `json:"location"`
	DeliveryOptions       []string `json:"deliveryOptions"`
}

type updateProductRequest struct {
	ProductName  *string `json:"productName"`
	Description  *string `json:"description"`
	Quantity     *int    `json:"quantity"`
	Unit         *string `json:"unit"`
	PricePerUnit *int64  `json:"pricePerUnit"`
	Status       *string `json:"status"`
	Location     *string `json:"location"`
}

type vendorPayload struct {
	ID               string   `json:"id"`
	BusinessName     string   `json:"businessName"`
	OwnerName        string   `json:"ownerName,omitempty"`
	BusinessType     string   `json:"businessType,omitempty"`
	Email            string   `json:"email,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Address          string   `json:"address,omitempty"`
	SupplyCategories []string `json:"supplyCategories,omitempty"`
	OperationalArea  string   `json:"operationalArea,omitempty"`
	LicenseNumber    string   `json:"licenseNumber,omitempty"`
	YearsInBusiness  int      `json:"yearsInBusiness,omitempty"`
	AvgCapacity      int      `json:"avgCapacity,omitempty"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
}

type productPayload struct {
	ID                    string   `json:"id"`
	ProductName           string   `json:"productName"`
	Category              string   `json:"category"`
	Description           string   `json:"description,omitempty"`
	Quantity              int      `json:"quantity"`
	Unit                  string   `json:"unit,omitempty"`
	PricePerUnit          int64    `json:"pricePerUnit"`
	MinOrderQuantity      int      `json:"minOrderQuantity,omitempty"`
	MaxOrderQuantity      int      `json:"maxOrderQuantity,omitempty"`
	Vendor                string   `json:"vendor"`
	VendorName            string   `json:"vendorName,omitempty"`
	VendorCompanyName     string   `json:"vendorCompanyName,omitempty"`
	IsAvailable           bool     `json:"isAvailable"`
	HarvestDate           string   `json:"harvestDate,omitempty"`
	ExpiryDate            string   `json:"expiryDate,omitempty"`
	QualityCertifications []string `json:"qualityCertifications,omitempty"`
	Location              string   `json:"location,omitempty"`
	DeliveryOptions       []string `json:"deliveryOptions,omitempty"`
	Status                string   `json:"status"`
	CreatedAt             string   `json:"createdAt"`
	UpdatedAt             string   `json:"updatedAt"`
}

// VendorHandlers exposes vendor profile and product catalogue endpoints.
type VendorHandlers struct {
	authn   *auth.Authenticator
	vendors services.VendorService
}

// NewVendorHandlers constructs a new VendorHandlers instance.
func NewVendorHandlers(authn *auth.Authenticator, vendors services.VendorService) *VendorHandlers {
	return &VendorHandlers{
		authn:   authn,
		vendors: vendors,
	}
}

// Routes registers the /vendors endpoints. Profile and catalogue writes are
// reserved for vendor users.
func (h *VendorHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.listVendors)
	r.Get("/products", h.listProducts)

	r.Group(func(vr chi.Router) {
		if h.authn != nil {
			vr.Use(h.authn.RequireAuth(auth.RoleVendor, auth.RoleAdmin))
		}
		vr.Get("/profile", h.getProfile)
		vr.Put("/profile", h.saveProfile)
		vr.Post("/products", h.createProduct)
		vr.Put("/products/{productID}", h.updateProduct)
		vr.Delete("/products/{productID}", h.deleteProduct)
	})
}

func (h *VendorHandlers) listVendors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vendors, err := h.vendors.ListVendors(ctx)
	if err != nil {
		writeVendorError(ctx, w, err)
		return
	}
	items := make([]vendorPayload, 0, len(vendors))
	for _, vendor := range vendors {
		items = append(items, buildVendorPayload(vendor))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *VendorHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	vendor, err := h.vendors.GetProfile(ctx, actor)
	if err != nil {
		writeVendorError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildVendorPayload(vendor))
}

func (h *VendorHandlers) saveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req saveVendorProfileRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	vendor, err := h.vendors.SaveProfile(ctx, services.SaveVendorProfileCommand{
		Actor:            actor,
		BusinessName:     strings.TrimSpace(req.BusinessName),
		OwnerName:        strings.TrimSpace(req.OwnerName),
		BusinessType:     req.BusinessType,
		Email:            strings.TrimSpace(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		Address:          req.Address,
		SupplyCategories: req.SupplyCategories,
		OperationalArea:  req.OperationalArea,
		LicenseNumber:    req.LicenseNumber,
		YearsInBusiness:  req.YearsInBusiness,
		AvgCapacity:      req.AvgCapacity,
	})
	if err != nil {
		writeVendorError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildVendorPayload(vendor))
}

func (h *VendorHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	query := r.URL.Query()
	products, err := h.vendors.ListProducts(ctx, services.ProductListQuery{
		Actor:         actor,
		Vendor:        strings.TrimSpace(query.Get("vendor")),
		Category:      domain.ProductCategory(strings.TrimSpace(query.Get("category"))),
		AvailableOnly: query.Get("available") == "true",
		MineOnly:      query.Get("mine") == "true",
	})
	if err != nil {
		writeVendorError(ctx, w, err)
		return
	}

	items := make([]productPayload, 0, len(products))
	for _, product := range products {
		items = append(items, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *VendorHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req createProductRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	cmd := services.CreateProductCommand{
		Actor:                 actor,
		ProductName:           strings.TrimSpace(req.ProductName),
		Category:              domain.ProductCategory(req.Category),
		Description:           req.Description,
		Quantity:              req.Quantity,
		Unit:                  req.Unit,
		PricePerUnit:          req.PricePerUnit,
		MinOrderQuantity:      req.MinOrderQuantity,
		MaxOrderQuantity:      req.MaxOrderQuantity,
		QualityCertifications: req.QualityCertifications,
		Location:              req.Location,
		DeliveryOptions:       req.DeliveryOptions,
	}
	if raw := strings.TrimSpace(req.HarvestDate); raw != "" {
		ts, err := parseTimeParam(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "harvestDate must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.HarvestDate = &ts
	}
	if raw := strings.TrimSpace(req.ExpiryDate); raw != "" {
		ts, err := parseTimeParam(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "expiryDate must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.ExpiryDate = &ts
	}

	product, err := h.vendors.CreateProduct(ctx, cmd)
	if err != nil {
		writeVendorError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildProductPayload(product))
}

func (h *VendorHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}

	var req updateProductRequest
	if !decodeOrderBody(ctx, w, r, &req) {
		return
	}

	cmd := services.UpdateProductCommand{
		Actor:        actor,
		ProductID:    strings.TrimSpace(chi.URLParam(r, "productID")),
		ProductName:  req.ProductName,
		Description:  req.Description,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		PricePerUnit: req.PricePerUnit,
		Location:     req.Location,
	}
	if req.Status != nil {
		status := domain.ProductStatus(*req.Status)
		cmd.Status = &status
	}

	product, err := h.vendors.UpdateProduct(ctx, cmd)
	if err != nil {
		writeVendorError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *VendorHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(r)
	if !ok {
		writeUnauthenticated(ctx, w)
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productID"))

	if err := h.vendors.DeleteProduct(ctx, actor, productID); err != nil {
		writeVendorError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "deleted", "productId": productID})
}

func buildVendorPayload(vendor services.Vendor) vendorPayload {
	return vendorPayload{
		ID:               vendor.ID,
		BusinessName:     vendor.BusinessName,
		OwnerName:        vendor.OwnerName,
		BusinessType:     vendor.BusinessType,
		Email:            vendor.Contact.Email,
		Phone:            vendor.Contact.Phone,
		Address:          vendor.Address,
		SupplyCategories: vendor.SupplyCategories,
		OperationalArea:  vendor.OperationalArea,
		LicenseNumber:    vendor.LicenseNumber,
		YearsInBusiness:  vendor.YearsInBusiness,
		AvgCapacity:      vendor.AvgCapacity,
		CreatedAt:        formatTime(vendor.CreatedAt),
		UpdatedAt:        formatTime(vendor.UpdatedAt),
	}
}

func buildProductPayload(product services.VendorProduct) productPayload {
	return productPayload{
		ID:                    product.ID,
		ProductName:           product.ProductName,
		Category:              string(product.Category),
		Description:           product.Description,
		Quantity:              product.Quantity,
		Unit:                  product.Unit,
		PricePerUnit:          product.PricePerUnit,
		MinOrderQuantity:      product.MinOrderQuantity,
		MaxOrderQuantity:      product.MaxOrderQuantity,
		Vendor:                product.Vendor,
		VendorName:            product.VendorName,
		VendorCompanyName:     product.VendorCompanyName,
		IsAvailable:           product.IsAvailable,
		HarvestDate:           formatTimePtr(product.HarvestDate),
		ExpiryDate:            formatTimePtr(product.ExpiryDate),
		QualityCertifications: product.QualityCertifications,
		Location:              product.Location,
		DeliveryOptions:       product.DeliveryOptions,
		Status:                string(product.Status),
		CreatedAt:             formatTime(product.CreatedAt),
		UpdatedAt:             formatTime(product.UpdatedAt),
	}
}

func writeVendorError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrVendorInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrVendorNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("vendor_not_found", "vendor profile not found", http.StatusNotFound))
	case errors.Is(err, services.ErrVendorForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("vendor_forbidden", "not allowed to access this record", http.StatusForbidden))
	case errors.Is(err, services.ErrVendorConflict):
		httpx.WriteError(ctx, w, httpx.NewError("vendor_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrVendorUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("storage_unavailable", "storage temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("vendor_error", "failed to process vendor request", http.StatusInternalServerError))
	}
}
