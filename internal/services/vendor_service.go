package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/repositories"
)

var (
	// ErrVendorInvalidInput indicates the command failed validation.
	ErrVendorInvalidInput = errors.New("vendor: invalid input")
	// ErrVendorNotFound indicates the vendor profile does not exist.
	ErrVendorNotFound = errors.New("vendor: not found")
	// ErrVendorForbidden indicates the actor may not operate on the record.
	ErrVendorForbidden = errors.New("vendor: forbidden")
	// ErrVendorConflict indicates a concurrent modification clashed.
	ErrVendorConflict = errors.New("vendor: conflict")
	// ErrVendorUnavailable indicates the backing store could not serve the request.
	ErrVendorUnavailable = errors.New("vendor: storage unavailable")
	// ErrProductNotFound indicates the catalogue entry does not exist.
	ErrProductNotFound = errors.New("vendor: product not found")
)

// VendorServiceDeps lists collaborators required by NewVendorService.
type VendorServiceDeps struct {
	Vendors   repositories.VendorRepository
	Products  repositories.VendorProductRepository
	Publisher NotificationPublisher

	Clock  func() time.Time
	NewID  func() string
	Logger func(ctx context.Context, event string, fields map[string]any)
}

type vendorService struct {
	vendors   repositories.VendorRepository
	products  repositories.VendorProductRepository
	publisher NotificationPublisher

	clock  func() time.Time
	newID  func() string
	logger func(ctx context.Context, event string, fields map[string]any)
}

// NewVendorService validates dependencies and builds the vendor service.
func NewVendorService(deps VendorServiceDeps) (VendorService, error) {
	if deps.Vendors == nil {
		return nil, errors.New("vendor service: vendor repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("vendor service: product repository is required")
	}
	svc := &vendorService{
		vendors:   deps.Vendors,
		products:  deps.Products,
		publisher: deps.Publisher,
		clock:     deps.Clock,
		newID:     deps.NewID,
		logger:    deps.Logger,
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	if svc.newID == nil {
		svc.newID = func() string { return ulid.Make().String() }
	}
	if svc.logger == nil {
		svc.logger = func(context.Context, string, map[string]any) {}
	}
	return svc, nil
}

func (s *vendorService) now() time.Time {
	return s.clock().UTC()
}

// SaveProfile creates or updates the caller's vendor profile. The first save
// queues a welcome notification.
func (s *vendorService) SaveProfile(ctx context.Context, cmd SaveVendorProfileCommand) (Vendor, error) {
	if cmd.Actor.UserID == "" {
		return Vendor{}, fmt.Errorf("%w: actor is required", ErrVendorInvalidInput)
	}
	if cmd.BusinessName == "" {
		return Vendor{}, fmt.Errorf("%w: business name is required", ErrVendorInvalidInput)
	}
	for _, category := range cmd.SupplyCategories {
		if !domain.ProductCategory(category).IsValid() {
			return Vendor{}, fmt.Errorf("%w: unknown supply category %q", ErrVendorInvalidInput, category)
		}
	}

	now := s.now()
	firstSave := false
	vendor, err := s.vendors.FindByUserID(ctx, cmd.Actor.UserID)
	switch {
	case err == nil:
	case isNotFound(err):
		firstSave = true
		vendor = Vendor{
			ID:        s.newID(),
			UserID:    cmd.Actor.UserID,
			CreatedAt: now,
		}
	default:
		return Vendor{}, s.mapRepositoryError(err)
	}

	vendor.BusinessName = cmd.BusinessName
	vendor.OwnerName = cmd.OwnerName
	vendor.BusinessType = cmd.BusinessType
	vendor.Contact = domain.VendorContact{Email: cmd.Email, Phone: cmd.Phone}
	vendor.Address = cmd.Address
	vendor.SupplyCategories = cmd.SupplyCategories
	vendor.OperationalArea = cmd.OperationalArea
	vendor.LicenseNumber = cmd.LicenseNumber
	vendor.YearsInBusiness = cmd.YearsInBusiness
	vendor.AvgCapacity = cmd.AvgCapacity
	vendor.UpdatedAt = now

	if err := s.vendors.Upsert(ctx, vendor); err != nil {
		return Vendor{}, s.mapRepositoryError(err)
	}

	if firstSave {
		s.logger(ctx, "vendor.profile_created", map[string]any{"vendor": vendor.ID})
		s.publishWelcome(ctx, vendor)
	}
	return vendor, nil
}

func (s *vendorService) publishWelcome(ctx context.Context, vendor Vendor) {
	if s.publisher == nil {
		return
	}
	recipient := vendor.Contact.Email
	if recipient == "" {
		recipient = vendor.UserID
	}
	msg := NotificationMessage{
		EventID:   fmt.Sprintf("%s-%d", vendor.ID, vendor.UpdatedAt.UnixMilli()),
		Type:      NotificationWelcome,
		Recipient: recipient,
		QueuedAt:  vendor.UpdatedAt,
	}
	if _, err := s.publisher.PublishNotification(ctx, msg); err != nil {
		s.logger(ctx, "vendor.notification_failed", map[string]any{
			"vendor": vendor.ID,
			"error":  err.Error(),
		})
	}
}

func (s *vendorService) GetProfile(ctx context.Context, actor Actor) (Vendor, error) {
	if actor.UserID == "" {
		return Vendor{}, fmt.Errorf("%w: actor is required", ErrVendorInvalidInput)
	}
	vendor, err := s.vendors.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return Vendor{}, s.mapRepositoryError(err)
	}
	return vendor, nil
}

func (s *vendorService) ListVendors(ctx context.Context) ([]Vendor, error) {
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return vendors, nil
}

// CreateProduct lists a new product under the caller's vendor profile.
func (s *vendorService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (VendorProduct, error) {
	if cmd.ProductName == "" {
		return VendorProduct{}, fmt.Errorf("%w: product name is required", ErrVendorInvalidInput)
	}
	if !cmd.Category.IsValid() {
		return VendorProduct{}, fmt.Errorf("%w: unknown category %q", ErrVendorInvalidInput, cmd.Category)
	}
	if cmd.Quantity < 0 {
		return VendorProduct{}, fmt.Errorf("%w: quantity must not be negative", ErrVendorInvalidInput)
	}
	if cmd.PricePerUnit < 0 {
		return VendorProduct{}, fmt.Errorf("%w: price must not be negative", ErrVendorInvalidInput)
	}

	vendor, err := s.vendors.FindByUserID(ctx, cmd.Actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return VendorProduct{}, fmt.Errorf("%w: create a vendor profile first", ErrVendorInvalidInput)
		}
		return VendorProduct{}, s.mapRepositoryError(err)
	}

	now := s.now()
	product := VendorProduct{
		ID:                    s.newID(),
		ProductName:           cmd.ProductName,
		Category:              cmd.Category,
		Description:           cmd.Description,
		Quantity:              cmd.Quantity,
		Unit:                  cmd.Unit,
		PricePerUnit:          cmd.PricePerUnit,
		MinOrderQuantity:      cmd.MinOrderQuantity,
		MaxOrderQuantity:      cmd.MaxOrderQuantity,
		Vendor:                vendor.ID,
		VendorName:            vendor.DisplayName(),
		VendorCompanyName:     vendor.BusinessName,
		HarvestDate:           utcPtr(cmd.HarvestDate),
		ExpiryDate:            utcPtr(cmd.ExpiryDate),
		QualityCertifications: cmd.QualityCertifications,
		Location:              cmd.Location,
		DeliveryOptions:       cmd.DeliveryOptions,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	product.RefreshAvailability()

	if err := s.products.Insert(ctx, product); err != nil {
		return VendorProduct{}, s.mapRepositoryError(err)
	}
	s.logger(ctx, "vendor.product_created", map[string]any{
		"vendor":    vendor.ID,
		"productId": product.ID,
	})
	return product, nil
}

// UpdateProduct patches a catalogue entry. Only the owning vendor or an admin
// may modify it; availability is recomputed from the resulting quantity.
func (s *vendorService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (VendorProduct, error) {
	product, err := s.ownedProduct(ctx, cmd.Actor, cmd.ProductID)
	if err != nil {
		return VendorProduct{}, err
	}

	if cmd.ProductName != nil {
		product.ProductName = *cmd.ProductName
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.Quantity != nil {
		if *cmd.Quantity < 0 {
			return VendorProduct{}, fmt.Errorf("%w: quantity must not be negative", ErrVendorInvalidInput)
		}
		product.Quantity = *cmd.Quantity
	}
	if cmd.Unit != nil {
		product.Unit = *cmd.Unit
	}
	if cmd.PricePerUnit != nil {
		if *cmd.PricePerUnit < 0 {
			return VendorProduct{}, fmt.Errorf("%w: price must not be negative", ErrVendorInvalidInput)
		}
		product.PricePerUnit = *cmd.PricePerUnit
	}
	if cmd.Status != nil {
		product.Status = *cmd.Status
	}
	if cmd.Location != nil {
		product.Location = *cmd.Location
	}
	product.RefreshAvailability()
	product.UpdatedAt = s.now()

	if err := s.products.Update(ctx, product); err != nil {
		return VendorProduct{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *vendorService) DeleteProduct(ctx context.Context, actor Actor, productID string) error {
	if _, err := s.ownedProduct(ctx, actor, productID); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "vendor.product_deleted", map[string]any{"productId": productID})
	return nil
}

// ListProducts returns catalogue entries. MineOnly restricts the listing to
// the caller's own products; procurement browsing defaults to available stock.
func (s *vendorService) ListProducts(ctx context.Context, query ProductListQuery) ([]VendorProduct, error) {
	filter := repositories.ProductListFilter{
		Vendor:        query.Vendor,
		Category:      query.Category,
		AvailableOnly: query.AvailableOnly,
	}
	if query.Category != "" && !query.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrVendorInvalidInput, query.Category)
	}
	if query.MineOnly {
		vendor, err := s.vendors.FindByUserID(ctx, query.Actor.UserID)
		if err != nil {
			if isNotFound(err) {
				return []VendorProduct{}, nil
			}
			return nil, s.mapRepositoryError(err)
		}
		filter.Vendor = vendor.ID
		filter.AvailableOnly = false
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return products, nil
}

func (s *vendorService) ownedProduct(ctx context.Context, actor Actor, productID string) (VendorProduct, error) {
	if productID == "" {
		return VendorProduct{}, fmt.Errorf("%w: product id is required", ErrVendorInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return VendorProduct{}, fmt.Errorf("%w: %v", ErrProductNotFound, err)
		}
		return VendorProduct{}, s.mapRepositoryError(err)
	}
	if actor.Role == "admin" {
		return product, nil
	}
	vendor, err := s.vendors.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return VendorProduct{}, fmt.Errorf("%w: no vendor profile for user", ErrVendorForbidden)
		}
		return VendorProduct{}, s.mapRepositoryError(err)
	}
	if product.Vendor != vendor.ID {
		return VendorProduct{}, fmt.Errorf("%w: product belongs to another vendor", ErrVendorForbidden)
	}
	return product, nil
}

func (s *vendorService) mapRepositoryError(err error) error {
	return mapRepositoryError(err, ErrVendorNotFound, ErrVendorConflict, ErrVendorUnavailable)
}
