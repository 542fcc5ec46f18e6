package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/foodchainx/api/internal/repositories"
)

var (
	// ErrInventoryInvalidInput indicates the command failed validation.
	ErrInventoryInvalidInput = errors.New("inventory: invalid input")
	// ErrInventoryNotFound indicates the stock item does not exist.
	ErrInventoryNotFound = errors.New("inventory: not found")
	// ErrInventoryConflict indicates a concurrent modification clashed.
	ErrInventoryConflict = errors.New("inventory: conflict")
	// ErrInventoryUnavailable indicates the backing store could not serve the request.
	ErrInventoryUnavailable = errors.New("inventory: storage unavailable")
)

// InventoryServiceDeps lists collaborators required by NewInventoryService.
type InventoryServiceDeps struct {
	Inventory repositories.InventoryRepository

	Clock  func() time.Time
	NewID  func() string
	Logger func(ctx context.Context, event string, fields map[string]any)
}

type inventoryService struct {
	inventory repositories.InventoryRepository

	clock  func() time.Time
	newID  func() string
	logger func(ctx context.Context, event string, fields map[string]any)
}

// NewInventoryService validates dependencies and builds the inventory service.
func NewInventoryService(deps InventoryServiceDeps) (InventoryService, error) {
	if deps.Inventory == nil {
		return nil, errors.New("inventory service: inventory repository is required")
	}
	svc := &inventoryService{
		inventory: deps.Inventory,
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

func (s *inventoryService) now() time.Time {
	return s.clock().UTC()
}

func (s *inventoryService) CreateItem(ctx context.Context, cmd CreateInventoryItemCommand) (InventoryItem, error) {
	if cmd.ItemName == "" {
		return InventoryItem{}, fmt.Errorf("%w: item name is required", ErrInventoryInvalidInput)
	}
	if !cmd.Category.IsValid() {
		return InventoryItem{}, fmt.Errorf("%w: unknown category %q", ErrInventoryInvalidInput, cmd.Category)
	}
	if cmd.Quantity < 0 {
		return InventoryItem{}, fmt.Errorf("%w: quantity must not be negative", ErrInventoryInvalidInput)
	}
	if cmd.MinThreshold < 0 {
		return InventoryItem{}, fmt.Errorf("%w: minimum threshold must not be negative", ErrInventoryInvalidInput)
	}
	if cmd.MaxCapacity > 0 && cmd.MaxCapacity < cmd.MinThreshold {
		return InventoryItem{}, fmt.Errorf("%w: maximum capacity below minimum threshold", ErrInventoryInvalidInput)
	}

	now := s.now()
	item := InventoryItem{
		ID:            s.newID(),
		ItemName:      cmd.ItemName,
		Category:      cmd.Category,
		Quantity:      cmd.Quantity,
		Unit:          cmd.Unit,
		Vendor:        cmd.Vendor,
		VendorName:    cmd.VendorName,
		MinThreshold:  cmd.MinThreshold,
		MaxCapacity:   cmd.MaxCapacity,
		PricePerUnit:  cmd.PricePerUnit,
		ExpiryDate:    utcPtr(cmd.ExpiryDate),
		BatchNumber:   cmd.BatchNumber,
		Location:      cmd.Location,
		LastRestocked: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	item.RefreshStatus()

	if err := s.inventory.Insert(ctx, item); err != nil {
		return InventoryItem{}, s.mapRepositoryError(err)
	}
	s.logger(ctx, "inventory.item_created", map[string]any{
		"itemId":   item.ID,
		"itemName": item.ItemName,
	})
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, cmd UpdateInventoryItemCommand) (InventoryItem, error) {
	if cmd.ItemID == "" {
		return InventoryItem{}, fmt.Errorf("%w: item id is required", ErrInventoryInvalidInput)
	}
	item, err := s.inventory.FindByID(ctx, cmd.ItemID)
	if err != nil {
		return InventoryItem{}, s.mapRepositoryError(err)
	}

	now := s.now()
	if cmd.Quantity != nil {
		if *cmd.Quantity < 0 {
			return InventoryItem{}, fmt.Errorf("%w: quantity must not be negative", ErrInventoryInvalidInput)
		}
		if *cmd.Quantity > item.Quantity || cmd.Restocked {
			item.LastRestocked = now
		}
		item.Quantity = *cmd.Quantity
	}
	if cmd.MinThreshold != nil {
		if *cmd.MinThreshold < 0 {
			return InventoryItem{}, fmt.Errorf("%w: minimum threshold must not be negative", ErrInventoryInvalidInput)
		}
		item.MinThreshold = *cmd.MinThreshold
	}
	if cmd.MaxCapacity != nil {
		item.MaxCapacity = *cmd.MaxCapacity
	}
	if cmd.PricePerUnit != nil {
		item.PricePerUnit = *cmd.PricePerUnit
	}
	if cmd.ExpiryDate != nil {
		item.ExpiryDate = utcPtr(cmd.ExpiryDate)
	}
	if cmd.BatchNumber != nil {
		item.BatchNumber = *cmd.BatchNumber
	}
	if cmd.Location != nil {
		item.Location = *cmd.Location
	}
	item.RefreshStatus()
	item.UpdatedAt = now

	if err := s.inventory.Update(ctx, item); err != nil {
		return InventoryItem{}, s.mapRepositoryError(err)
	}
	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return fmt.Errorf("%w: item id is required", ErrInventoryInvalidInput)
	}
	if err := s.inventory.Delete(ctx, itemID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "inventory.item_deleted", map[string]any{"itemId": itemID})
	return nil
}

func (s *inventoryService) GetItem(ctx context.Context, itemID string) (InventoryItem, error) {
	if itemID == "" {
		return InventoryItem{}, fmt.Errorf("%w: item id is required", ErrInventoryInvalidInput)
	}
	item, err := s.inventory.FindByID(ctx, itemID)
	if err != nil {
		return InventoryItem{}, s.mapRepositoryError(err)
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, query InventoryListQuery) ([]InventoryItem, error) {
	if query.Category != "" && !query.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInventoryInvalidInput, query.Category)
	}
	items, err := s.inventory.List(ctx, repositories.InventoryListFilter{
		Vendor:   query.Vendor,
		Status:   query.Status,
		Category: query.Category,
	})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return items, nil
}

// Stats aggregates stock figures in memory across the whole inventory.
func (s *inventoryService) Stats(ctx context.Context) (InventoryStats, error) {
	items, err := s.inventory.List(ctx, repositories.InventoryListFilter{})
	if err != nil {
		return InventoryStats{}, s.mapRepositoryError(err)
	}

	stats := InventoryStats{
		StatusCounts:  map[string]int{},
		CategoryStats: map[string]InventoryCategoryStats{},
	}
	for _, item := range items {
		value := int64(item.Quantity) * item.PricePerUnit
		stats.TotalItems++
		stats.TotalValue += value
		stats.StatusCounts[string(item.Status)]++

		bucket := stats.CategoryStats[string(item.Category)]
		bucket.Items++
		bucket.Quantity += item.Quantity
		bucket.TotalValue += value
		stats.CategoryStats[string(item.Category)] = bucket
	}
	return stats, nil
}

func (s *inventoryService) mapRepositoryError(err error) error {
	return mapRepositoryError(err, ErrInventoryNotFound, ErrInventoryConflict, ErrInventoryUnavailable)
}
