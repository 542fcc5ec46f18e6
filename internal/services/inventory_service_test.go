package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/repositories"
)

func newTestInventoryService(t *testing.T, deps InventoryServiceDeps) InventoryService {
	t.Helper()
	if deps.Clock == nil {
		deps.Clock = fixedClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	}
	if deps.NewID == nil {
		deps.NewID = func() string { return "01TESTITEM" }
	}
	svc, err := NewInventoryService(deps)
	if err != nil {
		t.Fatalf("new inventory service: %v", err)
	}
	return svc
}

func TestInventoryCreateItemComputesStatus(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	var inserted domain.InventoryItem
	svc := newTestInventoryService(t, InventoryServiceDeps{
		Inventory: &stubInventoryRepo{
			insertFn: func(_ context.Context, item domain.InventoryItem) error {
				inserted = item
				return nil
			},
		},
		Clock: fixedClock(now),
	})

	item, err := svc.CreateItem(context.Background(), CreateInventoryItemCommand{
		Actor:        Actor{UserID: "user-1"},
		ItemName:     "Whole Wheat Flour",
		Category:     domain.CategoryGrains,
		Quantity:     8,
		Unit:         "kg",
		MinThreshold: 10,
		MaxCapacity:  100,
		PricePerUnit: 450,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Status != domain.InventoryStatusLowStock {
		t.Fatalf("quantity at or below threshold must be low stock, got %s", item.Status)
	}
	if !item.LastRestocked.Equal(now) {
		t.Fatalf("expected restock stamp %v got %v", now, item.LastRestocked)
	}
	if inserted.ID != "01TESTITEM" {
		t.Fatalf("unexpected item id %s", inserted.ID)
	}
}

func TestInventoryCreateItemValidation(t *testing.T) {
	svc := newTestInventoryService(t, InventoryServiceDeps{Inventory: &stubInventoryRepo{}})
	actor := Actor{UserID: "user-1"}

	cases := []struct {
		name string
		cmd  CreateInventoryItemCommand
	}{
		{"missing name", CreateInventoryItemCommand{Actor: actor, Category: domain.CategoryGrains}},
		{"bad category", CreateInventoryItemCommand{Actor: actor, ItemName: "Flour", Category: "Hardware"}},
		{"negative quantity", CreateInventoryItemCommand{Actor: actor, ItemName: "Flour", Category: domain.CategoryGrains, Quantity: -1}},
		{"capacity below threshold", CreateInventoryItemCommand{Actor: actor, ItemName: "Flour", Category: domain.CategoryGrains, MinThreshold: 50, MaxCapacity: 10}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateItem(context.Background(), tc.cmd); !errors.Is(err, ErrInventoryInvalidInput) {
			t.Fatalf("%s: expected invalid input got %v", tc.name, err)
		}
	}
}

func TestInventoryUpdateItemRestockStampsTime(t *testing.T) {
	now := time.Date(2025, 5, 8, 14, 0, 0, 0, time.UTC)
	lastRestocked := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestInventoryService(t, InventoryServiceDeps{
		Inventory: &stubInventoryRepo{
			findFn: func(_ context.Context, id string) (domain.InventoryItem, error) {
				return domain.InventoryItem{ID: id, ItemName: "Flour", Quantity: 5, MinThreshold: 10, LastRestocked: lastRestocked}, nil
			},
		},
		Clock: fixedClock(now),
	})

	higher := 40
	item, err := svc.UpdateItem(context.Background(), UpdateInventoryItemCommand{
		ItemID:   "item-1",
		Quantity: &higher,
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if !item.LastRestocked.Equal(now) {
		t.Fatalf("quantity increase must stamp restock time, got %v", item.LastRestocked)
	}
	if item.Status != domain.InventoryStatusInStock {
		t.Fatalf("expected in stock got %s", item.Status)
	}

	lower := 2
	item, err = svc.UpdateItem(context.Background(), UpdateInventoryItemCommand{
		ItemID:   "item-1",
		Quantity: &lower,
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if !item.LastRestocked.Equal(lastRestocked) {
		t.Fatalf("consumption must not stamp restock time, got %v", item.LastRestocked)
	}
	if item.Status != domain.InventoryStatusLowStock {
		t.Fatalf("expected low stock got %s", item.Status)
	}
}

func TestInventoryGetItemNotFound(t *testing.T) {
	svc := newTestInventoryService(t, InventoryServiceDeps{
		Inventory: &stubInventoryRepo{
			findFn: func(context.Context, string) (domain.InventoryItem, error) {
				return domain.InventoryItem{}, errNotFound()
			},
		},
	})
	if _, err := svc.GetItem(context.Background(), "item-x"); !errors.Is(err, ErrInventoryNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestInventoryStats(t *testing.T) {
	svc := newTestInventoryService(t, InventoryServiceDeps{
		Inventory: &stubInventoryRepo{
			listFn: func(_ context.Context, filter repositories.InventoryListFilter) ([]domain.InventoryItem, error) {
				return []domain.InventoryItem{
					{ID: "1", Category: domain.CategoryGrains, Status: domain.InventoryStatusInStock, Quantity: 10, PricePerUnit: 100},
					{ID: "2", Category: domain.CategoryGrains, Status: domain.InventoryStatusLowStock, Quantity: 2, PricePerUnit: 100},
					{ID: "3", Category: domain.CategoryDairy, Status: domain.InventoryStatusOutOfStock, Quantity: 0, PricePerUnit: 250},
				}, nil
			},
		},
	})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalItems != 3 {
		t.Fatalf("expected 3 items got %d", stats.TotalItems)
	}
	if stats.TotalValue != 1200 {
		t.Fatalf("expected total value 1200 got %d", stats.TotalValue)
	}
	if stats.StatusCounts["Low Stock"] != 1 {
		t.Fatalf("expected 1 low stock got %d", stats.StatusCounts["Low Stock"])
	}
	grains := stats.CategoryStats["Grains"]
	if grains.Items != 2 || grains.Quantity != 12 || grains.TotalValue != 1200 {
		t.Fatalf("unexpected grains bucket %+v", grains)
	}
}
