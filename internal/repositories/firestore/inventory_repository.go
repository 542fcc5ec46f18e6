package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/foodchainx/api/internal/domain"
	pfirestore "github.com/foodchainx/api/internal/platform/firestore"
	"github.com/foodchainx/api/internal/repositories"
)

const inventoryCollection = "inventory"

// InventoryRepository persists warehouse stock records in Firestore.
type InventoryRepository struct {
	base *pfirestore.BaseRepository[inventoryDocument]
}

// NewInventoryRepository constructs a Firestore-backed inventory repository.
func NewInventoryRepository(provider *pfirestore.Provider) (*InventoryRepository, error) {
	if provider == nil {
		return nil, errors.New("inventory repository requires firestore provider")
	}
	return &InventoryRepository{
		base: pfirestore.NewBaseRepository[inventoryDocument](provider, inventoryCollection),
	}, nil
}

// Insert stores a new inventory item, failing with a conflict when the ID is taken.
func (r *InventoryRepository) Insert(ctx context.Context, item domain.InventoryItem) error {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return errors.New("inventory repository: item id is required")
	}
	ref, err := r.base.DocumentRef(ctx, id)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, encodeInventoryItem(item)); err != nil {
		return pfirestore.WrapError("inventory.insert", err)
	}
	return nil
}

// Update overwrites the stored item.
func (r *InventoryRepository) Update(ctx context.Context, item domain.InventoryItem) error {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return errors.New("inventory repository: item id is required")
	}
	return r.base.Set(ctx, id, encodeInventoryItem(item))
}

// Delete removes the inventory document.
func (r *InventoryRepository) Delete(ctx context.Context, itemID string) error {
	return r.base.Delete(ctx, itemID)
}

// FindByID loads an item by its record ID.
func (r *InventoryRepository) FindByID(ctx context.Context, itemID string) (domain.InventoryItem, error) {
	doc, err := r.base.Get(ctx, itemID)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// List returns items matching the filter ordered by item name.
func (r *InventoryRepository) List(ctx context.Context, filter repositories.InventoryListFilter) ([]domain.InventoryItem, error) {
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if vendor := strings.TrimSpace(filter.Vendor); vendor != "" {
			query = query.Where("vendor", "==", vendor)
		}
		if filter.Status != "" {
			query = query.Where("status", "==", string(filter.Status))
		}
		if filter.Category != "" {
			query = query.Where("category", "==", string(filter.Category))
		}
		return query.OrderBy("itemName", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	items := make([]domain.InventoryItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Data.toDomain(doc.ID))
	}
	return items, nil
}

type inventoryDocument struct {
	ItemName      string     `firestore:"itemName"`
	Category      string     `firestore:"category"`
	Quantity      int        `firestore:"quantity"`
	Unit          string     `firestore:"unit"`
	Vendor        string     `firestore:"vendor,omitempty"`
	VendorName    string     `firestore:"vendorName,omitempty"`
	Status        string     `firestore:"status"`
	MinThreshold  int        `firestore:"minThreshold,omitempty"`
	MaxCapacity   int        `firestore:"maxCapacity,omitempty"`
	PricePerUnit  int64      `firestore:"pricePerUnit,omitempty"`
	ExpiryDate    *time.Time `firestore:"expiryDate,omitempty"`
	BatchNumber   string     `firestore:"batchNumber,omitempty"`
	Location      string     `firestore:"location,omitempty"`
	LastRestocked time.Time  `firestore:"lastRestocked"`
	CreatedAt     time.Time  `firestore:"createdAt"`
	UpdatedAt     time.Time  `firestore:"updatedAt"`
}

func encodeInventoryItem(item domain.InventoryItem) inventoryDocument {
	return inventoryDocument{
		ItemName:      strings.TrimSpace(item.ItemName),
		Category:      string(item.Category),
		Quantity:      item.Quantity,
		Unit:          strings.TrimSpace(item.Unit),
		Vendor:        strings.TrimSpace(item.Vendor),
		VendorName:    strings.TrimSpace(item.VendorName),
		Status:        string(item.Status),
		MinThreshold:  item.MinThreshold,
		MaxCapacity:   item.MaxCapacity,
		PricePerUnit:  item.PricePerUnit,
		ExpiryDate:    utcTimePtr(item.ExpiryDate),
		BatchNumber:   strings.TrimSpace(item.BatchNumber),
		Location:      strings.TrimSpace(item.Location),
		LastRestocked: item.LastRestocked.UTC(),
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
}

func (d inventoryDocument) toDomain(id string) domain.InventoryItem {
	return domain.InventoryItem{
		ID:            id,
		ItemName:      d.ItemName,
		Category:      domain.ProductCategory(d.Category),
		Quantity:      d.Quantity,
		Unit:          d.Unit,
		Vendor:        d.Vendor,
		VendorName:    d.VendorName,
		Status:        domain.InventoryStatus(d.Status),
		MinThreshold:  d.MinThreshold,
		MaxCapacity:   d.MaxCapacity,
		PricePerUnit:  d.PricePerUnit,
		ExpiryDate:    d.ExpiryDate,
		BatchNumber:   d.BatchNumber,
		Location:      d.Location,
		LastRestocked: d.LastRestocked,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// Ensure interface compliance.
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)
