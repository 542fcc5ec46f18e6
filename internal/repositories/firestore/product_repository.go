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

const productCollection = "vendorProducts"

// VendorProductRepository persists vendor catalogue entries in Firestore.
type VendorProductRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

// NewVendorProductRepository constructs a Firestore-backed product repository.
func NewVendorProductRepository(provider *pfirestore.Provider) (*VendorProductRepository, error) {
	if provider == nil {
		return nil, errors.New("vendor product repository requires firestore provider")
	}
	return &VendorProductRepository{
		base: pfirestore.NewBaseRepository[productDocument](provider, productCollection),
	}, nil
}

// Insert stores a new product, failing with a conflict when the ID is taken.
func (r *VendorProductRepository) Insert(ctx context.Context, product domain.VendorProduct) error {
	id := strings.TrimSpace(product.ID)
	if id == "" {
		return errors.New("vendor product repository: product id is required")
	}
	ref, err := r.base.DocumentRef(ctx, id)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, encodeProduct(product)); err != nil {
		return pfirestore.WrapError("vendorProducts.insert", err)
	}
	return nil
}

// Update overwrites the stored product.
func (r *VendorProductRepository) Update(ctx context.Context, product domain.VendorProduct) error {
	id := strings.TrimSpace(product.ID)
	if id == "" {
		return errors.New("vendor product repository: product id is required")
	}
	return r.base.Set(ctx, id, encodeProduct(product))
}

// Delete removes the product document.
func (r *VendorProductRepository) Delete(ctx context.Context, productID string) error {
	return r.base.Delete(ctx, productID)
}

// FindByID loads a product by its record ID.
func (r *VendorProductRepository) FindByID(ctx context.Context, productID string) (domain.VendorProduct, error) {
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.VendorProduct{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// List returns products matching the filter ordered by creation time descending.
func (r *VendorProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.VendorProduct, error) {
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if vendor := strings.TrimSpace(filter.Vendor); vendor != "" {
			query = query.Where("vendor", "==", vendor)
		}
		if filter.Category != "" {
			query = query.Where("category", "==", string(filter.Category))
		}
		if filter.AvailableOnly {
			query = query.Where("isAvailable", "==", true)
		}
		return query.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	products := make([]domain.VendorProduct, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Data.toDomain(doc.ID))
	}
	return products, nil
}

type productDocument struct {
	ProductName           string     `firestore:"productName"`
	Category              string     `firestore:"category"`
	Description           string     `firestore:"description,omitempty"`
	Quantity              int        `firestore:"quantity"`
	Unit                  string     `firestore:"unit"`
	PricePerUnit          int64      `firestore:"pricePerUnit"`
	MinOrderQuantity      int        `firestore:"minOrderQuantity,omitempty"`
	MaxOrderQuantity      int        `firestore:"maxOrderQuantity,omitempty"`
	Vendor                string     `firestore:"vendor"`
	VendorName            string     `firestore:"vendorName,omitempty"`
	VendorCompanyName     string     `firestore:"vendorCompanyName,omitempty"`
	IsAvailable           bool       `firestore:"isAvailable"`
	HarvestDate           *time.Time `firestore:"harvestDate,omitempty"`
	ExpiryDate            *time.Time `firestore:"expiryDate,omitempty"`
	QualityCertifications []string   `firestore:"qualityCertifications,omitempty"`
	Location              string     `firestore:"location,omitempty"`
	DeliveryOptions       []string   `firestore:"deliveryOptions,omitempty"`
	Status                string     `firestore:"status"`
	CreatedAt             time.Time  `firestore:"createdAt"`
	UpdatedAt             time.Time  `firestore:"updatedAt"`
}

func encodeProduct(product domain.VendorProduct) productDocument {
	return productDocument{
		ProductName:           strings.TrimSpace(product.ProductName),
		Category:              string(product.Category),
		Description:           product.Description,
		Quantity:              product.Quantity,
		Unit:                  strings.TrimSpace(product.Unit),
		PricePerUnit:          product.PricePerUnit,
		MinOrderQuantity:      product.MinOrderQuantity,
		MaxOrderQuantity:      product.MaxOrderQuantity,
		Vendor:                strings.TrimSpace(product.Vendor),
		VendorName:            strings.TrimSpace(product.VendorName),
		VendorCompanyName:     strings.TrimSpace(product.VendorCompanyName),
		IsAvailable:           product.IsAvailable,
		HarvestDate:           utcTimePtr(product.HarvestDate),
		ExpiryDate:            utcTimePtr(product.ExpiryDate),
		QualityCertifications: product.QualityCertifications,
		Location:              strings.TrimSpace(product.Location),
		DeliveryOptions:       product.DeliveryOptions,
		Status:                string(product.Status),
		CreatedAt:             product.CreatedAt.UTC(),
		UpdatedAt:             product.UpdatedAt.UTC(),
	}
}

func (d productDocument) toDomain(id string) domain.VendorProduct {
	return domain.VendorProduct{
		ID:                    id,
		ProductName:           d.ProductName,
		Category:              domain.ProductCategory(d.Category),
		Description:           d.Description,
		Quantity:              d.Quantity,
		Unit:                  d.Unit,
		PricePerUnit:          d.PricePerUnit,
		MinOrderQuantity:      d.MinOrderQuantity,
		MaxOrderQuantity:      d.MaxOrderQuantity,
		Vendor:                d.Vendor,
		VendorName:            d.VendorName,
		VendorCompanyName:     d.VendorCompanyName,
		IsAvailable:           d.IsAvailable,
		HarvestDate:           d.HarvestDate,
		ExpiryDate:            d.ExpiryDate,
		QualityCertifications: d.QualityCertifications,
		Location:              d.Location,
		DeliveryOptions:       d.DeliveryOptions,
		Status:                domain.ProductStatus(d.Status),
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

// Ensure interface compliance.
var _ repositories.VendorProductRepository = (*VendorProductRepository)(nil)
