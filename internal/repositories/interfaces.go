package repositories

import (
	"context"
	"time"

	"github.com/foodchainx/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// OrderSort names the fields orders can be sorted by.
type OrderSort string

const (
	OrderSortCreatedAt    OrderSort = "createdAt"
	OrderSortTotalAmount  OrderSort = "totalAmount"
	OrderSortPriority     OrderSort = "priority"
	OrderSortExpectedDate OrderSort = "expectedDeliveryDate"
)

// OrderListFilter narrows and orders the order listing.
type OrderListFilter struct {
	CreatedBy string
	Vendor    string
	Status    domain.OrderStatus
	Priority  domain.OrderPriority

	// DueBefore keeps only orders whose expected delivery date falls strictly
	// before the given instant.
	DueBefore *time.Time

	SortBy         OrderSort
	SortDescending bool
}

// OrderRepository persists purchase orders keyed by their order identifier.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	Delete(ctx context.Context, orderID string) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
}

// PaymentListFilter narrows the payment listing.
type PaymentListFilter struct {
	Vendor string
	Status domain.PaymentStatus
}

// PaymentRepository persists settlement records. Documents are keyed by the
// owning order's identifier, enforcing at most one payment per order.
type PaymentRepository interface {
	// Insert creates the payment document transactionally and reports a
	// conflict when a payment for the same order already exists.
	Insert(ctx context.Context, payment domain.Payment) error
	Update(ctx context.Context, payment domain.Payment) error
	FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error)
	// FindByOrderIDs fetches payments for the given orders, skipping orders
	// that have no payment yet.
	FindByOrderIDs(ctx context.Context, orderIDs []string) ([]domain.Payment, error)
	List(ctx context.Context, filter PaymentListFilter) ([]domain.Payment, error)
}

// VendorRepository persists vendor identity records.
type VendorRepository interface {
	Upsert(ctx context.Context, vendor domain.Vendor) error
	FindByID(ctx context.Context, vendorID string) (domain.Vendor, error)
	FindByUserID(ctx context.Context, userID string) (domain.Vendor, error)
	List(ctx context.Context) ([]domain.Vendor, error)
}

// ProductListFilter narrows the product catalogue listing.
type ProductListFilter struct {
	Vendor        string
	Category      domain.ProductCategory
	AvailableOnly bool
}

// VendorProductRepository persists vendor catalogue entries.
type VendorProductRepository interface {
	Insert(ctx context.Context, product domain.VendorProduct) error
	Update(ctx context.Context, product domain.VendorProduct) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.VendorProduct, error)
	List(ctx context.Context, filter ProductListFilter) ([]domain.VendorProduct, error)
}

// InventoryListFilter narrows the inventory listing.
type InventoryListFilter struct {
	Vendor   string
	Status   domain.InventoryStatus
	Category domain.ProductCategory
}

// InventoryRepository persists warehouse stock records.
type InventoryRepository interface {
	Insert(ctx context.Context, item domain.InventoryItem) error
	Update(ctx context.Context, item domain.InventoryItem) error
	Delete(ctx context.Context, itemID string) error
	FindByID(ctx context.Context, itemID string) (domain.InventoryItem, error)
	List(ctx context.Context, filter InventoryListFilter) ([]domain.InventoryItem, error)
}

// HealthRepository verifies connectivity with the backing document store.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
