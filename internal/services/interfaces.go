package services

import (
	"context"
	"time"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Order           = domain.Order
	OrderItem       = domain.OrderItem
	OrderStatus     = domain.OrderStatus
	OrderPriority   = domain.OrderPriority
	Payment         = domain.Payment
	PaymentStatus   = domain.PaymentStatus
	Vendor          = domain.Vendor
	VendorProduct   = domain.VendorProduct
	InventoryItem   = domain.InventoryItem
	ProductCategory = domain.ProductCategory
)

// Actor identifies the authenticated principal invoking an operation.
type Actor struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// NotificationType distinguishes outbound notification kinds.
type NotificationType string

const (
	NotificationWelcome       NotificationType = "welcome"
	NotificationOrderStatus   NotificationType = "order-status"
	NotificationPaymentStatus NotificationType = "payment-status"
)

// NotificationMessage is the payload handed to the notification worker.
type NotificationMessage struct {
	EventID   string           `json:"eventId"`
	Type      NotificationType `json:"type"`
	Recipient string           `json:"recipient"`
	OrderID   string           `json:"orderId,omitempty"`
	Status    string           `json:"status,omitempty"`
	QueuedAt  time.Time        `json:"queuedAt"`
}

// NotificationPublisher publishes notification messages for downstream delivery.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, message NotificationMessage) (string, error)
}

// OrderService encapsulates order lifecycle flows including status transitions.
type OrderService interface {
	Create(ctx context.Context, cmd CreateOrderCommand) (Order, error)
	Get(ctx context.Context, actor Actor, orderID string) (Order, error)
	Update(ctx context.Context, cmd UpdateOrderCommand) (Order, error)
	Delete(ctx context.Context, actor Actor, orderID string) error
	List(ctx context.Context, query OrderListQuery) ([]Order, error)
	UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error)
	BulkUpdateStatus(ctx context.Context, cmd BulkUpdateStatusCommand) (BulkStatusResult, error)
	ListOverdue(ctx context.Context, actor Actor) ([]OverdueOrder, error)
}

// SettlementService drives payment creation, locking and release for orders.
type SettlementService interface {
	ProcessPayment(ctx context.Context, orderID string) (ProcessPaymentResult, error)
	ReleasePayment(ctx context.Context, cmd ReleasePaymentCommand) (Payment, error)
	LockPayment(ctx context.Context, cmd LockPaymentCommand) (Payment, error)
	AutoProcessPayments(ctx context.Context) (AutoProcessResult, error)
	CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (Payment, error)
	UpdatePaymentStatus(ctx context.Context, cmd UpdatePaymentStatusCommand) (Payment, error)
	ListPayments(ctx context.Context, query PaymentListQuery) ([]Payment, error)
}

// StatsService aggregates role-scoped order and payment statistics.
type StatsService interface {
	OrderStats(ctx context.Context, actor Actor) (OrderStats, error)
	PaymentStats(ctx context.Context, actor Actor) (PaymentStats, error)
}

// VendorService manages vendor identity profiles and their product catalogue.
type VendorService interface {
	SaveProfile(ctx context.Context, cmd SaveVendorProfileCommand) (Vendor, error)
	GetProfile(ctx context.Context, actor Actor) (Vendor, error)
	ListVendors(ctx context.Context) ([]Vendor, error)
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (VendorProduct, error)
	UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (VendorProduct, error)
	DeleteProduct(ctx context.Context, actor Actor, productID string) error
	ListProducts(ctx context.Context, query ProductListQuery) ([]VendorProduct, error)
}

// InventoryService manages warehouse stock records.
type InventoryService interface {
	CreateItem(ctx context.Context, cmd CreateInventoryItemCommand) (InventoryItem, error)
	UpdateItem(ctx context.Context, cmd UpdateInventoryItemCommand) (InventoryItem, error)
	DeleteItem(ctx context.Context, itemID string) error
	GetItem(ctx context.Context, itemID string) (InventoryItem, error)
	ListItems(ctx context.Context, query InventoryListQuery) ([]InventoryItem, error)
	Stats(ctx context.Context) (InventoryStats, error)
}

// SystemService reports liveness and readiness of the API and its dependencies.
type SystemService interface {
	Readiness(ctx context.Context) error
}

// CreateOrderCommand captures the payload for placing a new order.
type CreateOrderCommand struct {
	Actor                Actor
	Vendor               string
	Items                []OrderItem
	TotalAmount          int64
	Priority             OrderPriority
	ExpectedDeliveryDate *time.Time
	DeliveryAddress      string
	Notes                string
}

// UpdateOrderCommand patches mutable order fields. Nil pointers leave the
// stored value untouched.
type UpdateOrderCommand struct {
	Actor                Actor
	OrderID              string
	Priority             *OrderPriority
	ExpectedDeliveryDate *time.Time
	DeliveryAddress      *string
	Notes                *string
}

// OrderListQuery filters and orders the role-scoped order listing.
type OrderListQuery struct {
	Actor          Actor
	Status         OrderStatus
	Vendor         string
	Priority       OrderPriority
	SortBy         repositories.OrderSort
	SortDescending bool
}

// UpdateOrderStatusCommand moves an order to a new lifecycle status.
type UpdateOrderStatusCommand struct {
	Actor   Actor
	OrderID string
	Status  OrderStatus
}

// BulkUpdateStatusCommand moves several orders to the same status, isolating
// per-order failures.
type BulkUpdateStatusCommand struct {
	Actor    Actor
	OrderIDs []string
	Status   OrderStatus
}

// BulkStatusFailure records why one order in a bulk command was skipped.
type BulkStatusFailure struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

// BulkStatusResult reports the outcome of a bulk status command.
type BulkStatusResult struct {
	Updated  []Order             `json:"updated"`
	Failures []BulkStatusFailure `json:"failures"`
}

// OverdueOrder pairs an order with how many days past its expected delivery it is.
type OverdueOrder struct {
	Order       Order `json:"order"`
	DaysOverdue int   `json:"daysOverdue"`
}

// ReleasePaymentCommand releases a locked payment to the vendor.
type ReleasePaymentCommand struct {
	Actor   Actor
	OrderID string
	Notes   string
}

// LockPaymentCommand pins an order's settlement in the locked state. A reason
// is stored on the payment notes.
type LockPaymentCommand struct {
	Actor   Actor
	OrderID string
	Reason  string
}

// ProcessPaymentResult reports the outcome of a settlement attempt. Settled is
// false when the order has not been delivered; Payment is nil when no ledger
// record exists for the order.
type ProcessPaymentResult struct {
	Settled bool
	Payment *Payment
}

// CreatePaymentCommand records a settlement ledger entry explicitly.
type CreatePaymentCommand struct {
	Actor              Actor
	OrderID            string
	Amount             int64
	Method             domain.PaymentMethod
	Status             PaymentStatus
	DueDate            *time.Time
	Notes              string
	AutoReleaseEnabled *bool
}

// UpdatePaymentStatusCommand moves a payment to a new settlement status.
type UpdatePaymentStatusCommand struct {
	Actor         Actor
	OrderID       string
	Status        PaymentStatus
	TransactionID string
	Notes         string
}

// PaymentListQuery scopes the payment listing by the caller's role.
type PaymentListQuery struct {
	Actor  Actor
	Status PaymentStatus
}

// AutoProcessResult summarises a settlement sweep over delivered orders.
type AutoProcessResult struct {
	Processed int                 `json:"processed"`
	Skipped   []BulkStatusFailure `json:"skipped"`
}

// OrderStats aggregates role-scoped order figures.
type OrderStats struct {
	TotalOrders  int            `json:"totalOrders"`
	TotalValue   int64          `json:"totalValue"`
	AverageValue int64          `json:"averageValue"`
	StatusCounts map[string]int `json:"statusCounts"`
}

// PaymentStats aggregates role-scoped settlement figures.
type PaymentStats struct {
	TotalPayments int              `json:"totalPayments"`
	TotalAmount   int64            `json:"totalAmount"`
	StatusCounts  map[string]int   `json:"statusCounts"`
	StatusAmounts map[string]int64 `json:"statusAmounts"`
	OverdueCount  int              `json:"overdueCount"`
}

// SaveVendorProfileCommand creates or updates the caller's vendor profile.
type SaveVendorProfileCommand struct {
	Actor            Actor
	BusinessName     string
	OwnerName        string
	BusinessType     string
	Email            string
	Phone            string
	Address          string
	SupplyCategories []string
	OperationalArea  string
	LicenseNumber    string
	YearsInBusiness  int
	AvgCapacity      int
}

// CreateProductCommand lists a new product in the caller's catalogue.
type CreateProductCommand struct {
	Actor                 Actor
	ProductName           string
	Category              ProductCategory
	Description           string
	Quantity              int
	Unit                  string
	PricePerUnit          int64
	MinOrderQuantity      int
	MaxOrderQuantity      int
	HarvestDate           *time.Time
	ExpiryDate            *time.Time
	QualityCertifications []string
	Location              string
	DeliveryOptions       []string
}

// UpdateProductCommand patches a catalogue entry owned by the caller.
type UpdateProductCommand struct {
	Actor        Actor
	ProductID    string
	ProductName  *string
	Description  *string
	Quantity     *int
	Unit         *string
	PricePerUnit *int64
	Status       *domain.ProductStatus
	Location     *string
}

// ProductListQuery filters the product catalogue listing.
type ProductListQuery struct {
	Actor         Actor
	Vendor        string
	Category      ProductCategory
	AvailableOnly bool
	MineOnly      bool
}

// CreateInventoryItemCommand records a new warehouse stock item.
type CreateInventoryItemCommand struct {
	Actor        Actor
	ItemName     string
	Category     ProductCategory
	Quantity     int
	Unit         string
	Vendor       string
	VendorName   string
	MinThreshold int
	MaxCapacity  int
	PricePerUnit int64
	ExpiryDate   *time.Time
	BatchNumber  string
	Location     string
}

// UpdateInventoryItemCommand patches a warehouse stock item.
type UpdateInventoryItemCommand struct {
	Actor        Actor
	ItemID       string
	Quantity     *int
	MinThreshold *int
	MaxCapacity  *int
	PricePerUnit *int64
	ExpiryDate   *time.Time
	BatchNumber  *string
	Location     *string
	Restocked    bool
}

// InventoryListQuery filters the inventory listing.
type InventoryListQuery struct {
	Vendor   string
	Status   domain.InventoryStatus
	Category ProductCategory
}

// InventoryCategoryStats aggregates one category bucket.
type InventoryCategoryStats struct {
	Items      int   `json:"items"`
	Quantity   int   `json:"quantity"`
	TotalValue int64 `json:"totalValue"`
}

// InventoryStats aggregates warehouse stock figures.
type InventoryStats struct {
	TotalItems    int                               `json:"totalItems"`
	TotalValue    int64                             `json:"totalValue"`
	StatusCounts  map[string]int                    `json:"statusCounts"`
	CategoryStats map[string]InventoryCategoryStats `json:"categoryStats"`
}
