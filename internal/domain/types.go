package domain

import "time"

// OrderStatus enumerates the lifecycle states of a purchase order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusInTransit  OrderStatus = "In Transit"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every valid order status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusInProgress,
		OrderStatusInTransit,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValid reports whether the status is one of the defined order statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress,
		OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// OrderPriority ranks how urgently an order should be fulfilled.
type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "Low"
	OrderPriorityMedium OrderPriority = "Medium"
	OrderPriorityHigh   OrderPriority = "High"
	OrderPriorityUrgent OrderPriority = "Urgent"
)

// IsValid reports whether the priority is one of the defined values.
func (p OrderPriority) IsValid() bool {
	switch p {
	case OrderPriorityLow, OrderPriorityMedium, OrderPriorityHigh, OrderPriorityUrgent:
		return true
	}
	return false
}

// OrderPaymentStatus summarises settlement progress as seen from the order.
type OrderPaymentStatus string

const (
	OrderPaymentPending   OrderPaymentStatus = "Pending"
	OrderPaymentPartial   OrderPaymentStatus = "Partial"
	OrderPaymentCompleted OrderPaymentStatus = "Completed"
)

// PaymentStatus enumerates settlement states of a payment ledger record.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusLocked   PaymentStatus = "Locked"
	PaymentStatusReleased PaymentStatus = "Released"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

// IsValid reports whether the status is one of the defined payment statuses.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusLocked, PaymentStatusReleased,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentMethod identifies how the obligation is eventually settled.
type PaymentMethod string

const (
	PaymentMethodBankTransfer  PaymentMethod = "Bank Transfer"
	PaymentMethodCheck         PaymentMethod = "Check"
	PaymentMethodDigitalWallet PaymentMethod = "Digital Wallet"
	PaymentMethodCash          PaymentMethod = "Cash"
)

// ProductCategory buckets products, order line items and inventory stock.
type ProductCategory string

const (
	CategoryGrains     ProductCategory = "Grains"
	CategoryVegetables ProductCategory = "Vegetables"
	CategoryDairy      ProductCategory = "Dairy"
	CategoryMeat       ProductCategory = "Meat"
	CategorySpices     ProductCategory = "Spices"
	CategoryFruits     ProductCategory = "Fruits"
)

// IsValid reports whether the category is one of the defined values.
func (c ProductCategory) IsValid() bool {
	switch c {
	case CategoryGrains, CategoryVegetables, CategoryDairy, CategoryMeat, CategorySpices, CategoryFruits:
		return true
	}
	return false
}

// OrderItem is a single priced line on an order. TotalPrice is the line total
// in minor currency units.
type OrderItem struct {
	ItemName     string          `firestore:"itemName" json:"itemName"`
	Category     ProductCategory `firestore:"category" json:"category"`
	Quantity     int             `firestore:"quantity" json:"quantity"`
	Unit         string          `firestore:"unit" json:"unit"`
	PricePerUnit int64           `firestore:"pricePerUnit" json:"pricePerUnit"`
	TotalPrice   int64           `firestore:"totalPrice" json:"totalPrice"`
}

// Order is the purchase transaction placed by a procurement manager against a
// vendor. ID carries the human-readable order identifier (ORD-<epoch>-<suffix>)
// and doubles as the document key; it never changes after creation.
type Order struct {
	ID                   string
	Vendor               string
	VendorName           string
	VendorCompanyName    string
	Items                []OrderItem
	TotalAmount          int64
	Status               OrderStatus
	Priority             OrderPriority
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	DeliveryAddress      string
	Notes                string
	PaymentStatus        OrderPaymentStatus
	CreatedBy            string
	UpdatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ItemsTotal sums the line totals across all items.
func (o Order) ItemsTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	return total
}

// Payment is the settlement ledger record tied one-to-one to an order. ID
// carries the payment identifier (PAY-<epoch>-<suffix>); the backing document
// is keyed by the order ID so the one-payment-per-order invariant holds under
// concurrent creation.
type Payment struct {
	ID                  string
	OrderID             string
	Vendor              string
	VendorName          string
	Amount              int64
	Status              PaymentStatus
	Method              PaymentMethod
	TransactionID       string
	ReleaseDate         *time.Time
	DueDate             time.Time
	Notes               string
	ApprovedBy          string
	ProcessedBy         string
	DeliveryConfirmed   bool
	DeliveryConfirmedAt *time.Time
	AutoReleaseEnabled  bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// VendorContact holds reachable contact points for a vendor.
type VendorContact struct {
	Email string `firestore:"email" json:"email"`
	Phone string `firestore:"phone" json:"phone"`
}

// Vendor is the vendor-identity record linking a platform user to their
// business profile. Orders and payments reference vendors by this record's
// ID, never by the user ID.
type Vendor struct {
	ID               string
	BusinessName     string
	OwnerName        string
	BusinessType     string
	Contact          VendorContact
	Address          string
	SupplyCategories []string
	OperationalArea  string
	LicenseNumber    string
	YearsInBusiness  int
	AvgCapacity      int
	UserID           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DisplayName prefers the owner name, falling back to the business name.
func (v Vendor) DisplayName() string {
	if v.OwnerName != "" {
		return v.OwnerName
	}
	return v.BusinessName
}

// ProductStatus tracks a listed product's availability.
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "Active"
	ProductStatusOutOfStock   ProductStatus = "Out of Stock"
	ProductStatusDiscontinued ProductStatus = "Discontinued"
)

// VendorProduct is an item a vendor offers for procurement.
type VendorProduct struct {
	ID                    string
	ProductName           string
	Category              ProductCategory
	Description           string
	Quantity              int
	Unit                  string
	PricePerUnit          int64
	MinOrderQuantity      int
	MaxOrderQuantity      int
	Vendor                string
	VendorName            string
	VendorCompanyName     string
	IsAvailable           bool
	HarvestDate           *time.Time
	ExpiryDate            *time.Time
	QualityCertifications []string
	Location              string
	DeliveryOptions       []string
	Status                ProductStatus
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RefreshAvailability recomputes status and availability from quantity.
// Discontinued products stay discontinued regardless of stock.
func (p *VendorProduct) RefreshAvailability() {
	if p.Quantity <= 0 {
		p.Status = ProductStatusOutOfStock
		p.IsAvailable = false
		return
	}
	if p.Status != ProductStatusDiscontinued {
		p.Status = ProductStatusActive
		p.IsAvailable = true
	}
}

// InventoryStatus tracks warehouse stock levels for an inventory item.
type InventoryStatus string

const (
	InventoryStatusInStock          InventoryStatus = "In Stock"
	InventoryStatusLowStock         InventoryStatus = "Low Stock"
	InventoryStatusOutOfStock       InventoryStatus = "Out of Stock"
	InventoryStatusAwaitingDelivery InventoryStatus = "Awaiting Delivery"
	InventoryStatusQualityCheck     InventoryStatus = "Quality Check"
)

// InventoryItem is a warehouse stock record sourced from a vendor.
type InventoryItem struct {
	ID            string
	ItemName      string
	Category      ProductCategory
	Quantity      int
	Unit          string
	Vendor        string
	VendorName    string
	Status        InventoryStatus
	MinThreshold  int
	MaxCapacity   int
	PricePerUnit  int64
	ExpiryDate    *time.Time
	BatchNumber   string
	Location      string
	LastRestocked time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RefreshStatus recomputes the stock status from quantity and threshold.
func (i *InventoryItem) RefreshStatus() {
	switch {
	case i.Quantity <= 0:
		i.Status = InventoryStatusOutOfStock
	case i.Quantity <= i.MinThreshold:
		i.Status = InventoryStatusLowStock
	default:
		i.Status = InventoryStatusInStock
	}
}
