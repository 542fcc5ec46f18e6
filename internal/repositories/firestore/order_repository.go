package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/foodchainx/api/internal/domain"
	pfirestore "github.com/foodchainx/api/internal/platform/firestore"
	"github.com/foodchainx/api/internal/repositories"
)

const orderCollection = "orders"

// OrderRepository persists purchase orders in Firestore. Documents are keyed
// by the human-readable order identifier.
type OrderRepository struct {
	provider *pfirestore.Provider
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{provider: provider}, nil
}

// Insert stores a new order, failing with a conflict when the ID is taken.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(order.ID)
	if id == "" {
		return errors.New("order repository: order id is required")
	}
	if _, err := coll.Doc(id).Create(ctx, encodeOrder(order)); err != nil {
		return pfirestore.WrapError("orders.insert", err)
	}
	return nil
}

// Update overwrites the stored order.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(order.ID)
	if id == "" {
		return errors.New("order repository: order id is required")
	}
	if _, err := coll.Doc(id).Set(ctx, encodeOrder(order)); err != nil {
		return pfirestore.WrapError("orders.update", err)
	}
	return nil
}

// Delete removes the order document.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(orderID)
	if id == "" {
		return errors.New("order repository: order id is required")
	}
	if _, err := coll.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return pfirestore.WrapError("orders.delete", err)
	}
	return nil
}

// FindByID loads an order by its identifier.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	id := strings.TrimSpace(orderID)
	if id == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}
	snap, err := coll.Doc(id).Get(ctx)
	if err != nil {
		return domain.Order{}, pfirestore.WrapError("orders.get", err)
	}
	return decodeOrderDocument(snap)
}

// List returns orders matching the filter.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	query := coll.Query
	if createdBy := strings.TrimSpace(filter.CreatedBy); createdBy != "" {
		query = query.Where("createdBy", "==", createdBy)
	}
	if vendor := strings.TrimSpace(filter.Vendor); vendor != "" {
		query = query.Where("vendor", "==", vendor)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if filter.Priority != "" {
		query = query.Where("priority", "==", string(filter.Priority))
	}

	// A range filter forces ordering on the same field.
	if filter.DueBefore != nil {
		query = query.
			Where("expectedDeliveryDate", "<", filter.DueBefore.UTC()).
			OrderBy("expectedDeliveryDate", firestore.Asc)
	} else {
		sortField := string(filter.SortBy)
		if sortField == "" {
			sortField = string(repositories.OrderSortCreatedAt)
		}
		direction := firestore.Asc
		if filter.SortDescending {
			direction = firestore.Desc
		}
		query = query.OrderBy(sortField, direction)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var orders []domain.Order
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("orders.list", err)
		}
		order, err := decodeOrderDocument(snap)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *OrderRepository) collection(ctx context.Context) (*firestore.CollectionRef, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("order repository not initialised")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(orderCollection), nil
}

func decodeOrderDocument(snapshot *firestore.DocumentSnapshot) (domain.Order, error) {
	var doc orderDocument
	if err := snapshot.DataTo(&doc); err != nil {
		return domain.Order{}, fmt.Errorf("decode order %s: %w", snapshot.Ref.ID, err)
	}
	return doc.toDomain(snapshot.Ref.ID), nil
}

type orderDocument struct {
	Vendor               string             `firestore:"vendor"`
	VendorName           string             `firestore:"vendorName,omitempty"`
	VendorCompanyName    string             `firestore:"vendorCompanyName,omitempty"`
	Items                []domain.OrderItem `firestore:"items"`
	TotalAmount          int64              `firestore:"totalAmount"`
	Status               string             `firestore:"status"`
	Priority             string             `firestore:"priority"`
	ExpectedDeliveryDate *time.Time         `firestore:"expectedDeliveryDate,omitempty"`
	ActualDeliveryDate   *time.Time         `firestore:"actualDeliveryDate,omitempty"`
	DeliveryAddress      string             `firestore:"deliveryAddress,omitempty"`
	Notes                string             `firestore:"notes,omitempty"`
	PaymentStatus        string             `firestore:"paymentStatus"`
	CreatedBy            string             `firestore:"createdBy"`
	UpdatedBy            string             `firestore:"updatedBy,omitempty"`
	CreatedAt            time.Time          `firestore:"createdAt"`
	UpdatedAt            time.Time          `firestore:"updatedAt"`
}

func encodeOrder(order domain.Order) orderDocument {
	return orderDocument{
		Vendor:               strings.TrimSpace(order.Vendor),
		VendorName:           strings.TrimSpace(order.VendorName),
		VendorCompanyName:    strings.TrimSpace(order.VendorCompanyName),
		Items:                order.Items,
		TotalAmount:          order.TotalAmount,
		Status:               string(order.Status),
		Priority:             string(order.Priority),
		ExpectedDeliveryDate: utcTimePtr(order.ExpectedDeliveryDate),
		ActualDeliveryDate:   utcTimePtr(order.ActualDeliveryDate),
		DeliveryAddress:      strings.TrimSpace(order.DeliveryAddress),
		Notes:                order.Notes,
		PaymentStatus:        string(order.PaymentStatus),
		CreatedBy:            strings.TrimSpace(order.CreatedBy),
		UpdatedBy:            strings.TrimSpace(order.UpdatedBy),
		CreatedAt:            order.CreatedAt.UTC(),
		UpdatedAt:            order.UpdatedAt.UTC(),
	}
}

func (d orderDocument) toDomain(id string) domain.Order {
	return domain.Order{
		ID:                   id,
		Vendor:               d.Vendor,
		VendorName:           d.VendorName,
		VendorCompanyName:    d.VendorCompanyName,
		Items:                d.Items,
		TotalAmount:          d.TotalAmount,
		Status:               domain.OrderStatus(d.Status),
		Priority:             domain.OrderPriority(d.Priority),
		ExpectedDeliveryDate: d.ExpectedDeliveryDate,
		ActualDeliveryDate:   d.ActualDeliveryDate,
		DeliveryAddress:      d.DeliveryAddress,
		Notes:                d.Notes,
		PaymentStatus:        domain.OrderPaymentStatus(d.PaymentStatus),
		CreatedBy:            d.CreatedBy,
		UpdatedBy:            d.UpdatedBy,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func utcTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// Ensure interface compliance.
var _ repositories.OrderRepository = (*OrderRepository)(nil)
