package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/foodchainx/api/internal/domain"
	pfirestore "github.com/foodchainx/api/internal/platform/firestore"
	"github.com/foodchainx/api/internal/repositories"
)

const paymentCollection = "payments"

// PaymentRepository persists settlement records in Firestore. Documents are
// keyed by the owning order's identifier so at most one payment can exist per
// order, even under concurrent creation.
type PaymentRepository struct {
	provider *pfirestore.Provider
}

// NewPaymentRepository constructs a Firestore-backed payment repository.
func NewPaymentRepository(provider *pfirestore.Provider) (*PaymentRepository, error) {
	if provider == nil {
		return nil, errors.New("payment repository requires firestore provider")
	}
	return &PaymentRepository{provider: provider}, nil
}

// Insert creates the payment document transactionally, re-checking existence
// so a concurrent insert for the same order surfaces as a conflict.
func (r *PaymentRepository) Insert(ctx context.Context, payment domain.Payment) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	orderID := strings.TrimSpace(payment.OrderID)
	if orderID == "" {
		return errors.New("payment repository: order id is required")
	}

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docRef := coll.Doc(orderID)
		snap, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if snap != nil && snap.Exists() {
			return status.Error(codes.AlreadyExists, "payment already exists for order")
		}
		return tx.Create(docRef, encodePayment(payment))
	})
	if err != nil {
		return pfirestore.WrapError("payments.insert", err)
	}
	return nil
}

// Update overwrites the stored payment.
func (r *PaymentRepository) Update(ctx context.Context, payment domain.Payment) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	orderID := strings.TrimSpace(payment.OrderID)
	if orderID == "" {
		return errors.New("payment repository: order id is required")
	}
	if _, err := coll.Doc(orderID).Set(ctx, encodePayment(payment)); err != nil {
		return pfirestore.WrapError("payments.update", err)
	}
	return nil
}

// FindByOrderID loads the payment record tied to the given order.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return domain.Payment{}, err
	}
	id := strings.TrimSpace(orderID)
	if id == "" {
		return domain.Payment{}, errors.New("payment repository: order id is required")
	}
	snap, err := coll.Doc(id).Get(ctx)
	if err != nil {
		return domain.Payment{}, pfirestore.WrapError("payments.get", err)
	}
	return decodePaymentDocument(snap)
}

// FindByOrderIDs fetches payments for the given orders in one round trip,
// skipping orders that have no payment yet.
func (r *PaymentRepository) FindByOrderIDs(ctx context.Context, orderIDs []string) ([]domain.Payment, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}

	refs := make([]*firestore.DocumentRef, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		id := strings.TrimSpace(orderID)
		if id == "" {
			continue
		}
		refs = append(refs, coll.Doc(id))
	}
	if len(refs) == 0 {
		return nil, nil
	}

	snaps, err := client.GetAll(ctx, refs)
	if err != nil {
		return nil, pfirestore.WrapError("payments.get_all", err)
	}

	payments := make([]domain.Payment, 0, len(snaps))
	for _, snap := range snaps {
		if snap == nil || !snap.Exists() {
			continue
		}
		payment, err := decodePaymentDocument(snap)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

// List returns payments matching the filter ordered by creation time descending.
func (r *PaymentRepository) List(ctx context.Context, filter repositories.PaymentListFilter) ([]domain.Payment, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	query := coll.Query
	if vendor := strings.TrimSpace(filter.Vendor); vendor != "" {
		query = query.Where("vendor", "==", vendor)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var payments []domain.Payment
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("payments.list", err)
		}
		payment, err := decodePaymentDocument(snap)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func (r *PaymentRepository) collection(ctx context.Context) (*firestore.CollectionRef, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("payment repository not initialised")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(paymentCollection), nil
}

func decodePaymentDocument(snapshot *firestore.DocumentSnapshot) (domain.Payment, error) {
	var doc paymentDocument
	if err := snapshot.DataTo(&doc); err != nil {
		return domain.Payment{}, fmt.Errorf("decode payment %s: %w", snapshot.Ref.ID, err)
	}
	return doc.toDomain(snapshot.Ref.ID), nil
}

type paymentDocument struct {
	PaymentID           string     `firestore:"paymentId"`
	Vendor              string     `firestore:"vendor"`
	VendorName          string     `firestore:"vendorName,omitempty"`
	Amount              int64      `firestore:"amount"`
	Status              string     `firestore:"status"`
	Method              string     `firestore:"paymentMethod,omitempty"`
	TransactionID       string     `firestore:"transactionId,omitempty"`
	ReleaseDate         *time.Time `firestore:"releaseDate,omitempty"`
	DueDate             time.Time  `firestore:"dueDate"`
	Notes               string     `firestore:"notes,omitempty"`
	ApprovedBy          string     `firestore:"approvedBy,omitempty"`
	ProcessedBy         string     `firestore:"processedBy,omitempty"`
	DeliveryConfirmed   bool       `firestore:"deliveryConfirmed"`
	DeliveryConfirmedAt *time.Time `firestore:"deliveryConfirmedAt,omitempty"`
	AutoReleaseEnabled  bool       `firestore:"autoReleaseEnabled"`
	CreatedAt           time.Time  `firestore:"createdAt"`
	UpdatedAt           time.Time  `firestore:"updatedAt"`
}

func encodePayment(payment domain.Payment) paymentDocument {
	return paymentDocument{
		PaymentID:           strings.TrimSpace(payment.ID),
		Vendor:              strings.TrimSpace(payment.Vendor),
		VendorName:          strings.TrimSpace(payment.VendorName),
		Amount:              payment.Amount,
		Status:              string(payment.Status),
		Method:              string(payment.Method),
		TransactionID:       strings.TrimSpace(payment.TransactionID),
		ReleaseDate:         utcTimePtr(payment.ReleaseDate),
		DueDate:             payment.DueDate.UTC(),
		Notes:               payment.Notes,
		ApprovedBy:          strings.TrimSpace(payment.ApprovedBy),
		ProcessedBy:         strings.TrimSpace(payment.ProcessedBy),
		DeliveryConfirmed:   payment.DeliveryConfirmed,
		DeliveryConfirmedAt: utcTimePtr(payment.DeliveryConfirmedAt),
		AutoReleaseEnabled:  payment.AutoReleaseEnabled,
		CreatedAt:           payment.CreatedAt.UTC(),
		UpdatedAt:           payment.UpdatedAt.UTC(),
	}
}

func (d paymentDocument) toDomain(orderID string) domain.Payment {
	return domain.Payment{
		ID:                  d.PaymentID,
		OrderID:             orderID,
		Vendor:              d.Vendor,
		VendorName:          d.VendorName,
		Amount:              d.Amount,
		Status:              domain.PaymentStatus(d.Status),
		Method:              domain.PaymentMethod(d.Method),
		TransactionID:       d.TransactionID,
		ReleaseDate:         d.ReleaseDate,
		DueDate:             d.DueDate,
		Notes:               d.Notes,
		ApprovedBy:          d.ApprovedBy,
		ProcessedBy:         d.ProcessedBy,
		DeliveryConfirmed:   d.DeliveryConfirmed,
		DeliveryConfirmedAt: d.DeliveryConfirmedAt,
		AutoReleaseEnabled:  d.AutoReleaseEnabled,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// Ensure interface compliance.
var _ repositories.PaymentRepository = (*PaymentRepository)(nil)
