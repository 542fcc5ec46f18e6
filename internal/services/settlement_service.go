package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/repositories"
)

var (
	// ErrPaymentInvalidInput indicates the command failed validation.
	ErrPaymentInvalidInput = errors.New("payment: invalid input")
	// ErrPaymentNotFound indicates no payment exists for the order.
	ErrPaymentNotFound = errors.New("payment: not found")
	// ErrPaymentInvalidState indicates the settlement transition is not allowed.
	ErrPaymentInvalidState = errors.New("payment: invalid state")
	// ErrPaymentConflict indicates a concurrent modification clashed.
	ErrPaymentConflict = errors.New("payment: conflict")
	// ErrPaymentUnavailable indicates the backing store could not serve the request.
	ErrPaymentUnavailable = errors.New("payment: storage unavailable")
)

// settlementDueWindow is how long after creation a payment falls due.
const settlementDueWindow = 30 * 24 * time.Hour

// SettlementServiceDeps lists collaborators required by NewSettlementService.
type SettlementServiceDeps struct {
	Payments  repositories.PaymentRepository
	Orders    repositories.OrderRepository
	Vendors   repositories.VendorRepository
	Publisher NotificationPublisher

	Clock        func() time.Time
	NewPaymentID func(now time.Time) string
	Logger       func(ctx context.Context, event string, fields map[string]any)
}

type settlementService struct {
	payments  repositories.PaymentRepository
	orders    repositories.OrderRepository
	vendors   repositories.VendorRepository
	publisher NotificationPublisher

	clock        func() time.Time
	newPaymentID func(now time.Time) string
	logger       func(ctx context.Context, event string, fields map[string]any)
}

// NewSettlementService validates dependencies and builds the settlement service.
func NewSettlementService(deps SettlementServiceDeps) (SettlementService, error) {
	if deps.Payments == nil {
		return nil, errors.New("settlement service: payment repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("settlement service: order repository is required")
	}
	if deps.Vendors == nil {
		return nil, errors.New("settlement service: vendor repository is required")
	}
	svc := &settlementService{
		payments:     deps.Payments,
		orders:       deps.Orders,
		vendors:      deps.Vendors,
		publisher:    deps.Publisher,
		clock:        deps.Clock,
		newPaymentID: deps.NewPaymentID,
		logger:       deps.Logger,
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	if svc.newPaymentID == nil {
		svc.newPaymentID = domain.NewPaymentID
	}
	if svc.logger == nil {
		svc.logger = func(context.Context, string, map[string]any) {}
	}
	return svc, nil
}

func (s *settlementService) now() time.Time {
	return s.clock().UTC()
}

// ProcessPayment settles the order's payment according to delivery state. For
// a delivered order the payment is released, created pre-released when
// missing. For an undelivered order nothing is created and an existing
// payment is forced back to Locked; the result is not settled. The operation
// is idempotent.
func (s *settlementService) ProcessPayment(ctx context.Context, orderID string) (ProcessPaymentResult, error) {
	if orderID == "" {
		return ProcessPaymentResult{}, fmt.Errorf("%w: order id is required", ErrPaymentInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return ProcessPaymentResult{}, s.mapRepositoryError(err)
	}

	payment, err := s.payments.FindByOrderID(ctx, orderID)
	exists := err == nil
	if err != nil && !isNotFound(err) {
		return ProcessPaymentResult{}, s.mapRepositoryError(err)
	}

	if order.Status != domain.OrderStatusDelivered {
		if !exists {
			return ProcessPaymentResult{}, nil
		}
		// A payment must never sit Released while its order is undelivered.
		if payment.Status != domain.PaymentStatusLocked {
			payment.Status = domain.PaymentStatusLocked
			payment.UpdatedAt = s.now()
			if err := s.payments.Update(ctx, payment); err != nil {
				return ProcessPaymentResult{}, s.mapRepositoryError(err)
			}
		}
		return ProcessPaymentResult{Payment: &payment}, nil
	}

	if !exists {
		created, fresh, err := s.createForOrder(ctx, order, domain.PaymentStatusReleased, "")
		if err != nil {
			return ProcessPaymentResult{}, err
		}
		payment = created
		if fresh {
			s.settleOrder(ctx, order, payment.UpdatedAt)
			s.logger(ctx, "payment.released", map[string]any{
				"orderId":   payment.OrderID,
				"paymentId": payment.ID,
				"amount":    payment.Amount,
			})
			s.publishPaymentStatus(ctx, payment)
			return ProcessPaymentResult{Settled: true, Payment: &payment}, nil
		}
	}
	if payment.Status != domain.PaymentStatusReleased {
		payment, err = s.release(ctx, order, payment, "system")
		if err != nil {
			return ProcessPaymentResult{}, err
		}
	}
	return ProcessPaymentResult{Settled: true, Payment: &payment}, nil
}

// createForOrder inserts a payment derived from the order. The returned bool
// reports whether this call created the record; on an insert race the winning
// record is returned instead.
func (s *settlementService) createForOrder(ctx context.Context, order Order, status domain.PaymentStatus, notes string) (Payment, bool, error) {
	now := s.now()
	payment := Payment{
		ID:                 s.newPaymentID(now),
		OrderID:            order.ID,
		Vendor:             order.Vendor,
		VendorName:         order.VendorName,
		Amount:             order.TotalAmount,
		Status:             status,
		Method:             domain.PaymentMethodBankTransfer,
		DueDate:            now.Add(settlementDueWindow),
		Notes:              notes,
		AutoReleaseEnabled: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if status == domain.PaymentStatusReleased {
		confirmedAt := now
		if order.ActualDeliveryDate != nil {
			confirmedAt = order.ActualDeliveryDate.UTC()
		}
		payment.ReleaseDate = &now
		payment.DeliveryConfirmed = true
		payment.DeliveryConfirmedAt = &confirmedAt
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		// A concurrent caller won the race; use their record.
		if isConflict(err) {
			existing, findErr := s.payments.FindByOrderID(ctx, order.ID)
			if findErr != nil {
				return Payment{}, false, s.mapRepositoryError(findErr)
			}
			return existing, false, nil
		}
		return Payment{}, false, s.mapRepositoryError(err)
	}
	s.logger(ctx, "payment.created", map[string]any{
		"orderId":   order.ID,
		"paymentId": payment.ID,
		"status":    string(payment.Status),
		"amount":    payment.Amount,
	})
	return payment, true, nil
}

// ReleasePayment hands the funds for an order to the vendor, creating the
// ledger record first when the delivery-triggered settlement never ran.
// Releasing an already released payment is a no-op; only a refunded payment
// refuses release.
func (s *settlementService) ReleasePayment(ctx context.Context, cmd ReleasePaymentCommand) (Payment, error) {
	if cmd.OrderID == "" {
		return Payment{}, fmt.Errorf("%w: order id is required", ErrPaymentInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}

	payment, err := s.payments.FindByOrderID(ctx, cmd.OrderID)
	switch {
	case err == nil:
	case isNotFound(err):
		payment, _, err = s.createForOrder(ctx, order, domain.PaymentStatusLocked, "")
		if err != nil {
			return Payment{}, err
		}
	default:
		return Payment{}, s.mapRepositoryError(err)
	}

	if payment.Status == domain.PaymentStatusReleased {
		return payment, nil
	}
	if payment.Status == domain.PaymentStatusRefunded {
		return Payment{}, fmt.Errorf("%w: cannot release a refunded payment", ErrPaymentInvalidState)
	}
	if cmd.Notes != "" {
		payment.Notes = cmd.Notes
	}
	return s.release(ctx, order, payment, cmd.Actor.UserID)
}

func (s *settlementService) release(ctx context.Context, order Order, payment Payment, approvedBy string) (Payment, error) {
	now := s.now()
	payment.Status = domain.PaymentStatusReleased
	payment.ReleaseDate = &now
	payment.DeliveryConfirmed = true
	payment.DeliveryConfirmedAt = &now
	payment.ApprovedBy = approvedBy
	payment.UpdatedAt = now

	if err := s.payments.Update(ctx, payment); err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}

	s.settleOrder(ctx, order, now)
	s.logger(ctx, "payment.released", map[string]any{
		"orderId":   payment.OrderID,
		"paymentId": payment.ID,
		"amount":    payment.Amount,
	})
	s.publishPaymentStatus(ctx, payment)
	return payment, nil
}

// settleOrder marks the order's payment progress complete. A sync failure is
// logged, not surfaced; the released payment is already durable.
func (s *settlementService) settleOrder(ctx context.Context, order Order, now time.Time) {
	if order.PaymentStatus == domain.OrderPaymentCompleted {
		return
	}
	order.PaymentStatus = domain.OrderPaymentCompleted
	order.UpdatedAt = now
	if err := s.orders.Update(ctx, order); err != nil {
		s.logger(ctx, "payment.order_sync_failed", map[string]any{
			"orderId": order.ID,
			"error":   err.Error(),
		})
	}
}

// LockPayment pins the order's settlement in the locked state regardless of
// its current status, creating the record when missing. A reason overwrites
// the payment notes.
func (s *settlementService) LockPayment(ctx context.Context, cmd LockPaymentCommand) (Payment, error) {
	if cmd.OrderID == "" {
		return Payment{}, fmt.Errorf("%w: order id is required", ErrPaymentInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}

	payment, err := s.payments.FindByOrderID(ctx, cmd.OrderID)
	switch {
	case err == nil:
	case isNotFound(err):
		created, fresh, cerr := s.createForOrder(ctx, order, domain.PaymentStatusLocked, cmd.Reason)
		if cerr != nil {
			return Payment{}, cerr
		}
		if fresh {
			return created, nil
		}
		payment = created
	default:
		return Payment{}, s.mapRepositoryError(err)
	}

	if payment.Status == domain.PaymentStatusLocked && cmd.Reason == "" {
		return payment, nil
	}
	payment.Status = domain.PaymentStatusLocked
	if cmd.Reason != "" {
		payment.Notes = cmd.Reason
	}
	payment.UpdatedAt = s.now()
	if err := s.payments.Update(ctx, payment); err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}
	s.logger(ctx, "payment.locked", map[string]any{
		"orderId":   payment.OrderID,
		"paymentId": payment.ID,
		"reason":    cmd.Reason,
	})
	return payment, nil
}

// AutoProcessPayments sweeps delivered orders with a stamped delivery date and
// settles any payment that is missing or still locked. Failures are reported
// per order, never aborting the sweep.
func (s *settlementService) AutoProcessPayments(ctx context.Context) (AutoProcessResult, error) {
	orders, err := s.orders.List(ctx, repositories.OrderListFilter{Status: domain.OrderStatusDelivered})
	if err != nil {
		return AutoProcessResult{}, s.mapRepositoryError(err)
	}

	result := AutoProcessResult{Skipped: []BulkStatusFailure{}}
	for _, order := range orders {
		if order.ActualDeliveryDate == nil {
			continue
		}
		if _, err := s.ProcessPayment(ctx, order.ID); err != nil {
			s.logger(ctx, "payment.auto_process_failed", map[string]any{
				"orderId": order.ID,
				"error":   err.Error(),
			})
			result.Skipped = append(result.Skipped, BulkStatusFailure{OrderID: order.ID, Reason: err.Error()})
			continue
		}
		result.Processed++
	}
	return result, nil
}

// CreatePayment records a settlement ledger entry explicitly, defaulting the
// amount and schedule from the order.
func (s *settlementService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (Payment, error) {
	if cmd.OrderID == "" {
		return Payment{}, fmt.Errorf("%w: order id is required", ErrPaymentInvalidInput)
	}
	if cmd.Amount < 0 {
		return Payment{}, fmt.Errorf("%w: amount must not be negative", ErrPaymentInvalidInput)
	}
	status := cmd.Status
	if status == "" {
		status = domain.PaymentStatusLocked
	}
	if !status.IsValid() {
		return Payment{}, fmt.Errorf("%w: unknown status %q", ErrPaymentInvalidInput, status)
	}
	method := cmd.Method
	if method == "" {
		method = domain.PaymentMethodBankTransfer
	}

	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}

	now := s.now()
	amount := cmd.Amount
	if amount == 0 {
		amount = order.TotalAmount
	}
	dueDate := now.Add(settlementDueWindow)
	if cmd.DueDate != nil {
		dueDate = cmd.DueDate.UTC()
	}
	autoRelease := true
	if cmd.AutoReleaseEnabled != nil {
		autoRelease = *cmd.AutoReleaseEnabled
	}

	payment := Payment{
		ID:                 s.newPaymentID(now),
		OrderID:            order.ID,
		Vendor:             order.Vendor,
		VendorName:         order.VendorName,
		Amount:             amount,
		Status:             status,
		Method:             method,
		DueDate:            dueDate,
		Notes:              cmd.Notes,
		ProcessedBy:        cmd.Actor.UserID,
		AutoReleaseEnabled: autoRelease,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}
	return payment, nil
}

// UpdatePaymentStatus moves a payment to a new settlement status. Refunded is
// terminal; released payments can only move to refunded.
func (s *settlementService) UpdatePaymentStatus(ctx context.Context, cmd UpdatePaymentStatusCommand) (Payment, error) {
	if !cmd.Status.IsValid() {
		return Payment{}, fmt.Errorf("%w: unknown status %q", ErrPaymentInvalidInput, cmd.Status)
	}
	payment, err := s.payments.FindByOrderID(ctx, cmd.OrderID)
	if err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}
	if payment.Status == cmd.Status {
		return payment, nil
	}
	if payment.Status == domain.PaymentStatusRefunded {
		return Payment{}, fmt.Errorf("%w: payment is refunded", ErrPaymentInvalidState)
	}
	if payment.Status == domain.PaymentStatusReleased && cmd.Status != domain.PaymentStatusRefunded {
		return Payment{}, fmt.Errorf("%w: released payments can only be refunded", ErrPaymentInvalidState)
	}

	if cmd.Status == domain.PaymentStatusReleased {
		order, err := s.orders.FindByID(ctx, cmd.OrderID)
		if err != nil {
			return Payment{}, s.mapRepositoryError(err)
		}
		if cmd.TransactionID != "" {
			payment.TransactionID = cmd.TransactionID
		}
		if cmd.Notes != "" {
			payment.Notes = cmd.Notes
		}
		payment.ProcessedBy = cmd.Actor.UserID
		return s.release(ctx, order, payment, cmd.Actor.UserID)
	}

	payment.Status = cmd.Status
	if cmd.TransactionID != "" {
		payment.TransactionID = cmd.TransactionID
	}
	if cmd.Notes != "" {
		payment.Notes = cmd.Notes
	}
	payment.ProcessedBy = cmd.Actor.UserID
	payment.UpdatedAt = s.now()

	if err := s.payments.Update(ctx, payment); err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}
	s.publishPaymentStatus(ctx, payment)
	return payment, nil
}

// ListPayments returns the payments visible to the actor. Vendor callers get
// missing payments for their orders backfilled lazily, so the ledger they see
// is always complete relative to their order set.
func (s *settlementService) ListPayments(ctx context.Context, query PaymentListQuery) ([]Payment, error) {
	if query.Status != "" && !query.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrPaymentInvalidInput, query.Status)
	}

	switch query.Actor.Role {
	case "admin":
		payments, err := s.payments.List(ctx, repositories.PaymentListFilter{Status: query.Status})
		if err != nil {
			return nil, s.mapRepositoryError(err)
		}
		return payments, nil
	case "vendor":
		return s.listForVendor(ctx, query)
	default:
		return s.listForBuyer(ctx, query)
	}
}

func (s *settlementService) listForVendor(ctx context.Context, query PaymentListQuery) ([]Payment, error) {
	vendor, err := s.vendors.FindByUserID(ctx, query.Actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return []Payment{}, nil
		}
		return nil, s.mapRepositoryError(err)
	}

	s.backfillVendorPayments(ctx, vendor.ID)

	payments, err := s.payments.List(ctx, repositories.PaymentListFilter{Vendor: vendor.ID, Status: query.Status})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return payments, nil
}

// backfillVendorPayments synthesizes a payment for every vendor order that
// lacks one: released when the order is already delivered, locked otherwise.
// Individual failures are logged and skipped so the listing still serves.
func (s *settlementService) backfillVendorPayments(ctx context.Context, vendorID string) {
	orders, err := s.orders.List(ctx, repositories.OrderListFilter{Vendor: vendorID})
	if err != nil {
		s.logger(ctx, "payment.backfill_list_failed", map[string]any{
			"vendor": vendorID,
			"error":  err.Error(),
		})
		return
	}
	if len(orders) == 0 {
		return
	}

	orderIDs := make([]string, len(orders))
	for i, order := range orders {
		orderIDs[i] = order.ID
	}
	existing, err := s.payments.FindByOrderIDs(ctx, orderIDs)
	if err != nil {
		s.logger(ctx, "payment.backfill_lookup_failed", map[string]any{
			"vendor": vendorID,
			"error":  err.Error(),
		})
		return
	}
	recorded := make(map[string]bool, len(existing))
	for _, payment := range existing {
		recorded[payment.OrderID] = true
	}

	for _, order := range orders {
		if recorded[order.ID] {
			continue
		}
		status := domain.PaymentStatusLocked
		if order.Status == domain.OrderStatusDelivered {
			status = domain.PaymentStatusReleased
		}
		if _, _, err := s.createForOrder(ctx, order, status, ""); err != nil {
			s.logger(ctx, "payment.backfill_failed", map[string]any{
				"orderId": order.ID,
				"error":   err.Error(),
			})
		}
	}
}

func (s *settlementService) listForBuyer(ctx context.Context, query PaymentListQuery) ([]Payment, error) {
	orders, err := s.orders.List(ctx, repositories.OrderListFilter{CreatedBy: query.Actor.UserID})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	if len(orders) == 0 {
		return []Payment{}, nil
	}
	orderIDs := make([]string, len(orders))
	for i, order := range orders {
		orderIDs[i] = order.ID
	}
	payments, err := s.payments.FindByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	if query.Status == "" {
		return payments, nil
	}
	filtered := payments[:0]
	for _, payment := range payments {
		if payment.Status == query.Status {
			filtered = append(filtered, payment)
		}
	}
	return filtered, nil
}

func (s *settlementService) publishPaymentStatus(ctx context.Context, payment Payment) {
	if s.publisher == nil {
		return
	}
	msg := NotificationMessage{
		EventID:   fmt.Sprintf("%s-%d", payment.ID, payment.UpdatedAt.UnixMilli()),
		Type:      NotificationPaymentStatus,
		Recipient: payment.Vendor,
		OrderID:   payment.OrderID,
		Status:    string(payment.Status),
		QueuedAt:  payment.UpdatedAt,
	}
	if _, err := s.publisher.PublishNotification(ctx, msg); err != nil {
		s.logger(ctx, "payment.notification_failed", map[string]any{
			"orderId": payment.OrderID,
			"error":   err.Error(),
		})
	}
}

func (s *settlementService) mapRepositoryError(err error) error {
	return mapRepositoryError(err, ErrPaymentNotFound, ErrPaymentConflict, ErrPaymentUnavailable)
}

func isConflict(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}
