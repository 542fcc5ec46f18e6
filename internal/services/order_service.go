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
	// ErrOrderInvalidInput indicates the command failed validation.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order does not exist.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderForbidden indicates the actor may not operate on the order.
	ErrOrderForbidden = errors.New("order: forbidden")
	// ErrOrderInvalidState indicates the requested transition is not allowed
	// from the order's current status.
	ErrOrderInvalidState = errors.New("order: invalid state")
	// ErrOrderConflict indicates a concurrent modification clashed.
	ErrOrderConflict = errors.New("order: conflict")
	// ErrOrderUnavailable indicates the backing store could not serve the request.
	ErrOrderUnavailable = errors.New("order: storage unavailable")
)

// inTransitDeliveryWindow is the default delivery window applied when an order
// enters transit without an expected delivery date.
const inTransitDeliveryWindow = 72 * time.Hour

// PaymentProcessor triggers settlement for a delivered order. Satisfied by
// SettlementService.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, orderID string) (ProcessPaymentResult, error)
}

// OrderServiceDeps lists collaborators required by NewOrderService.
type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Vendors   repositories.VendorRepository
	Payments  PaymentProcessor
	Publisher NotificationPublisher

	Clock      func() time.Time
	NewOrderID func(now time.Time) string
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders    repositories.OrderRepository
	vendors   repositories.VendorRepository
	payments  PaymentProcessor
	publisher NotificationPublisher

	clock      func() time.Time
	newOrderID func(now time.Time) string
	logger     func(ctx context.Context, event string, fields map[string]any)
}

// NewOrderService validates dependencies and builds the order service.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Vendors == nil {
		return nil, errors.New("order service: vendor repository is required")
	}
	svc := &orderService{
		orders:     deps.Orders,
		vendors:    deps.Vendors,
		payments:   deps.Payments,
		publisher:  deps.Publisher,
		clock:      deps.Clock,
		newOrderID: deps.NewOrderID,
		logger:     deps.Logger,
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	if svc.newOrderID == nil {
		svc.newOrderID = domain.NewOrderID
	}
	if svc.logger == nil {
		svc.logger = func(context.Context, string, map[string]any) {}
	}
	return svc, nil
}

func (s *orderService) now() time.Time {
	return s.clock().UTC()
}

func (s *orderService) Create(ctx context.Context, cmd CreateOrderCommand) (Order, error) {
	if cmd.Actor.UserID == "" {
		return Order{}, fmt.Errorf("%w: actor is required", ErrOrderInvalidInput)
	}
	if cmd.Vendor == "" {
		return Order{}, fmt.Errorf("%w: vendor is required", ErrOrderInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return Order{}, fmt.Errorf("%w: at least one item is required", ErrOrderInvalidInput)
	}

	items := make([]OrderItem, len(cmd.Items))
	var total int64
	for i, item := range cmd.Items {
		if item.ItemName == "" {
			return Order{}, fmt.Errorf("%w: item %d: name is required", ErrOrderInvalidInput, i)
		}
		if !item.Category.IsValid() {
			return Order{}, fmt.Errorf("%w: item %d: unknown category %q", ErrOrderInvalidInput, i, item.Category)
		}
		if item.Quantity <= 0 {
			return Order{}, fmt.Errorf("%w: item %d: quantity must be positive", ErrOrderInvalidInput, i)
		}
		if item.PricePerUnit < 0 {
			return Order{}, fmt.Errorf("%w: item %d: price must not be negative", ErrOrderInvalidInput, i)
		}
		item.TotalPrice = int64(item.Quantity) * item.PricePerUnit
		items[i] = item
		total += item.TotalPrice
	}
	if cmd.TotalAmount > 0 && cmd.TotalAmount != total {
		return Order{}, fmt.Errorf("%w: total amount %d does not match item totals %d", ErrOrderInvalidInput, cmd.TotalAmount, total)
	}

	priority := cmd.Priority
	if priority == "" {
		priority = domain.OrderPriorityMedium
	}
	if !priority.IsValid() {
		return Order{}, fmt.Errorf("%w: unknown priority %q", ErrOrderInvalidInput, priority)
	}

	vendor, err := s.vendors.FindByID(ctx, cmd.Vendor)
	if err != nil {
		if isNotFound(err) {
			return Order{}, fmt.Errorf("%w: vendor %q does not exist", ErrOrderInvalidInput, cmd.Vendor)
		}
		return Order{}, s.mapRepositoryError(err)
	}

	now := s.now()
	order := Order{
		ID:                   s.newOrderID(now),
		Vendor:               vendor.ID,
		VendorName:           vendor.DisplayName(),
		VendorCompanyName:    vendor.BusinessName,
		Items:                items,
		TotalAmount:          total,
		Status:               domain.OrderStatusPending,
		Priority:             priority,
		ExpectedDeliveryDate: utcPtr(cmd.ExpectedDeliveryDate),
		DeliveryAddress:      cmd.DeliveryAddress,
		Notes:                cmd.Notes,
		PaymentStatus:        domain.OrderPaymentPending,
		CreatedBy:            cmd.Actor.UserID,
		UpdatedBy:            cmd.Actor.UserID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "order.created", map[string]any{
		"orderId": order.ID,
		"vendor":  order.Vendor,
		"amount":  order.TotalAmount,
	})
	return order, nil
}

func (s *orderService) Get(ctx context.Context, actor Actor, orderID string) (Order, error) {
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}
	if err := s.authorize(ctx, actor, order); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (s *orderService) Update(ctx context.Context, cmd UpdateOrderCommand) (Order, error) {
	order, err := s.Get(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}
	if order.Status.IsTerminal() {
		return Order{}, fmt.Errorf("%w: order %s is %s", ErrOrderInvalidState, order.ID, order.Status)
	}

	if cmd.Priority != nil {
		if !cmd.Priority.IsValid() {
			return Order{}, fmt.Errorf("%w: unknown priority %q", ErrOrderInvalidInput, *cmd.Priority)
		}
		order.Priority = *cmd.Priority
	}
	if cmd.ExpectedDeliveryDate != nil {
		order.ExpectedDeliveryDate = utcPtr(cmd.ExpectedDeliveryDate)
	}
	if cmd.DeliveryAddress != nil {
		order.DeliveryAddress = *cmd.DeliveryAddress
	}
	if cmd.Notes != nil {
		order.Notes = *cmd.Notes
	}
	order.UpdatedBy = cmd.Actor.UserID
	order.UpdatedAt = s.now()

	if err := s.orders.Update(ctx, order); err != nil {
		return Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, actor Actor, orderID string) error {
	order, err := s.Get(ctx, actor, orderID)
	if err != nil {
		return err
	}
	if order.Status == domain.OrderStatusDelivered {
		return fmt.Errorf("%w: delivered orders cannot be deleted", ErrOrderInvalidState)
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "order.deleted", map[string]any{"orderId": orderID})
	return nil
}

func (s *orderService) List(ctx context.Context, query OrderListQuery) ([]Order, error) {
	filter := repositories.OrderListFilter{
		Status:         query.Status,
		Priority:       query.Priority,
		SortBy:         query.SortBy,
		SortDescending: query.SortDescending,
	}
	if query.Status != "" && !query.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, query.Status)
	}

	scoped, empty, err := s.scopeFilter(ctx, query.Actor, &filter)
	if err != nil {
		return nil, err
	}
	if empty {
		return []Order{}, nil
	}
	if !scoped && query.Vendor != "" {
		filter.Vendor = query.Vendor
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error) {
	if !cmd.Status.IsValid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, cmd.Status)
	}
	order, err := s.Get(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}
	return s.transition(ctx, order, cmd.Status, cmd.Actor)
}

func (s *orderService) BulkUpdateStatus(ctx context.Context, cmd BulkUpdateStatusCommand) (BulkStatusResult, error) {
	if !cmd.Status.IsValid() {
		return BulkStatusResult{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, cmd.Status)
	}
	if len(cmd.OrderIDs) == 0 {
		return BulkStatusResult{}, fmt.Errorf("%w: order ids are required", ErrOrderInvalidInput)
	}

	result := BulkStatusResult{Updated: []Order{}, Failures: []BulkStatusFailure{}}
	for _, orderID := range cmd.OrderIDs {
		order, err := s.Get(ctx, cmd.Actor, orderID)
		if err == nil {
			order, err = s.transition(ctx, order, cmd.Status, cmd.Actor)
		}
		if err != nil {
			result.Failures = append(result.Failures, BulkStatusFailure{OrderID: orderID, Reason: failureReason(err)})
			continue
		}
		result.Updated = append(result.Updated, order)
	}
	return result, nil
}

func (s *orderService) ListOverdue(ctx context.Context, actor Actor) ([]OverdueOrder, error) {
	now := s.now()
	filter := repositories.OrderListFilter{DueBefore: &now}
	if _, empty, err := s.scopeFilter(ctx, actor, &filter); err != nil {
		return nil, err
	} else if empty {
		return []OverdueOrder{}, nil
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	overdue := make([]OverdueOrder, 0, len(orders))
	for _, order := range orders {
		if order.Status.IsTerminal() || order.ExpectedDeliveryDate == nil {
			continue
		}
		days := int(now.Sub(*order.ExpectedDeliveryDate) / (24 * time.Hour))
		overdue = append(overdue, OverdueOrder{Order: order, DaysOverdue: days})
	}
	return overdue, nil
}

// transition applies a status change with its side effects and persists it.
// Terminal statuses absorb: no further transitions are accepted from them.
func (s *orderService) transition(ctx context.Context, order Order, next OrderStatus, actor Actor) (Order, error) {
	if order.Status == next {
		return order, nil
	}
	if order.Status.IsTerminal() {
		return Order{}, fmt.Errorf("%w: order %s is already %s", ErrOrderInvalidState, order.ID, order.Status)
	}

	now := s.now()
	previous := order.Status
	order.Status = next
	order.UpdatedBy = actor.UserID
	order.UpdatedAt = now

	switch next {
	case domain.OrderStatusInTransit:
		if order.ExpectedDeliveryDate == nil {
			eta := now.Add(inTransitDeliveryWindow)
			order.ExpectedDeliveryDate = &eta
		}
	case domain.OrderStatusDelivered:
		order.ActualDeliveryDate = &now
	case domain.OrderStatusCancelled:
		order.ActualDeliveryDate = nil
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "order.status_changed", map[string]any{
		"orderId": order.ID,
		"from":    string(previous),
		"to":      string(next),
	})

	if next == domain.OrderStatusDelivered && s.payments != nil {
		if _, err := s.payments.ProcessPayment(ctx, order.ID); err != nil {
			s.logger(ctx, "order.settlement_failed", map[string]any{
				"orderId": order.ID,
				"error":   err.Error(),
			})
		}
	}

	s.publishStatusChange(ctx, order)
	return order, nil
}

func (s *orderService) publishStatusChange(ctx context.Context, order Order) {
	if s.publisher == nil {
		return
	}
	msg := NotificationMessage{
		EventID:   fmt.Sprintf("%s-%d", order.ID, order.UpdatedAt.UnixMilli()),
		Type:      NotificationOrderStatus,
		Recipient: order.CreatedBy,
		OrderID:   order.ID,
		Status:    string(order.Status),
		QueuedAt:  order.UpdatedAt,
	}
	if _, err := s.publisher.PublishNotification(ctx, msg); err != nil {
		s.logger(ctx, "order.notification_failed", map[string]any{
			"orderId": order.ID,
			"error":   err.Error(),
		})
	}
}

// authorize enforces role-based visibility: procurement users see orders they
// created, vendors see orders placed against their vendor profile, admins see
// everything.
func (s *orderService) authorize(ctx context.Context, actor Actor, order Order) error {
	switch actor.Role {
	case "admin":
		return nil
	case "vendor":
		vendor, err := s.vendors.FindByUserID(ctx, actor.UserID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: no vendor profile for user", ErrOrderForbidden)
			}
			return s.mapRepositoryError(err)
		}
		if order.Vendor != vendor.ID {
			return fmt.Errorf("%w: order belongs to another vendor", ErrOrderForbidden)
		}
		return nil
	default:
		if order.CreatedBy != actor.UserID {
			return fmt.Errorf("%w: order was created by another user", ErrOrderForbidden)
		}
		return nil
	}
}

// scopeFilter narrows a list filter to the actor's visibility. The second
// return value reports that the actor can see nothing at all, which happens
// for vendor users without a vendor profile.
func (s *orderService) scopeFilter(ctx context.Context, actor Actor, filter *repositories.OrderListFilter) (scoped bool, empty bool, err error) {
	switch actor.Role {
	case "admin":
		return false, false, nil
	case "vendor":
		vendor, err := s.vendors.FindByUserID(ctx, actor.UserID)
		if err != nil {
			if isNotFound(err) {
				return true, true, nil
			}
			return false, false, s.mapRepositoryError(err)
		}
		filter.Vendor = vendor.ID
		return true, false, nil
	default:
		filter.CreatedBy = actor.UserID
		return true, false, nil
	}
}

func (s *orderService) mapRepositoryError(err error) error {
	return mapRepositoryError(err, ErrOrderNotFound, ErrOrderConflict, ErrOrderUnavailable)
}

// mapRepositoryError translates categorised persistence failures into the
// calling service's sentinel errors.
func mapRepositoryError(err error, notFound, conflict, unavailable error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", notFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", conflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", unavailable, err)
		}
	}
	return err
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// failureReason strips sentinel prefixes down to a short human-readable reason.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return "order not found"
	case errors.Is(err, ErrOrderForbidden):
		return "not allowed"
	case errors.Is(err, ErrOrderInvalidState):
		return "invalid state"
	case errors.Is(err, ErrOrderConflict):
		return "conflicting update"
	default:
		return err.Error()
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
