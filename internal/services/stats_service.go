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
	// ErrStatsInvalidInput indicates the stats request failed validation.
	ErrStatsInvalidInput = errors.New("stats: invalid input")
	// ErrStatsUnavailable indicates the backing store could not serve the request.
	ErrStatsUnavailable = errors.New("stats: storage unavailable")
)

// StatsServiceDeps lists collaborators required by NewStatsService.
type StatsServiceDeps struct {
	Orders   repositories.OrderRepository
	Payments repositories.PaymentRepository
	Vendors  repositories.VendorRepository

	Clock func() time.Time
}

type statsService struct {
	orders   repositories.OrderRepository
	payments repositories.PaymentRepository
	vendors  repositories.VendorRepository

	clock func() time.Time
}

// NewStatsService validates dependencies and builds the stats service.
func NewStatsService(deps StatsServiceDeps) (StatsService, error) {
	if deps.Orders == nil {
		return nil, errors.New("stats service: order repository is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("stats service: payment repository is required")
	}
	if deps.Vendors == nil {
		return nil, errors.New("stats service: vendor repository is required")
	}
	svc := &statsService{
		orders:   deps.Orders,
		payments: deps.Payments,
		vendors:  deps.Vendors,
		clock:    deps.Clock,
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	return svc, nil
}

// OrderStats aggregates the orders visible to the actor. Figures are computed
// in memory over the scoped listing since the document store offers no
// server-side grouping.
func (s *statsService) OrderStats(ctx context.Context, actor Actor) (OrderStats, error) {
	orders, err := s.visibleOrders(ctx, actor)
	if err != nil {
		return OrderStats{}, err
	}

	stats := OrderStats{StatusCounts: map[string]int{}}
	for _, status := range domain.OrderStatuses() {
		stats.StatusCounts[string(status)] = 0
	}
	for _, order := range orders {
		stats.TotalOrders++
		stats.TotalValue += order.TotalAmount
		stats.StatusCounts[string(order.Status)]++
	}
	if stats.TotalOrders > 0 {
		stats.AverageValue = stats.TotalValue / int64(stats.TotalOrders)
	}
	return stats, nil
}

// PaymentStats aggregates the settlement ledger visible to the actor. A
// payment counts as overdue when it is past due and the funds have not been
// released.
func (s *statsService) PaymentStats(ctx context.Context, actor Actor) (PaymentStats, error) {
	payments, err := s.visiblePayments(ctx, actor)
	if err != nil {
		return PaymentStats{}, err
	}

	now := s.clock().UTC()
	stats := PaymentStats{
		StatusCounts:  map[string]int{},
		StatusAmounts: map[string]int64{},
	}
	for _, payment := range payments {
		stats.TotalPayments++
		stats.TotalAmount += payment.Amount
		stats.StatusCounts[string(payment.Status)]++
		stats.StatusAmounts[string(payment.Status)] += payment.Amount
		if payment.Status != domain.PaymentStatusReleased &&
			payment.Status != domain.PaymentStatusRefunded &&
			payment.DueDate.Before(now) {
			stats.OverdueCount++
		}
	}
	return stats, nil
}

// visibleOrders resolves the actor's scope: vendors see orders against their
// vendor profile, admins see everything, everyone else sees what they created.
// Actors with an ambiguous role are probed as vendor first, then as buyer.
func (s *statsService) visibleOrders(ctx context.Context, actor Actor) ([]Order, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrStatsInvalidInput)
	}

	switch actor.Role {
	case "admin":
		return s.listOrders(ctx, repositories.OrderListFilter{})
	case "vendor":
		vendor, err := s.vendors.FindByUserID(ctx, actor.UserID)
		if err != nil {
			if isNotFound(err) {
				return []Order{}, nil
			}
			return nil, s.mapError(err)
		}
		return s.listOrders(ctx, repositories.OrderListFilter{Vendor: vendor.ID})
	case "procurement":
		return s.listOrders(ctx, repositories.OrderListFilter{CreatedBy: actor.UserID})
	default:
		vendor, err := s.vendors.FindByUserID(ctx, actor.UserID)
		if err == nil {
			return s.listOrders(ctx, repositories.OrderListFilter{Vendor: vendor.ID})
		}
		if !isNotFound(err) {
			return nil, s.mapError(err)
		}
		return s.listOrders(ctx, repositories.OrderListFilter{CreatedBy: actor.UserID})
	}
}

func (s *statsService) visiblePayments(ctx context.Context, actor Actor) ([]Payment, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrStatsInvalidInput)
	}

	switch actor.Role {
	case "admin":
		payments, err := s.payments.List(ctx, repositories.PaymentListFilter{})
		if err != nil {
			return nil, s.mapError(err)
		}
		return payments, nil
	case "vendor":
		vendor, err := s.vendors.FindByUserID(ctx, actor.UserID)
		if err != nil {
			if isNotFound(err) {
				return []Payment{}, nil
			}
			return nil, s.mapError(err)
		}
		payments, err := s.payments.List(ctx, repositories.PaymentListFilter{Vendor: vendor.ID})
		if err != nil {
			return nil, s.mapError(err)
		}
		return payments, nil
	default:
		orders, err := s.visibleOrders(ctx, actor)
		if err != nil {
			return nil, err
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
			return nil, s.mapError(err)
		}
		return payments, nil
	}
}

func (s *statsService) listOrders(ctx context.Context, filter repositories.OrderListFilter) ([]Order, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, s.mapError(err)
	}
	return orders, nil
}

func (s *statsService) mapError(err error) error {
	return mapRepositoryError(err, ErrStatsUnavailable, ErrStatsUnavailable, ErrStatsUnavailable)
}
