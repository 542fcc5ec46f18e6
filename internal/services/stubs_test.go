package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodchainx/api/internal/domain"
	"github.com/foodchainx/api/internal/repositories"
)

// fakeRepoError satisfies repositories.RepositoryError for category testing.
type fakeRepoError struct {
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *fakeRepoError) Error() string       { return fmt.Sprintf("repo error %+v", *e) }
func (e *fakeRepoError) IsNotFound() bool    { return e.notFound }
func (e *fakeRepoError) IsConflict() bool    { return e.conflict }
func (e *fakeRepoError) IsUnavailable() bool { return e.unavailable }

func errNotFound() error    { return &fakeRepoError{notFound: true} }
func errConflict() error    { return &fakeRepoError{conflict: true} }
func errUnavailable() error { return &fakeRepoError{unavailable: true} }

type stubOrderRepo struct {
	insertFn func(context.Context, domain.Order) error
	updateFn func(context.Context, domain.Order) error
	deleteFn func(context.Context, string) error
	findFn   func(context.Context, string) (domain.Order, error)
	listFn   func(context.Context, repositories.OrderListFilter) ([]domain.Order, error)
}

func (s *stubOrderRepo) Insert(ctx context.Context, order domain.Order) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, order)
	}
	return nil
}

func (s *stubOrderRepo) Update(ctx context.Context, order domain.Order) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, order)
	}
	return nil
}

func (s *stubOrderRepo) Delete(ctx context.Context, orderID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, orderID)
	}
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.findFn != nil {
		return s.findFn(ctx, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderRepo) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

type stubPaymentRepo struct {
	insertFn  func(context.Context, domain.Payment) error
	updateFn  func(context.Context, domain.Payment) error
	findFn    func(context.Context, string) (domain.Payment, error)
	findAllFn func(context.Context, []string) ([]domain.Payment, error)
	listFn    func(context.Context, repositories.PaymentListFilter) ([]domain.Payment, error)
}

func (s *stubPaymentRepo) Insert(ctx context.Context, payment domain.Payment) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, payment)
	}
	return nil
}

func (s *stubPaymentRepo) Update(ctx context.Context, payment domain.Payment) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, payment)
	}
	return nil
}

func (s *stubPaymentRepo) FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	if s.findFn != nil {
		return s.findFn(ctx, orderID)
	}
	return domain.Payment{}, errors.New("not implemented")
}

func (s *stubPaymentRepo) FindByOrderIDs(ctx context.Context, orderIDs []string) ([]domain.Payment, error) {
	if s.findAllFn != nil {
		return s.findAllFn(ctx, orderIDs)
	}
	return nil, nil
}

func (s *stubPaymentRepo) List(ctx context.Context, filter repositories.PaymentListFilter) ([]domain.Payment, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

type stubVendorRepo struct {
	upsertFn     func(context.Context, domain.Vendor) error
	findFn       func(context.Context, string) (domain.Vendor, error)
	findByUserFn func(context.Context, string) (domain.Vendor, error)
	listFn       func(context.Context) ([]domain.Vendor, error)
}

func (s *stubVendorRepo) Upsert(ctx context.Context, vendor domain.Vendor) error {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, vendor)
	}
	return nil
}

func (s *stubVendorRepo) FindByID(ctx context.Context, vendorID string) (domain.Vendor, error) {
	if s.findFn != nil {
		return s.findFn(ctx, vendorID)
	}
	return domain.Vendor{}, errors.New("not implemented")
}

func (s *stubVendorRepo) FindByUserID(ctx context.Context, userID string) (domain.Vendor, error) {
	if s.findByUserFn != nil {
		return s.findByUserFn(ctx, userID)
	}
	return domain.Vendor{}, errors.New("not implemented")
}

func (s *stubVendorRepo) List(ctx context.Context) ([]domain.Vendor, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

type stubProductRepo struct {
	insertFn func(context.Context, domain.VendorProduct) error
	updateFn func(context.Context, domain.VendorProduct) error
	deleteFn func(context.Context, string) error
	findFn   func(context.Context, string) (domain.VendorProduct, error)
	listFn   func(context.Context, repositories.ProductListFilter) ([]domain.VendorProduct, error)
}

func (s *stubProductRepo) Insert(ctx context.Context, product domain.VendorProduct) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) Update(ctx context.Context, product domain.VendorProduct) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, productID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, productID)
	}
	return nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, productID string) (domain.VendorProduct, error) {
	if s.findFn != nil {
		return s.findFn(ctx, productID)
	}
	return domain.VendorProduct{}, errors.New("not implemented")
}

func (s *stubProductRepo) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.VendorProduct, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

type stubInventoryRepo struct {
	insertFn func(context.Context, domain.InventoryItem) error
	updateFn func(context.Context, domain.InventoryItem) error
	deleteFn func(context.Context, string) error
	findFn   func(context.Context, string) (domain.InventoryItem, error)
	listFn   func(context.Context, repositories.InventoryListFilter) ([]domain.InventoryItem, error)
}

func (s *stubInventoryRepo) Insert(ctx context.Context, item domain.InventoryItem) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, item)
	}
	return nil
}

func (s *stubInventoryRepo) Update(ctx context.Context, item domain.InventoryItem) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, item)
	}
	return nil
}

func (s *stubInventoryRepo) Delete(ctx context.Context, itemID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, itemID)
	}
	return nil
}

func (s *stubInventoryRepo) FindByID(ctx context.Context, itemID string) (domain.InventoryItem, error) {
	if s.findFn != nil {
		return s.findFn(ctx, itemID)
	}
	return domain.InventoryItem{}, errors.New("not implemented")
}

func (s *stubInventoryRepo) List(ctx context.Context, filter repositories.InventoryListFilter) ([]domain.InventoryItem, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

type capturePublisher struct {
	messages []NotificationMessage
	err      error
}

func (c *capturePublisher) PublishNotification(_ context.Context, msg NotificationMessage) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.messages = append(c.messages, msg)
	return fmt.Sprintf("msg-%d", len(c.messages)), nil
}

type stubPaymentProcessor struct {
	processFn func(context.Context, string) (ProcessPaymentResult, error)
}

func (s *stubPaymentProcessor) ProcessPayment(ctx context.Context, orderID string) (ProcessPaymentResult, error) {
	if s.processFn != nil {
		return s.processFn(ctx, orderID)
	}
	return ProcessPaymentResult{}, nil
}
