package handlers

import (
	"context"
	"errors"

	"github.com/foodchainx/api/internal/services"
)

type stubOrderService struct {
	createFn      func(context.Context, services.CreateOrderCommand) (services.Order, error)
	getFn         func(context.Context, services.Actor, string) (services.Order, error)
	updateFn      func(context.Context, services.UpdateOrderCommand) (services.Order, error)
	deleteFn      func(context.Context, services.Actor, string) error
	listFn        func(context.Context, services.OrderListQuery) ([]services.Order, error)
	statusFn      func(context.Context, services.UpdateOrderStatusCommand) (services.Order, error)
	bulkFn        func(context.Context, services.BulkUpdateStatusCommand) (services.BulkStatusResult, error)
	listOverdueFn func(context.Context, services.Actor) ([]services.OverdueOrder, error)
}

func (s *stubOrderService) Create(ctx context.Context, cmd services.CreateOrderCommand) (services.Order, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return services.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) Get(ctx context.Context, actor services.Actor, orderID string) (services.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, actor, orderID)
	}
	return services.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) Update(ctx context.Context, cmd services.UpdateOrderCommand) (services.Order, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, cmd)
	}
	return services.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) Delete(ctx context.Context, actor services.Actor, orderID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, actor, orderID)
	}
	return errors.New("not implemented")
}

func (s *stubOrderService) List(ctx context.Context, query services.OrderListQuery) ([]services.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return nil, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, cmd services.UpdateOrderStatusCommand) (services.Order, error) {
	if s.statusFn != nil {
		return s.statusFn(ctx, cmd)
	}
	return services.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) BulkUpdateStatus(ctx context.Context, cmd services.BulkUpdateStatusCommand) (services.BulkStatusResult, error) {
	if s.bulkFn != nil {
		return s.bulkFn(ctx, cmd)
	}
	return services.BulkStatusResult{}, errors.New("not implemented")
}

func (s *stubOrderService) ListOverdue(ctx context.Context, actor services.Actor) ([]services.OverdueOrder, error) {
	if s.listOverdueFn != nil {
		return s.listOverdueFn(ctx, actor)
	}
	return nil, nil
}

type stubSettlementService struct {
	processFn      func(context.Context, string) (services.ProcessPaymentResult, error)
	releaseFn      func(context.Context, services.ReleasePaymentCommand) (services.Payment, error)
	lockFn         func(context.Context, services.LockPaymentCommand) (services.Payment, error)
	autoFn         func(context.Context) (services.AutoProcessResult, error)
	createFn       func(context.Context, services.CreatePaymentCommand) (services.Payment, error)
	updateStatusFn func(context.Context, services.UpdatePaymentStatusCommand) (services.Payment, error)
	listFn         func(context.Context, services.PaymentListQuery) ([]services.Payment, error)
}

func (s *stubSettlementService) ProcessPayment(ctx context.Context, orderID string) (services.ProcessPaymentResult, error) {
	if s.processFn != nil {
		return s.processFn(ctx, orderID)
	}
	return services.ProcessPaymentResult{}, errors.New("not implemented")
}

func (s *stubSettlementService) ReleasePayment(ctx context.Context, cmd services.ReleasePaymentCommand) (services.Payment, error) {
	if s.releaseFn != nil {
		return s.releaseFn(ctx, cmd)
	}
	return services.Payment{}, errors.New("not implemented")
}

func (s *stubSettlementService) LockPayment(ctx context.Context, cmd services.LockPaymentCommand) (services.Payment, error) {
	if s.lockFn != nil {
		return s.lockFn(ctx, cmd)
	}
	return services.Payment{}, errors.New("not implemented")
}

func (s *stubSettlementService) AutoProcessPayments(ctx context.Context) (services.AutoProcessResult, error) {
	if s.autoFn != nil {
		return s.autoFn(ctx)
	}
	return services.AutoProcessResult{}, errors.New("not implemented")
}

func (s *stubSettlementService) CreatePayment(ctx context.Context, cmd services.CreatePaymentCommand) (services.Payment, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return services.Payment{}, errors.New("not implemented")
}

func (s *stubSettlementService) UpdatePaymentStatus(ctx context.Context, cmd services.UpdatePaymentStatusCommand) (services.Payment, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, cmd)
	}
	return services.Payment{}, errors.New("not implemented")
}

func (s *stubSettlementService) ListPayments(ctx context.Context, query services.PaymentListQuery) ([]services.Payment, error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return nil, nil
}

type stubStatsService struct {
	orderStatsFn   func(context.Context, services.Actor) (services.OrderStats, error)
	paymentStatsFn func(context.Context, services.Actor) (services.PaymentStats, error)
}

func (s *stubStatsService) OrderStats(ctx context.Context, actor services.Actor) (services.OrderStats, error) {
	if s.orderStatsFn != nil {
		return s.orderStatsFn(ctx, actor)
	}
	return services.OrderStats{}, nil
}

func (s *stubStatsService) PaymentStats(ctx context.Context, actor services.Actor) (services.PaymentStats, error) {
	if s.paymentStatsFn != nil {
		return s.paymentStatsFn(ctx, actor)
	}
	return services.PaymentStats{}, nil
}

type stubVendorService struct {
	saveProfileFn   func(context.Context, services.SaveVendorProfileCommand) (services.Vendor, error)
	getProfileFn    func(context.Context, services.Actor) (services.Vendor, error)
	listVendorsFn   func(context.Context) ([]services.Vendor, error)
	createProductFn func(context.Context, services.CreateProductCommand) (services.VendorProduct, error)
	updateProductFn func(context.Context, services.UpdateProductCommand) (services.VendorProduct, error)
	deleteProductFn func(context.Context, services.Actor, string) error
	listProductsFn  func(context.Context, services.ProductListQuery) ([]services.VendorProduct, error)
}

func (s *stubVendorService) SaveProfile(ctx context.Context, cmd services.SaveVendorProfileCommand) (services.Vendor, error) {
	if s.saveProfileFn != nil {
		return s.saveProfileFn(ctx, cmd)
	}
	return services.Vendor{}, errors.New("not implemented")
}

func (s *stubVendorService) GetProfile(ctx context.Context, actor services.Actor) (services.Vendor, error) {
	if s.getProfileFn != nil {
		return s.getProfileFn(ctx, actor)
	}
	return services.Vendor{}, errors.New("not implemented")
}

func (s *stubVendorService) ListVendors(ctx context.Context) ([]services.Vendor, error) {
	if s.listVendorsFn != nil {
		return s.listVendorsFn(ctx)
	}
	return nil, nil
}

func (s *stubVendorService) CreateProduct(ctx context.Context, cmd services.CreateProductCommand) (services.VendorProduct, error) {
	if s.createProductFn != nil {
		return s.createProductFn(ctx, cmd)
	}
	return services.VendorProduct{}, errors.New("not implemented")
}

func (s *stubVendorService) UpdateProduct(ctx context.Context, cmd services.UpdateProductCommand) (services.VendorProduct, error) {
	if s.updateProductFn != nil {
		return s.updateProductFn(ctx, cmd)
	}
	return services.VendorProduct{}, errors.New("not implemented")
}

func (s *stubVendorService) DeleteProduct(ctx context.Context, actor services.Actor, productID string) error {
	if s.deleteProductFn != nil {
		return s.deleteProductFn(ctx, actor, productID)
	}
	return errors.New("not implemented")
}

func (s *stubVendorService) ListProducts(ctx context.Context, query services.ProductListQuery) ([]services.VendorProduct, error) {
	if s.listProductsFn != nil {
		return s.listProductsFn(ctx, query)
	}
	return nil, nil
}

type stubInventoryService struct {
	createFn func(context.Context, services.CreateInventoryItemCommand) (services.InventoryItem, error)
	updateFn func(context.Context, services.UpdateInventoryItemCommand) (services.InventoryItem, error)
	deleteFn func(context.Context, string) error
	getFn    func(context.Context, string) (services.InventoryItem, error)
	listFn   func(context.Context, services.InventoryListQuery) ([]services.InventoryItem, error)
	statsFn  func(context.Context) (services.InventoryStats, error)
}

func (s *stubInventoryService) CreateItem(ctx context.Context, cmd services.CreateInventoryItemCommand) (services.InventoryItem, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return services.InventoryItem{}, errors.New("not implemented")
}

func (s *stubInventoryService) UpdateItem(ctx context.Context, cmd services.UpdateInventoryItemCommand) (services.InventoryItem, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, cmd)
	}
	return services.InventoryItem{}, errors.New("not implemented")
}

func (s *stubInventoryService) DeleteItem(ctx context.Context, itemID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, itemID)
	}
	return errors.New("not implemented")
}

func (s *stubInventoryService) GetItem(ctx context.Context, itemID string) (services.InventoryItem, error) {
	if s.getFn != nil {
		return s.getFn(ctx, itemID)
	}
	return services.InventoryItem{}, errors.New("not implemented")
}

func (s *stubInventoryService) ListItems(ctx context.Context, query services.InventoryListQuery) ([]services.InventoryItem, error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return nil, nil
}

func (s *stubInventoryService) Stats(ctx context.Context) (services.InventoryStats, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx)
	}
	return services.InventoryStats{}, nil
}
