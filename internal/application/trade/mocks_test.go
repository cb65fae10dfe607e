package trade

import (
	"context"

	appinv "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdatePricePerMl(ctx context.Context, id uuid.UUID, perMl decimal.Decimal) error {
	args := m.Called(ctx, id, perMl)
	return args.Error(0)
}

// MockBranchStockRepository is a mock implementation of inventory.BranchStockRepository
type MockBranchStockRepository struct {
	mock.Mock
}

func (m *MockBranchStockRepository) FindByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID) (*inventory.BranchStock, error) {
	args := m.Called(ctx, branchID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.BranchStock), args.Error(1)
}

func (m *MockBranchStockRepository) FindForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*inventory.BranchStock, error) {
	args := m.Called(ctx, branchID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.BranchStock), args.Error(1)
}

func (m *MockBranchStockRepository) GetOrCreateForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*inventory.BranchStock, error) {
	args := m.Called(ctx, branchID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.BranchStock), args.Error(1)
}

func (m *MockBranchStockRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]inventory.BranchStock, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).([]inventory.BranchStock), args.Error(1)
}

func (m *MockBranchStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.BranchStock, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.BranchStock), args.Error(1)
}

func (m *MockBranchStockRepository) FindBelowThreshold(ctx context.Context, branchID *uuid.UUID, thresholdMl int64) ([]inventory.BranchStock, error) {
	args := m.Called(ctx, branchID, thresholdMl)
	return args.Get(0).([]inventory.BranchStock), args.Error(1)
}

func (m *MockBranchStockRepository) Save(ctx context.Context, stock *inventory.BranchStock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockSalesRecordRepository is a mock implementation of trade.SalesRecordRepository
type MockSalesRecordRepository struct {
	mock.Mock
}

func (m *MockSalesRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesRecord), args.Error(1)
}

func (m *MockSalesRecordRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SalesRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesRecord), args.Error(1)
}

func (m *MockSalesRecordRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.SalesRecord, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]trade.SalesRecord), args.Error(1)
}

func (m *MockSalesRecordRepository) FindAll(ctx context.Context, filter trade.SalesFilter) ([]trade.SalesRecord, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.SalesRecord), args.Error(1)
}

func (m *MockSalesRecordRepository) Create(ctx context.Context, record *trade.SalesRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSalesRecordRepository) Update(ctx context.Context, record *trade.SalesRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSalesRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSalesRecordRepository) Summarize(ctx context.Context, filter trade.SalesFilter) (*trade.SalesSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesSummary), args.Error(1)
}

// MockPriceHealer is a mock implementation of PriceHealer
type MockPriceHealer struct {
	mock.Mock
}

func (m *MockPriceHealer) HealPricing(ctx context.Context, productID uuid.UUID, perMl decimal.Decimal) {
	m.Called(ctx, productID, perMl)
}

type testRepos struct {
	products    *MockProductRepository
	branchStock *MockBranchStockRepository
	orders      *MockOrderRepository
	sales       *MockSalesRecordRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		products:    new(MockProductRepository),
		branchStock: new(MockBranchStockRepository),
		orders:      new(MockOrderRepository),
		sales:       new(MockSalesRecordRepository),
	}
}

func (r *testRepos) scope() *appinv.NoOpTransactionScope {
	return appinv.NewNoOpTransactionScope(appinv.Repositories{
		Products:    r.products,
		BranchStock: r.branchStock,
		Orders:      r.orders,
		Sales:       r.sales,
	})
}

func newPerMlProduct(name string, perMl int64) *catalog.Product {
	p, err := catalog.NewProduct(name, "", catalog.PerMlPricing(decimal.NewFromInt(perMl)))
	if err != nil {
		panic(err)
	}
	return p
}

// newLegacyProduct returns a product as loaded from rows written before
// per-ml pricing existed. NewProduct would normalize it.
func newLegacyProduct(name string, legacy int64) *catalog.Product {
	pricing, err := catalog.NewPricingStrategy(decimal.Zero, decimal.NewFromInt(legacy))
	if err != nil {
		panic(err)
	}
	p := newPerMlProduct(name, 1)
	p.Pricing = pricing
	return p
}

func newUnpricedProduct(name string) *catalog.Product {
	p := newPerMlProduct(name, 1)
	p.Pricing = catalog.PricingStrategy{}
	return p
}

func stockOf(branchID, productID uuid.UUID, quantity int64) *inventory.BranchStock {
	s := inventory.NewBranchStock(branchID, productID)
	s.Quantity = quantity
	return s
}

func owner() shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleOwner, nil)
}

func employeeOf(branchID uuid.UUID) shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleEmployee, &branchID)
}

func customer() shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleCustomer, nil)
}
