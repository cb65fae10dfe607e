package inventory

import (
	"context"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
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

// MockGlobalStockRepository is a mock implementation of inventory.GlobalStockRepository
type MockGlobalStockRepository struct {
	mock.Mock
}

func (m *MockGlobalStockRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.GlobalStock, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.GlobalStock), args.Error(1)
}

func (m *MockGlobalStockRepository) GetOrCreateForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.GlobalStock, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.GlobalStock), args.Error(1)
}

func (m *MockGlobalStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.GlobalStock, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.GlobalStock), args.Error(1)
}

func (m *MockGlobalStockRepository) FindBelowThreshold(ctx context.Context, thresholdMl int64) ([]inventory.GlobalStock, error) {
	args := m.Called(ctx, thresholdMl)
	return args.Get(0).([]inventory.GlobalStock), args.Error(1)
}

func (m *MockGlobalStockRepository) Save(ctx context.Context, stock *inventory.GlobalStock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of inventory.GlobalStockHistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, entry *inventory.GlobalStockHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.GlobalStockHistory, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]inventory.GlobalStockHistory), args.Error(1)
}

func (m *MockHistoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.GlobalStockHistory, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.GlobalStockHistory), args.Error(1)
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

// MockDistributionRepository is a mock implementation of inventory.StockDistributionRepository
type MockDistributionRepository struct {
	mock.Mock
}

func (m *MockDistributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockDistribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockDistribution), args.Error(1)
}

func (m *MockDistributionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockDistribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockDistribution), args.Error(1)
}

func (m *MockDistributionRepository) FindAll(ctx context.Context, filter inventory.DistributionFilter) ([]inventory.StockDistribution, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.StockDistribution), args.Error(1)
}

func (m *MockDistributionRepository) Save(ctx context.Context, d *inventory.StockDistribution) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

type testRepos struct {
	products      *MockProductRepository
	globalStock   *MockGlobalStockRepository
	history       *MockHistoryRepository
	branchStock   *MockBranchStockRepository
	distributions *MockDistributionRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		products:      new(MockProductRepository),
		globalStock:   new(MockGlobalStockRepository),
		history:       new(MockHistoryRepository),
		branchStock:   new(MockBranchStockRepository),
		distributions: new(MockDistributionRepository),
	}
}

func (r *testRepos) scope() *NoOpTransactionScope {
	return NewNoOpTransactionScope(Repositories{
		Products:      r.products,
		GlobalStock:   r.globalStock,
		History:       r.history,
		BranchStock:   r.branchStock,
		Distributions: r.distributions,
	})
}

func newTestProduct(name string) *catalog.Product {
	p, err := catalog.NewProduct(name, "", catalog.PerMlPricing(decimal.NewFromInt(100)))
	if err != nil {
		panic(err)
	}
	return p
}

func owner() shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleOwner, nil)
}

func employeeOf(branchID uuid.UUID) shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleEmployee, &branchID)
}
