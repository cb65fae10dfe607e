package inventory

import (
	"context"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Lock discipline: header rows (Order, StockDistribution, SalesRecord) are
// locked first, then GlobalStock or BranchStock rows in ascending key order.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// GlobalStockRepo returns the warehouse stock repository scoped to the current transaction
	GlobalStockRepo() inventory.GlobalStockRepository
	// HistoryRepo returns the warehouse history repository scoped to the current transaction
	HistoryRepo() inventory.GlobalStockHistoryRepository
	// BranchStockRepo returns the branch stock repository scoped to the current transaction
	BranchStockRepo() inventory.BranchStockRepository
	// DistributionRepo returns the distribution repository scoped to the current transaction
	DistributionRepo() inventory.StockDistributionRepository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() trade.OrderRepository
	// SalesRepo returns the sales record repository scoped to the current transaction
	SalesRepo() trade.SalesRecordRepository
}

// Repositories bundles the repositories handed out by NoOpTransactionScope.
type Repositories struct {
	Products      catalog.ProductRepository
	GlobalStock   inventory.GlobalStockRepository
	History       inventory.GlobalStockHistoryRepository
	BranchStock   inventory.BranchStockRepository
	Distributions inventory.StockDistributionRepository
	Orders        trade.OrderRepository
	Sales         trade.SalesRecordRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.repos.Products
}

// GlobalStockRepo returns the warehouse stock repository.
func (s *NoOpTransactionScope) GlobalStockRepo() inventory.GlobalStockRepository {
	return s.repos.GlobalStock
}

// HistoryRepo returns the warehouse history repository.
func (s *NoOpTransactionScope) HistoryRepo() inventory.GlobalStockHistoryRepository {
	return s.repos.History
}

// BranchStockRepo returns the branch stock repository.
func (s *NoOpTransactionScope) BranchStockRepo() inventory.BranchStockRepository {
	return s.repos.BranchStock
}

// DistributionRepo returns the distribution repository.
func (s *NoOpTransactionScope) DistributionRepo() inventory.StockDistributionRepository {
	return s.repos.Distributions
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() trade.OrderRepository {
	return s.repos.Orders
}

// SalesRepo returns the sales record repository.
func (s *NoOpTransactionScope) SalesRepo() trade.SalesRecordRepository {
	return s.repos.Sales
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
