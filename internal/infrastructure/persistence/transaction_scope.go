package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	appinv "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error codes that mean "another transaction holds the rows"
const (
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope.
// A positive lockTimeout bounds how long a statement waits for a row lock
// on postgres; the wait surfaces as CONCURRENCY_CONFLICT.
func NewGormTransactionScope(db *gorm.DB, lockTimeout time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, lockTimeout: lockTimeout}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	return translateLockError(err)
}

// translateLockError maps lock waits and deadlocks to ErrConcurrencyConflict
func translateLockError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
			return shared.ErrConcurrencyConflict
		}
	}
	return err
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// GlobalStockRepo returns the warehouse stock repository scoped to the current transaction.
func (r *gormTransactionalRepositories) GlobalStockRepo() inventory.GlobalStockRepository {
	return NewGormGlobalStockRepository(r.tx)
}

// HistoryRepo returns the warehouse history repository scoped to the current transaction.
func (r *gormTransactionalRepositories) HistoryRepo() inventory.GlobalStockHistoryRepository {
	return NewGormGlobalStockHistoryRepository(r.tx)
}

// BranchStockRepo returns the branch stock repository scoped to the current transaction.
func (r *gormTransactionalRepositories) BranchStockRepo() inventory.BranchStockRepository {
	return NewGormBranchStockRepository(r.tx)
}

// DistributionRepo returns the distribution repository scoped to the current transaction.
func (r *gormTransactionalRepositories) DistributionRepo() inventory.StockDistributionRepository {
	return NewGormStockDistributionRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// SalesRepo returns the sales record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SalesRepo() trade.SalesRecordRepository {
	return NewGormSalesRecordRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
