package inventory

import (
	"context"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// GlobalStockRepository defines the interface for warehouse stock persistence
type GlobalStockRepository interface {
	// FindByProduct finds the warehouse row of a product (ErrNotFound if absent)
	FindByProduct(ctx context.Context, productID uuid.UUID) (*GlobalStock, error)

	// GetOrCreateForUpdate returns the warehouse row under an exclusive row
	// lock, inserting a zero row first when none exists.
	// Must be called inside a transaction.
	GetOrCreateForUpdate(ctx context.Context, productID uuid.UUID) (*GlobalStock, error)

	// FindAll finds all warehouse rows
	FindAll(ctx context.Context, filter shared.Filter) ([]GlobalStock, error)

	// FindBelowThreshold finds rows whose quantity is under thresholdMl
	FindBelowThreshold(ctx context.Context, thresholdMl int64) ([]GlobalStock, error)

	// Save persists the row
	Save(ctx context.Context, stock *GlobalStock) error
}

// GlobalStockHistoryRepository is the append-only store of warehouse changes
type GlobalStockHistoryRepository interface {
	// Create appends an entry
	Create(ctx context.Context, entry *GlobalStockHistory) error

	// FindByProduct returns the history of a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]GlobalStockHistory, error)

	// FindAll returns the history of all products, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]GlobalStockHistory, error)
}

// BranchStockRepository defines the interface for branch stock persistence
type BranchStockRepository interface {
	// FindByBranchAndProduct finds a row without locking (ErrNotFound if absent)
	FindByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID) (*BranchStock, error)

	// FindForUpdate finds a row under an exclusive row lock (ErrNotFound if absent).
	// Must be called inside a transaction.
	FindForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*BranchStock, error)

	// GetOrCreateForUpdate returns the row under an exclusive row lock,
	// inserting a zero row first when none exists.
	GetOrCreateForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*BranchStock, error)

	// FindByBranch finds all rows of a branch
	FindByBranch(ctx context.Context, branchID uuid.UUID) ([]BranchStock, error)

	// FindAll finds all rows of all branches
	FindAll(ctx context.Context, filter shared.Filter) ([]BranchStock, error)

	// FindBelowThreshold finds rows under thresholdMl, optionally for one branch
	FindBelowThreshold(ctx context.Context, branchID *uuid.UUID, thresholdMl int64) ([]BranchStock, error)

	// Save persists the row
	Save(ctx context.Context, stock *BranchStock) error
}

// DistributionFilter narrows a distribution listing
type DistributionFilter struct {
	Status   *DistributionStatus
	BranchID *uuid.UUID
}

// StockDistributionRepository defines the interface for distribution persistence
type StockDistributionRepository interface {
	// FindByID finds a distribution
	FindByID(ctx context.Context, id uuid.UUID) (*StockDistribution, error)

	// FindByIDForUpdate finds a distribution under an exclusive row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockDistribution, error)

	// FindAll lists distributions newest first
	FindAll(ctx context.Context, filter DistributionFilter) ([]StockDistribution, error)

	// Save creates or updates a distribution
	Save(ctx context.Context, distribution *StockDistribution) error
}
