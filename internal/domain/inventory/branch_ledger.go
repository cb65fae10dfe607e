package inventory

import (
	"context"
	"errors"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchLedger applies credits and debits to branch stock.
// It must be built on a transaction-scoped repository so that every
// movement commits together with the event that caused it. Each call
// locks the row before reading the balance.
type BranchLedger struct {
	repo BranchStockRepository
}

// NewBranchLedger creates a ledger over a transaction-scoped repository
func NewBranchLedger(repo BranchStockRepository) *BranchLedger {
	return &BranchLedger{repo: repo}
}

// Get returns the current quantity without locking, 0 when no row exists
func (l *BranchLedger) Get(ctx context.Context, branchID, productID uuid.UUID) (int64, error) {
	stock, err := l.repo.FindByBranchAndProduct(ctx, branchID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return stock.Quantity, nil
}

// Credit adds amountMl, creating the row on first use
func (l *BranchLedger) Credit(ctx context.Context, branchID, productID uuid.UUID, amountMl int64) (*BranchStock, error) {
	stock, err := l.repo.GetOrCreateForUpdate(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	if err := stock.Credit(amountMl); err != nil {
		return nil, err
	}
	if err := l.repo.Save(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// Debit removes amountMl. A missing row counts as zero stock.
func (l *BranchLedger) Debit(ctx context.Context, branchID, productID uuid.UUID, amountMl int64, productName string) (*BranchStock, error) {
	stock, err := l.repo.FindForUpdate(ctx, branchID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewInsufficientStockError(productName, amountMl, 0)
		}
		return nil, err
	}
	if err := stock.Debit(amountMl, productName); err != nil {
		return nil, err
	}
	if err := l.repo.Save(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// Restore credits amountMl back to an existing row. It reports false
// without error when the row no longer exists.
func (l *BranchLedger) Restore(ctx context.Context, branchID, productID uuid.UUID, amountMl int64) (bool, error) {
	stock, err := l.repo.FindForUpdate(ctx, branchID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := stock.Credit(amountMl); err != nil {
		return false, err
	}
	if err := l.repo.Save(ctx, stock); err != nil {
		return false, err
	}
	return true, nil
}
