package inventory

import (
	"math"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchStock is the quantity of a product held by one branch, in milliliters.
// Rows are created lazily on the first credit.
type BranchStock struct {
	ID        uuid.UUID
	BranchID  uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBranchStock creates an empty branch stock row
func NewBranchStock(branchID, productID uuid.UUID) *BranchStock {
	now := time.Now()
	return &BranchStock{
		ID:        uuid.New(),
		BranchID:  branchID,
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Credit adds amountMl to the branch
func (s *BranchStock) Credit(amountMl int64) error {
	if amountMl <= 0 {
		return shared.NewInvalidInputError("credit quantity must be positive")
	}
	if s.Quantity > math.MaxInt64-amountMl {
		return shared.NewInvalidInputError("credit quantity overflows branch balance")
	}
	s.Quantity += amountMl
	s.touch()
	return nil
}

// Debit removes amountMl from the branch. The row is left untouched when
// the branch holds less than requested.
func (s *BranchStock) Debit(amountMl int64, productName string) error {
	if amountMl <= 0 {
		return shared.NewInvalidInputError("debit quantity must be positive")
	}
	if s.Quantity < amountMl {
		return shared.NewInsufficientStockError(productName, amountMl, s.Quantity)
	}
	s.Quantity -= amountMl
	s.touch()
	return nil
}

// CanFulfill reports whether amountMl is available
func (s *BranchStock) CanFulfill(amountMl int64) bool {
	return s.Quantity >= amountMl
}

// IsBelow reports whether the balance is under the threshold
func (s *BranchStock) IsBelow(thresholdMl int64) bool {
	return s.Quantity < thresholdMl
}

func (s *BranchStock) touch() {
	s.Version++
	s.UpdatedAt = time.Now()
}

// BranchStockKey identifies a branch stock row
type BranchStockKey struct {
	BranchID  uuid.UUID
	ProductID uuid.UUID
}

// Less orders keys by branch then product. Rows are locked in this order.
func (k BranchStockKey) Less(other BranchStockKey) bool {
	if k.BranchID != other.BranchID {
		return k.BranchID.String() < other.BranchID.String()
	}
	return k.ProductID.String() < other.ProductID.String()
}
