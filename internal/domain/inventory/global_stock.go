package inventory

import (
	"math"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// GlobalStock is the warehouse quantity of a product in milliliters.
// Every change goes through a method that returns the matching history
// entry, so that stock and history are always persisted together.
type GlobalStock struct {
	ProductID uuid.UUID
	Quantity  int64
	// Version is bumped on every change and doubles as the history sequence.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGlobalStock creates an empty warehouse row for a product
func NewGlobalStock(productID uuid.UUID) *GlobalStock {
	now := time.Now()
	return &GlobalStock{
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MovementInput describes the cause of a warehouse change
type MovementInput struct {
	Reason      string
	ReferenceID *uuid.UUID
	CreatedBy   *uuid.UUID
}

// Initialize records the opening balance of a product.
// It is only allowed on a row that has never moved.
func (s *GlobalStock) Initialize(amountMl int64, in MovementInput) (*GlobalStockHistory, error) {
	if s.Version != 0 || s.Quantity != 0 {
		return nil, shared.NewInvalidStateError("warehouse stock for product %s is already initialized", s.ProductID)
	}
	if amountMl < 0 {
		return nil, shared.NewInvalidInputError("initial quantity cannot be negative")
	}
	return s.apply(amountMl, MovementTypeInitial, in), nil
}

// Restock adds amountMl to the warehouse
func (s *GlobalStock) Restock(amountMl int64, in MovementInput) (*GlobalStockHistory, error) {
	if amountMl <= 0 {
		return nil, shared.NewInvalidInputError("restock quantity must be positive")
	}
	if s.Quantity > math.MaxInt64-amountMl {
		return nil, shared.NewInvalidInputError("restock quantity overflows warehouse balance")
	}
	return s.apply(amountMl, MovementTypeRestock, in), nil
}

// Distribute removes amountMl from the warehouse for a branch transfer.
// It fails with INSUFFICIENT_GLOBAL_STOCK and leaves the row untouched when
// the warehouse holds less than requested.
func (s *GlobalStock) Distribute(amountMl int64, productName string, in MovementInput) (*GlobalStockHistory, error) {
	if amountMl <= 0 {
		return nil, shared.NewInvalidInputError("distribution quantity must be positive")
	}
	if amountMl > s.Quantity {
		return nil, shared.NewInsufficientGlobalStockError(productName, amountMl, s.Quantity)
	}
	return s.apply(-amountMl, MovementTypeDistribution, in), nil
}

// AdjustTo sets the warehouse balance to an audited target
func (s *GlobalStock) AdjustTo(targetMl int64, in MovementInput) (*GlobalStockHistory, error) {
	if targetMl < 0 {
		return nil, shared.NewInvalidInputError("adjusted quantity cannot be negative")
	}
	if targetMl == s.Quantity {
		return nil, shared.NewInvalidInputError("adjusted quantity equals current balance")
	}
	if in.Reason == "" {
		return nil, shared.NewInvalidInputError("adjustment requires a reason")
	}
	return s.apply(targetMl-s.Quantity, MovementTypeAdjustment, in), nil
}

// IsBelow reports whether the balance is under the threshold
func (s *GlobalStock) IsBelow(thresholdMl int64) bool {
	return s.Quantity < thresholdMl
}

func (s *GlobalStock) apply(change int64, movement MovementType, in MovementInput) *GlobalStockHistory {
	previous := s.Quantity
	s.Quantity += change
	s.Version++
	s.UpdatedAt = time.Now()

	return &GlobalStockHistory{
		ID:              uuid.New(),
		ProductID:       s.ProductID,
		Sequence:        s.Version,
		ChangeAmount:    change,
		PreviousBalance: previous,
		NewBalance:      s.Quantity,
		Type:            movement,
		Reason:          in.Reason,
		ReferenceID:     in.ReferenceID,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       s.UpdatedAt,
	}
}
