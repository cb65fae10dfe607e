package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a warehouse change
type MovementType string

const (
	MovementTypeInitial      MovementType = "INITIAL"
	MovementTypeRestock      MovementType = "RESTOCK"
	MovementTypeDistribution MovementType = "DISTRIBUTION"
	MovementTypeAdjustment   MovementType = "ADJUSTMENT"
)

// IsValid checks if the movement type is a known value
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeInitial, MovementTypeRestock, MovementTypeDistribution, MovementTypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation
func (t MovementType) String() string {
	return string(t)
}

// GlobalStockHistory is an append-only record of one warehouse change.
// PreviousBalance + ChangeAmount == NewBalance always holds.
type GlobalStockHistory struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	Sequence        int64
	ChangeAmount    int64
	PreviousBalance int64
	NewBalance      int64
	Type            MovementType
	Reason          string
	ReferenceID     *uuid.UUID
	CreatedBy       *uuid.UUID
	CreatedAt       time.Time
}

// IsConsistent reports whether the entry's own arithmetic holds
func (h GlobalStockHistory) IsConsistent() bool {
	return h.PreviousBalance+h.ChangeAmount == h.NewBalance
}

// ChainError describes the first break found in a balance chain
type ChainError struct {
	ProductID uuid.UUID
	Sequence  int64
	Detail    string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("balance chain of product %s broken at sequence %d: %s", e.ProductID, e.Sequence, e.Detail)
}

// VerifyChain replays the history of one product from zero and checks that
// it ends at finalBalance. Entries may be passed in any order.
func VerifyChain(productID uuid.UUID, entries []GlobalStockHistory, finalBalance int64) error {
	sorted := make([]GlobalStockHistory, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	var balance int64
	for _, h := range sorted {
		if h.ProductID != productID {
			return &ChainError{ProductID: productID, Sequence: h.Sequence, Detail: "entry belongs to another product"}
		}
		if !h.IsConsistent() {
			return &ChainError{ProductID: productID, Sequence: h.Sequence, Detail: "previous + change != new"}
		}
		if h.PreviousBalance != balance {
			return &ChainError{ProductID: productID, Sequence: h.Sequence,
				Detail: fmt.Sprintf("expected previous balance %d, got %d", balance, h.PreviousBalance)}
		}
		if h.NewBalance < 0 {
			return &ChainError{ProductID: productID, Sequence: h.Sequence, Detail: "negative balance"}
		}
		balance = h.NewBalance
	}
	if balance != finalBalance {
		return &ChainError{ProductID: productID, Sequence: int64(len(sorted)),
			Detail: fmt.Sprintf("replayed balance %d does not match stock %d", balance, finalBalance)}
	}
	return nil
}
