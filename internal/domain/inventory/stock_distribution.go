package inventory

import (
	"math"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// DistributionStatus represents the status of a warehouse-to-branch transfer
type DistributionStatus string

const (
	// DistributionStatusPending means the goods left the warehouse and are in transit
	DistributionStatusPending DistributionStatus = "PENDING"
	// DistributionStatusReceived means the branch confirmed receipt. Terminal.
	DistributionStatusReceived DistributionStatus = "RECEIVED"
)

// IsValid checks if the status is a known value
func (s DistributionStatus) IsValid() bool {
	return s == DistributionStatusPending || s == DistributionStatusReceived
}

// String returns the string representation
func (s DistributionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s DistributionStatus) CanTransitionTo(target DistributionStatus) bool {
	return s == DistributionStatusPending && target == DistributionStatusReceived
}

// StockDistribution is one transfer batch. Quantity is debited from the
// warehouse on creation and credited to the branch only on Confirm.
type StockDistribution struct {
	shared.BaseAggregateRoot
	BranchID      uuid.UUID
	ProductID     uuid.UUID
	Quantity      int64
	UnitQuantity  int
	UnitVolumeMl  int
	Note          string
	Status        DistributionStatus
	DistributedBy uuid.UUID
	DistributedAt time.Time
	ReceivedBy    *uuid.UUID
	ReceivedAt    *time.Time
}

// NewStockDistribution creates a pending distribution of
// unitQuantity bottles of unitVolumeMl each.
func NewStockDistribution(branchID, productID uuid.UUID, unitQuantity, unitVolumeMl int, note string, distributedBy uuid.UUID) (*StockDistribution, error) {
	amountMl, err := ToMilliliters(unitQuantity, unitVolumeMl)
	if err != nil {
		return nil, err
	}
	if branchID == uuid.Nil {
		return nil, shared.NewInvalidInputError("branch is required")
	}
	if productID == uuid.Nil {
		return nil, shared.NewInvalidInputError("product is required")
	}

	d := &StockDistribution{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		ProductID:         productID,
		Quantity:          amountMl,
		UnitQuantity:      unitQuantity,
		UnitVolumeMl:      unitVolumeMl,
		Note:              note,
		Status:            DistributionStatusPending,
		DistributedBy:     distributedBy,
	}
	d.DistributedAt = d.CreatedAt
	return d, nil
}

// Confirm marks the distribution as received by the actor's branch.
// Only staff assigned to the destination branch may confirm, and a
// distribution can be confirmed once.
func (d *StockDistribution) Confirm(actor shared.Actor) error {
	if !actor.BelongsTo(d.BranchID) {
		return shared.NewForbiddenError("confirm a distribution")
	}
	if d.Status == DistributionStatusReceived {
		return shared.ErrAlreadyConfirmed
	}
	if !d.Status.CanTransitionTo(DistributionStatusReceived) {
		return shared.NewInvalidStateError("cannot confirm distribution in %s status", d.Status)
	}

	now := time.Now()
	receivedBy := actor.ID
	d.Status = DistributionStatusReceived
	d.ReceivedBy = &receivedBy
	d.ReceivedAt = &now
	d.IncrementVersion()
	return nil
}

// IsInTransit reports whether the goods are neither at the warehouse nor at the branch
func (d *StockDistribution) IsInTransit() bool {
	return d.Status == DistributionStatusPending
}

// ToMilliliters converts a bottle count and bottle volume to milliliters.
func ToMilliliters(unitQuantity, unitVolumeMl int) (int64, error) {
	if unitQuantity <= 0 {
		return 0, shared.NewInvalidInputError("unit quantity must be positive, got %d", unitQuantity)
	}
	if unitVolumeMl <= 0 {
		return 0, shared.NewInvalidInputError("unit volume must be positive, got %d ml", unitVolumeMl)
	}
	if int64(unitQuantity) > math.MaxInt64/int64(unitVolumeMl) {
		return 0, shared.NewInvalidInputError("quantity overflows")
	}
	return int64(unitQuantity) * int64(unitVolumeMl), nil
}
