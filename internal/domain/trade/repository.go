package trade

import (
	"context"

	"github.com/google/uuid"
)

// OrderFilter narrows an order listing
type OrderFilter struct {
	BranchID   *uuid.UUID
	CustomerID *uuid.UUID
	Status     *OrderStatus
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order with its items, holding an exclusive
	// lock on the order row. Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll lists orders with items, newest first
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)

	// Create inserts an order with its items
	Create(ctx context.Context, order *Order) error

	// UpdateStatus persists the decision fields of an order
	UpdateStatus(ctx context.Context, order *Order) error
}

// SalesRecordRepository defines the interface for sales persistence
type SalesRecordRepository interface {
	// FindByID finds a sale
	FindByID(ctx context.Context, id uuid.UUID) (*SalesRecord, error)

	// FindByIDForUpdate finds a sale under an exclusive row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SalesRecord, error)

	// FindByOrder finds the sales written for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]SalesRecord, error)

	// FindAll lists sales newest first
	FindAll(ctx context.Context, filter SalesFilter) ([]SalesRecord, error)

	// Create inserts a sale
	Create(ctx context.Context, record *SalesRecord) error

	// Update overwrites a sale
	Update(ctx context.Context, record *SalesRecord) error

	// Delete removes a sale
	Delete(ctx context.Context, id uuid.UUID) error

	// Summarize aggregates the filtered sales
	Summarize(ctx context.Context, filter SalesFilter) (*SalesSummary, error)
}
