package catalog

import (
	"context"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence.
// Soft-deleted products are not returned by the finders.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdatePricePerMl writes a normalized per-ml price, leaving other fields untouched
	UpdatePricePerMl(ctx context.Context, id uuid.UUID, perMl decimal.Decimal) error
}
