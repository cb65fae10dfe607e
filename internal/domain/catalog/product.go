package catalog

import (
	"strings"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a perfume sold by volume.
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Pricing     PricingStrategy
	DeletedAt   *time.Time
}

// NewProduct creates a new product. The pricing is normalized on creation.
func NewProduct(name, description string, pricing PricingStrategy) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if !pricing.IsSellable() {
		return nil, shared.NewInvalidPriceError(name, decimal.Zero)
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Pricing:           pricing.Normalize(),
	}, nil
}

// Update changes the descriptive fields of the product
func (p *Product) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	p.IncrementVersion()
	return nil
}

// UpdatePricing replaces the pricing strategy
func (p *Product) UpdatePricing(pricing PricingStrategy) error {
	if !pricing.IsSellable() {
		return shared.NewInvalidPriceError(p.Name, decimal.Zero)
	}
	p.Pricing = pricing.Normalize()
	p.IncrementVersion()
	return nil
}

// Delete soft-deletes the product
func (p *Product) Delete() error {
	if p.IsDeleted() {
		return shared.NewInvalidStateError("product %s is already deleted", p.Name)
	}
	now := time.Now()
	p.DeletedAt = &now
	p.IncrementVersion()
	return nil
}

// IsDeleted reports whether the product was soft-deleted
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewInvalidInputError("product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewInvalidInputError("product name cannot exceed 200 characters")
	}
	return nil
}
