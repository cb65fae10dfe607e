package catalog

import (
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	Description  string           `json:"description" binding:"max=2000"`
	PricePerMl   *decimal.Decimal `json:"price_per_ml"`
	LegacyPrice  *decimal.Decimal `json:"price"`
	InitialStock int64            `json:"initial_stock_ml" binding:"min=0"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// UpdatePricingRequest replaces the pricing of a product
type UpdatePricingRequest struct {
	PricePerMl  *decimal.Decimal `json:"price_per_ml"`
	LegacyPrice *decimal.Decimal `json:"price"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	PricePerMl  decimal.Decimal `json:"price_per_ml"`
	LegacyPrice decimal.Decimal `json:"price"`
	Normalized  bool            `json:"normalized"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse.
// PricePerMl is the effective per-ml price, derived for legacy rows.
func ToProductResponse(p *catalog.Product) ProductResponse {
	perMl, _ := p.Pricing.EffectivePerMl()
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PricePerMl:  perMl,
		LegacyPrice: p.Pricing.LegacyPrice(),
		Normalized:  p.Pricing.IsNormalized(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

func pricingFrom(perMl, legacy *decimal.Decimal) (catalog.PricingStrategy, error) {
	p, l := decimal.Zero, decimal.Zero
	if perMl != nil {
		p = *perMl
	}
	if legacy != nil {
		l = *legacy
	}
	return catalog.NewPricingStrategy(p, l)
}
