package models

import (
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
// LegacyPrice is the flat 30 ml price carried over from the old catalog.
type ProductModel struct {
	AggregateModel
	Name        string          `gorm:"type:varchar(200);not null;index"`
	Description string          `gorm:"type:text"`
	PricePerMl  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LegacyPrice decimal.Decimal `gorm:"column:price;type:decimal(18,2);not null;default:0"`
	DeletedAt   *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
// Stored prices are not re-validated so that legacy rows can be loaded.
func (m *ProductModel) ToDomain() *catalog.Product {
	pricing, err := catalog.NewPricingStrategy(m.PricePerMl, m.LegacyPrice)
	if err != nil {
		pricing = catalog.PricingStrategy{}
	}
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Pricing:           pricing,
		DeletedAt:         m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.PricePerMl = p.Pricing.PerMl()
	m.LegacyPrice = p.Pricing.LegacyPrice()
	m.DeletedAt = p.DeletedAt
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
