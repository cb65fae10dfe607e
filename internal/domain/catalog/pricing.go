package catalog

import (
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LegacyReferenceVolumeMl is the volume the legacy flat price was quoted for.
const LegacyReferenceVolumeMl = 30

// DefaultBottleFee is charged per unit when a sale includes a new bottle.
var DefaultBottleFee = decimal.NewFromInt(5000)

// perMlPrecision is the number of decimal places kept for normalized per-ml prices.
const perMlPrecision = 4

// PurchaseType distinguishes refills from sales that include a new bottle
type PurchaseType string

const (
	PurchaseTypeRefill    PurchaseType = "REFILL"
	PurchaseTypeNewBottle PurchaseType = "NEW_BOTTLE"
)

// IsValid checks if the purchase type is a known value
func (t PurchaseType) IsValid() bool {
	return t == PurchaseTypeRefill || t == PurchaseTypeNewBottle
}

// String returns the string representation
func (t PurchaseType) String() string {
	return string(t)
}

// PricingStrategy is the pricing of a product. The authoritative form is a
// per-ml price; products migrated from the old catalog may only carry a flat
// price for a 30 ml reference unit, which Normalize converts.
type PricingStrategy struct {
	perMl       decimal.Decimal
	legacyPrice decimal.Decimal
}

// NewPricingStrategy creates a pricing strategy. Negative amounts are rejected.
func NewPricingStrategy(perMl, legacyPrice decimal.Decimal) (PricingStrategy, error) {
	if perMl.IsNegative() || legacyPrice.IsNegative() {
		return PricingStrategy{}, shared.NewInvalidInputError("prices cannot be negative")
	}
	return PricingStrategy{perMl: perMl, legacyPrice: legacyPrice}, nil
}

// PerMlPricing creates a strategy priced directly per milliliter.
func PerMlPricing(perMl decimal.Decimal) PricingStrategy {
	return PricingStrategy{perMl: perMl, legacyPrice: decimal.Zero}
}

// PerMl returns the stored per-ml price (zero when not yet normalized)
func (s PricingStrategy) PerMl() decimal.Decimal {
	return s.perMl
}

// LegacyPrice returns the legacy 30 ml reference price
func (s PricingStrategy) LegacyPrice() decimal.Decimal {
	return s.legacyPrice
}

// IsNormalized reports whether the strategy already carries a per-ml price
func (s PricingStrategy) IsNormalized() bool {
	return s.perMl.IsPositive()
}

// EffectivePerMl returns the per-ml price to charge and whether it was
// derived from the legacy field.
func (s PricingStrategy) EffectivePerMl() (decimal.Decimal, bool) {
	if s.perMl.IsPositive() {
		return s.perMl, false
	}
	if s.legacyPrice.IsPositive() {
		return s.legacyPrice.DivRound(decimal.NewFromInt(LegacyReferenceVolumeMl), perMlPrecision), true
	}
	return decimal.Zero, false
}

// Normalize returns the strategy with the per-ml price filled in from the
// legacy price when needed. The legacy price is kept as the migration source.
func (s PricingStrategy) Normalize() PricingStrategy {
	perMl, derived := s.EffectivePerMl()
	if !derived {
		return s
	}
	return PricingStrategy{perMl: perMl, legacyPrice: s.legacyPrice}
}

// IsSellable reports whether a positive price can be derived
func (s PricingStrategy) IsSellable() bool {
	perMl, _ := s.EffectivePerMl()
	return perMl.IsPositive()
}

// Quote is the result of pricing one unit of a line
type Quote struct {
	// UnitPrice is the price of one unit, bottle fee included
	UnitPrice decimal.Decimal
	// PerMl is the per-ml price that was applied
	PerMl decimal.Decimal
	// NeedsHeal is true when PerMl came from the legacy price and should be
	// written back onto the product
	NeedsHeal bool
}

// LineTotal returns the price of quantity units
func (q Quote) LineTotal(quantity int) decimal.Decimal {
	return q.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// PriceDeriver turns product pricing plus volume and purchase type into a
// unit price. It holds no state besides the bottle fee.
type PriceDeriver struct {
	bottleFee decimal.Decimal
}

// NewPriceDeriver creates a deriver with the given bottle fee
func NewPriceDeriver(bottleFee decimal.Decimal) PriceDeriver {
	return PriceDeriver{bottleFee: bottleFee}
}

// DefaultPriceDeriver uses DefaultBottleFee
func DefaultPriceDeriver() PriceDeriver {
	return NewPriceDeriver(DefaultBottleFee)
}

// BottleFee returns the configured bottle fee
func (d PriceDeriver) BottleFee() decimal.Decimal {
	return d.bottleFee
}

// Price derives the unit price of volumeMl of the product.
// It fails with INVALID_PRICE when no positive amount can be derived.
func (d PriceDeriver) Price(product *Product, volumeMl int64, purchaseType PurchaseType) (Quote, error) {
	if product == nil {
		return Quote{}, shared.ErrNotFound
	}
	if volumeMl <= 0 {
		return Quote{}, shared.NewInvalidInputError("volume must be positive, got %d ml", volumeMl)
	}
	if !purchaseType.IsValid() {
		return Quote{}, shared.NewInvalidInputError("invalid purchase type %q", purchaseType)
	}

	perMl, derived := product.Pricing.EffectivePerMl()
	if !perMl.IsPositive() {
		return Quote{}, shared.NewInvalidPriceError(product.Name, perMl)
	}

	unit := perMl.Mul(decimal.NewFromInt(volumeMl))
	if purchaseType == PurchaseTypeNewBottle {
		unit = unit.Add(d.bottleFee)
	}
	unit = unit.Round(2)
	if !unit.IsPositive() {
		return Quote{}, shared.NewInvalidPriceError(product.Name, unit)
	}

	return Quote{UnitPrice: unit, PerMl: perMl, NeedsHeal: derived}, nil
}
