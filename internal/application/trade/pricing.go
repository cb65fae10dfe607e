package trade

import (
	"context"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHealer persists a normalized per-ml price for a product priced only
// by the legacy field. Implementations are best-effort and never fail the caller.
type PriceHealer interface {
	HealPricing(ctx context.Context, productID uuid.UUID, perMl decimal.Decimal)
}

// pendingHeals collects products whose price was derived from the legacy
// field during a request, so that they are healed after the transaction.
type pendingHeals map[uuid.UUID]decimal.Decimal

func (p pendingHeals) note(product *catalog.Product, quote catalog.Quote) {
	if quote.NeedsHeal {
		p[product.ID] = quote.PerMl
	}
}

func (p pendingHeals) flush(ctx context.Context, healer PriceHealer) {
	if healer == nil {
		return
	}
	for id, perMl := range p {
		healer.HealPricing(ctx, id, perMl)
	}
}

func parsePurchaseType(value string) (catalog.PurchaseType, error) {
	pt := catalog.PurchaseType(value)
	if !pt.IsValid() {
		return "", invalidPurchaseType(value)
	}
	return pt, nil
}

func invalidPurchaseType(value string) error {
	return shared.NewInvalidInputError("invalid purchase type %q, expected REFILL or NEW_BOTTLE", value)
}
