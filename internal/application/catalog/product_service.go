package catalog

import (
	"context"

	appinv "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	scope       appinv.TransactionScope
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(scope appinv.TransactionScope, productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		scope:       scope,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create creates a new product. A positive initial stock opens the
// warehouse row with an INITIAL history entry in the same transaction.
func (s *ProductService) Create(ctx context.Context, actor shared.Actor, req CreateProductRequest) (*ProductResponse, error) {
	if err := actor.RequireOwner("create products"); err != nil {
		return nil, err
	}
	pricing, err := pricingFrom(req.PricePerMl, req.LegacyPrice)
	if err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(req.Name, req.Description, pricing)
	if err != nil {
		return nil, err
	}
	if req.InitialStock < 0 {
		return nil, shared.NewInvalidInputError("initial stock cannot be negative")
	}

	err = s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
		if req.InitialStock == 0 {
			return nil
		}
		stock, err := repos.GlobalStockRepo().GetOrCreateForUpdate(ctx, product.ID)
		if err != nil {
			return err
		}
		entry, err := stock.Initialize(req.InitialStock, inventory.MovementInput{
			Reason:    "Initial stock",
			CreatedBy: &actor.ID,
		})
		if err != nil {
			return err
		}
		if err := repos.GlobalStockRepo().Save(ctx, stock); err != nil {
			return err
		}
		return repos.HistoryRepo().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
		zap.Int64("initial_stock_ml", req.InitialStock),
	)
	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products that are not soft-deleted
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Search != "" {
		domainFilter = domainFilter.WithFilter("search", filter.Search)
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update changes the name and description of a product
func (s *ProductService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if err := actor.RequireOwner("update products"); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := product.Name
	description := product.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := product.Update(name, description); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// UpdatePricing replaces the pricing of a product. The stored strategy is
// always normalized to a per-ml price.
func (s *ProductService) UpdatePricing(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdatePricingRequest) (*ProductResponse, error) {
	if err := actor.RequireOwner("change product prices"); err != nil {
		return nil, err
	}
	pricing, err := pricingFrom(req.PricePerMl, req.LegacyPrice)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.UpdatePricing(pricing); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product pricing updated",
		zap.String("product_id", product.ID.String()),
		zap.String("price_per_ml", product.Pricing.PerMl().String()),
	)
	response := ToProductResponse(product)
	return &response, nil
}

// Delete soft-deletes a product. Stock rows and history are kept.
func (s *ProductService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if err := actor.RequireOwner("delete products"); err != nil {
		return err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := product.Delete(); err != nil {
		return err
	}
	return s.productRepo.Save(ctx, product)
}

// HealPricing writes a normalized per-ml price derived from the legacy
// price back onto the product. It is best-effort: failures are logged and
// never returned, so it must not be relied upon for correctness.
func (s *ProductService) HealPricing(ctx context.Context, productID uuid.UUID, perMl decimal.Decimal) {
	if !perMl.IsPositive() {
		return
	}
	if err := s.productRepo.UpdatePricePerMl(ctx, productID, perMl); err != nil {
		s.logger.Warn("Failed to normalize legacy product price",
			zap.String("product_id", productID.String()),
			zap.String("price_per_ml", perMl.String()),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Normalized legacy product price",
		zap.String("product_id", productID.String()),
		zap.String("price_per_ml", perMl.String()),
	)
}

// NormalizeLegacyPricing heals every product that still carries only the
// legacy price and returns how many were written.
func (s *ProductService) NormalizeLegacyPricing(ctx context.Context, actor shared.Actor) (int, error) {
	if err := actor.RequireOwner("normalize product prices"); err != nil {
		return 0, err
	}
	products, err := s.productRepo.FindAll(ctx, shared.DefaultFilter())
	if err != nil {
		return 0, err
	}
	healed := 0
	for i := range products {
		p := &products[i]
		if p.Pricing.IsNormalized() {
			continue
		}
		perMl, derived := p.Pricing.EffectivePerMl()
		if !derived {
			continue
		}
		if err := s.productRepo.UpdatePricePerMl(ctx, p.ID, perMl); err != nil {
			return healed, err
		}
		healed++
	}
	return healed, nil
}
