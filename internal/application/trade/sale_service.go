package trade

import (
	"context"
	"time"

	appinv "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService records staff-entered sales and corrects them with
// compensating stock movements.
type SaleService struct {
	scope           appinv.TransactionScope
	salesRepo       trade.SalesRecordRepository
	deriver         catalog.PriceDeriver
	healer          PriceHealer
	location        *time.Location
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope appinv.TransactionScope,
	salesRepo trade.SalesRecordRepository,
	deriver catalog.PriceDeriver,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		scope:     scope,
		salesRepo: salesRepo,
		deriver:   deriver,
		location:  time.UTC,
		logger:    logger,
	}
}

// SetPriceHealer sets the legacy price normalizer
func (s *SaleService) SetPriceHealer(healer PriceHealer) {
	s.healer = healer
}

// SetLocation sets the time zone used for day and month buckets
func (s *SaleService) SetLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SaleService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Record prices and stores an OFFLINE sale and debits the branch in the
// same transaction. The stock check is on quantitySold * volumeMl.
func (s *SaleService) Record(ctx context.Context, actor shared.Actor, req SaleRequest) (out *SalesRecordResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "record",
		telemetry.SpanAttrBranchID, req.BranchID,
		telemetry.SpanAttrProductID, req.ProductID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if !actor.CanManageBranch(req.BranchID) {
		return nil, shared.NewForbiddenError("record a sale")
	}
	purchaseType, err := parsePurchaseType(req.PurchaseType)
	if err != nil {
		return nil, err
	}

	var sale *trade.SalesRecord
	heals := pendingHeals{}
	err = s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		line, product, err := s.priceLine(ctx, repos, req, purchaseType, heals)
		if err != nil {
			return err
		}
		record, err := trade.NewOfflineSale(line, actor.ID)
		if err != nil {
			return err
		}
		ledger := inventory.NewBranchLedger(repos.BranchStockRepo())
		if _, err := ledger.Debit(ctx, record.BranchID, record.ProductID, record.SoldMl(), product.Name); err != nil {
			return err
		}
		if err := repos.SalesRepo().Create(ctx, record); err != nil {
			return err
		}
		sale = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	heals.flush(ctx, s.healer)

	s.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("branch_id", sale.BranchID.String()),
		zap.Int64("sold_ml", sale.SoldMl()),
		zap.String("total_price", sale.TotalPrice.String()),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordSale(ctx, sale.BranchID, sale.Source.String(), sale.TotalPrice)
	}

	response := ToSalesRecordResponse(sale)
	return &response, nil
}

// Delete removes a sale and credits its volume back to the branch. When the
// branch stock row no longer exists the restoration is skipped with a warning.
func (s *SaleService) Delete(ctx context.Context, actor shared.Actor, saleID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "delete",
		telemetry.SpanAttrSaleID, saleID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	var deleted *trade.SalesRecord
	err = s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		sale, err := s.lockCorrectable(ctx, repos, actor, saleID)
		if err != nil {
			return err
		}
		restored, err := inventory.NewBranchLedger(repos.BranchStockRepo()).Restore(ctx, sale.BranchID, sale.ProductID, sale.SoldMl())
		if err != nil {
			return err
		}
		if !restored {
			s.logger.Warn("Branch stock row missing, sale deleted without restoring stock",
				zap.String("sale_id", sale.ID.String()),
				zap.String("branch_id", sale.BranchID.String()),
				zap.String("product_id", sale.ProductID.String()),
			)
		}
		if err := repos.SalesRepo().Delete(ctx, sale.ID); err != nil {
			return err
		}
		deleted = sale
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Sale deleted",
		zap.String("sale_id", deleted.ID.String()),
		zap.Int64("restored_ml", deleted.SoldMl()),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordSaleReversal(ctx, deleted.BranchID, deleted.Source.String())
	}
	return nil
}

// Update reverts the stock effect of a sale, re-prices it with the new
// fields and debits the new amount. Branch stock rows are locked in
// ascending key order.
func (s *SaleService) Update(ctx context.Context, actor shared.Actor, saleID uuid.UUID, req SaleRequest) (out *SalesRecordResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "update",
		telemetry.SpanAttrSaleID, saleID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if !actor.CanManageBranch(req.BranchID) {
		return nil, shared.NewForbiddenError("move a sale")
	}
	purchaseType, err := parsePurchaseType(req.PurchaseType)
	if err != nil {
		return nil, err
	}

	var sale *trade.SalesRecord
	heals := pendingHeals{}
	err = s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		locked, err := s.lockCorrectable(ctx, repos, actor, saleID)
		if err != nil {
			return err
		}
		line, product, err := s.priceLine(ctx, repos, req, purchaseType, heals)
		if err != nil {
			return err
		}
		if err := line.Validate(); err != nil {
			return err
		}

		oldKey := inventory.BranchStockKey{BranchID: locked.BranchID, ProductID: locked.ProductID}
		newKey := inventory.BranchStockKey{BranchID: line.BranchID, ProductID: line.ProductID}
		oldMl := locked.SoldMl()
		ledger := inventory.NewBranchLedger(repos.BranchStockRepo())

		restore := func() error {
			restored, err := ledger.Restore(ctx, oldKey.BranchID, oldKey.ProductID, oldMl)
			if err != nil {
				return err
			}
			if !restored {
				s.logger.Warn("Branch stock row missing, previous sale amount not restored",
					zap.String("sale_id", locked.ID.String()),
				)
			}
			return nil
		}
		debit := func() error {
			_, err := ledger.Debit(ctx, newKey.BranchID, newKey.ProductID, line.SoldMl(), product.Name)
			return err
		}

		steps := []func() error{restore, debit}
		if newKey.Less(oldKey) {
			steps = []func() error{debit, restore}
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		if err := locked.Revise(line); err != nil {
			return err
		}
		if err := repos.SalesRepo().Update(ctx, locked); err != nil {
			return err
		}
		sale = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	heals.flush(ctx, s.healer)

	s.logger.Info("Sale updated",
		zap.String("sale_id", sale.ID.String()),
		zap.Int64("sold_ml", sale.SoldMl()),
		zap.String("total_price", sale.TotalPrice.String()),
	)

	response := ToSalesRecordResponse(sale)
	return &response, nil
}

// Get returns a sale visible to the actor
func (s *SaleService) Get(ctx context.Context, actor shared.Actor, saleID uuid.UUID) (*SalesRecordResponse, error) {
	sale, err := s.salesRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageBranch(sale.BranchID) {
		return nil, shared.NewNotFoundError("sale", saleID)
	}
	response := ToSalesRecordResponse(sale)
	return &response, nil
}

// List returns sales newest first
func (s *SaleService) List(ctx context.Context, actor shared.Actor, filter SalesListFilter) ([]SalesRecordResponse, error) {
	domainFilter, err := s.scopedFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	records, err := s.salesRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToSalesRecordResponses(records), nil
}

// Report summarizes sales by channel and by product
func (s *SaleService) Report(ctx context.Context, actor shared.Actor, filter SalesListFilter) (*SalesReportResponse, error) {
	domainFilter, err := s.scopedFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	var summary *trade.SalesSummary
	telemetry.WithProfilingLabels(ctx, "sales_report", func(c context.Context) {
		summary, err = s.salesRepo.Summarize(c, domainFilter)
	})
	if err != nil {
		return nil, err
	}
	response := ToSalesReportResponse(summary)
	return &response, nil
}

// Aggregate returns a day or month time series of sales
func (s *SaleService) Aggregate(ctx context.Context, actor shared.Actor, filter SalesListFilter, bucket string) ([]SalesBucketResponse, error) {
	timeBucket := trade.TimeBucket(bucket)
	if !timeBucket.IsValid() {
		return nil, shared.NewInvalidInputError("invalid bucket %q, expected day or month", bucket)
	}
	domainFilter, err := s.scopedFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	var buckets []trade.SalesBucket
	telemetry.WithProfilingLabels(ctx, "sales_aggregate", func(c context.Context) {
		var records []trade.SalesRecord
		records, err = s.salesRepo.FindAll(c, domainFilter)
		if err == nil {
			buckets = trade.AggregateByTime(records, timeBucket, s.location)
		}
	})
	if err != nil {
		return nil, err
	}
	return ToSalesBucketResponses(buckets), nil
}

func (s *SaleService) scopedFilter(actor shared.Actor, filter SalesListFilter) (trade.SalesFilter, error) {
	if err := actor.RequireStaff("view sales"); err != nil {
		return trade.SalesFilter{}, err
	}
	branchID, err := actor.ScopeBranch(filter.BranchID)
	if err != nil {
		return trade.SalesFilter{}, err
	}
	return filter.toDomain(branchID)
}

// lockCorrectable locks a sale and checks the actor may correct it.
// Sales of other branches are reported as missing. ONLINE sales belong to an approved order and are not corrected here.
func (s *SaleService) lockCorrectable(ctx context.Context, repos appinv.TransactionalRepositories, actor shared.Actor, saleID uuid.UUID) (*trade.SalesRecord, error) {
	sale, err := repos.SalesRepo().FindByIDForUpdate(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageBranch(sale.BranchID) {
		return nil, shared.NewNotFoundError("sale", saleID)
	}
	if sale.Source != trade.SaleSourceOffline {
		return nil, shared.NewInvalidStateError("sale %s was created by an online order and cannot be corrected", sale.ID)
	}
	return sale, nil
}

func (s *SaleService) priceLine(
	ctx context.Context,
	repos appinv.TransactionalRepositories,
	req SaleRequest,
	purchaseType catalog.PurchaseType,
	heals pendingHeals,
) (trade.SaleLine, *catalog.Product, error) {
	product, err := repos.ProductRepo().FindByID(ctx, req.ProductID)
	if err != nil {
		return trade.SaleLine{}, nil, err
	}
	quote, err := s.deriver.Price(product, req.VolumeMl, purchaseType)
	if err != nil {
		return trade.SaleLine{}, nil, err
	}
	heals.note(product, quote)
	return trade.SaleLine{
		BranchID:     req.BranchID,
		ProductID:    product.ID,
		PurchaseType: purchaseType,
		VolumeMl:     req.VolumeMl,
		QuantitySold: req.QuantitySold,
		UnitPrice:    quote.UnitPrice,
	}, product, nil
}
