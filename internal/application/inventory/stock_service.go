package inventory

import (
	"context"
	"errors"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLowStockThresholdMl is used when no threshold is configured
const DefaultLowStockThresholdMl int64 = 500

// StockService owns the warehouse ledger and the read side of branch stock
type StockService struct {
	scope           TransactionScope
	productRepo     catalog.ProductRepository
	globalRepo      inventory.GlobalStockRepository
	historyRepo     inventory.GlobalStockHistoryRepository
	branchRepo      inventory.BranchStockRepository
	lowStockMl      int64
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewStockService creates a new StockService
func NewStockService(
	scope TransactionScope,
	productRepo catalog.ProductRepository,
	globalRepo inventory.GlobalStockRepository,
	historyRepo inventory.GlobalStockHistoryRepository,
	branchRepo inventory.BranchStockRepository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		scope:       scope,
		productRepo: productRepo,
		globalRepo:  globalRepo,
		historyRepo: historyRepo,
		branchRepo:  branchRepo,
		lowStockMl:  DefaultLowStockThresholdMl,
		logger:      logger,
	}
}

// SetLowStockThreshold sets the default alert threshold in ml
func (s *StockService) SetLowStockThreshold(thresholdMl int64) {
	if thresholdMl > 0 {
		s.lowStockMl = thresholdMl
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *StockService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Restock adds unitQuantity bottles of unitVolumeMl to the warehouse.
// The row is locked (and created at zero when absent) before the balance is read.
func (s *StockService) Restock(ctx context.Context, actor shared.Actor, req RestockRequest) (out *GlobalStockResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "restock",
		telemetry.SpanAttrProductID, req.ProductID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := actor.RequireOwner("restock the warehouse"); err != nil {
		return nil, err
	}
	amountMl, err := inventory.ToMilliliters(req.UnitQuantity, req.UnitVolumeMl)
	if err != nil {
		return nil, err
	}

	var stock *inventory.GlobalStock
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		locked, err := repos.GlobalStockRepo().GetOrCreateForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		entry, err := locked.Restock(amountMl, inventory.MovementInput{Reason: req.Reason, CreatedBy: &actor.ID})
		if err != nil {
			return err
		}
		if err := repos.GlobalStockRepo().Save(ctx, locked); err != nil {
			return err
		}
		if err := repos.HistoryRepo().Create(ctx, entry); err != nil {
			return err
		}
		stock = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Warehouse restocked",
		zap.String("product_id", req.ProductID.String()),
		zap.Int64("amount_ml", amountMl),
		zap.Int64("balance_ml", stock.Quantity),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordStockMovement(ctx, inventory.MovementTypeRestock.String(), amountMl)
	}

	response := ToGlobalStockResponse(stock)
	return &response, nil
}

// Adjust sets the warehouse balance to a counted quantity and records the
// signed difference as an ADJUSTMENT.
func (s *StockService) Adjust(ctx context.Context, actor shared.Actor, req AdjustRequest) (out *GlobalStockResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "adjust",
		telemetry.SpanAttrProductID, req.ProductID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := actor.RequireOwner("adjust warehouse stock"); err != nil {
		return nil, err
	}

	var (
		stock *inventory.GlobalStock
		delta int64
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		locked, err := repos.GlobalStockRepo().GetOrCreateForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		entry, err := locked.AdjustTo(req.QuantityMl, inventory.MovementInput{Reason: req.Reason, CreatedBy: &actor.ID})
		if err != nil {
			return err
		}
		if err := repos.GlobalStockRepo().Save(ctx, locked); err != nil {
			return err
		}
		if err := repos.HistoryRepo().Create(ctx, entry); err != nil {
			return err
		}
		stock = locked
		delta = entry.ChangeAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Warehouse stock adjusted",
		zap.String("product_id", req.ProductID.String()),
		zap.Int64("change_ml", delta),
		zap.String("reason", req.Reason),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordStockMovement(ctx, inventory.MovementTypeAdjustment.String(), delta)
	}

	response := ToGlobalStockResponse(stock)
	return &response, nil
}

// GetGlobalStock returns the warehouse row of a product, zero when it never moved
func (s *StockService) GetGlobalStock(ctx context.Context, productID uuid.UUID) (*GlobalStockResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	stock, err := s.globalRepo.FindByProduct(ctx, productID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		stock = inventory.NewGlobalStock(productID)
	}
	response := ToGlobalStockResponse(stock)
	return &response, nil
}

// ListGlobalStock returns the warehouse rows of all products
func (s *StockService) ListGlobalStock(ctx context.Context, actor shared.Actor) ([]GlobalStockResponse, error) {
	if err := actor.RequireStaff("view warehouse stock"); err != nil {
		return nil, err
	}
	rows, err := s.globalRepo.FindAll(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	out := make([]GlobalStockResponse, len(rows))
	for i := range rows {
		out[i] = ToGlobalStockResponse(&rows[i])
	}
	return out, nil
}

// History returns warehouse movements newest first, for one product or all
func (s *StockService) History(ctx context.Context, actor shared.Actor, filter HistoryListFilter) ([]HistoryResponse, error) {
	if err := actor.RequireStaff("view warehouse history"); err != nil {
		return nil, err
	}

	var (
		entries []inventory.GlobalStockHistory
		err     error
	)
	if filter.ProductID != nil {
		entries, err = s.historyRepo.FindByProduct(ctx, *filter.ProductID)
	} else {
		f := shared.DefaultFilter()
		f.Page = filter.Page
		f.PageSize = filter.PageSize
		entries, err = s.historyRepo.FindAll(ctx, f)
	}
	if err != nil {
		return nil, err
	}
	return ToHistoryResponses(entries), nil
}

// VerifyHistory replays the history of a product and checks it ends at the
// current warehouse balance.
func (s *StockService) VerifyHistory(ctx context.Context, actor shared.Actor, productID uuid.UUID) error {
	if err := actor.RequireOwner("audit warehouse history"); err != nil {
		return err
	}
	current, err := s.GetGlobalStock(ctx, productID)
	if err != nil {
		return err
	}
	entries, err := s.historyRepo.FindByProduct(ctx, productID)
	if err != nil {
		return err
	}
	if err := inventory.VerifyChain(productID, entries, current.QuantityMl); err != nil {
		s.logger.Error("Warehouse history chain broken",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return shared.NewInvalidStateError("%s", err.Error())
	}
	return nil
}

// GetBranchStock returns the quantity of a product at a branch, 0 if no row exists
func (s *StockService) GetBranchStock(ctx context.Context, actor shared.Actor, branchID, productID uuid.UUID) (int64, error) {
	scoped, err := actor.ScopeBranch(&branchID)
	if err != nil {
		return 0, err
	}
	return inventory.NewBranchLedger(s.branchRepo).Get(ctx, *scoped, productID)
}

// ListBranchStock returns the rows of one branch, or of all branches when
// branchID is nil. Branch staff always get their own branch.
func (s *StockService) ListBranchStock(ctx context.Context, actor shared.Actor, branchID *uuid.UUID) ([]BranchStockResponse, error) {
	if err := actor.RequireStaff("view branch stock"); err != nil {
		return nil, err
	}
	scoped, err := actor.ScopeBranch(branchID)
	if err != nil {
		return nil, err
	}

	var rows []inventory.BranchStock
	if scoped != nil {
		rows, err = s.branchRepo.FindByBranch(ctx, *scoped)
	} else {
		rows, err = s.branchRepo.FindAll(ctx, shared.DefaultFilter())
	}
	if err != nil {
		return nil, err
	}
	return ToBranchStockResponses(rows), nil
}

// LowStock returns warehouse and branch rows below thresholdMl.
// A non-positive threshold falls back to the configured default.
func (s *StockService) LowStock(ctx context.Context, actor shared.Actor, branchID *uuid.UUID, thresholdMl int64) (*LowStockResponse, error) {
	if err := actor.RequireStaff("view low stock alerts"); err != nil {
		return nil, err
	}
	scoped, err := actor.ScopeBranch(branchID)
	if err != nil {
		return nil, err
	}
	if thresholdMl <= 0 {
		thresholdMl = s.lowStockMl
	}

	response := &LowStockResponse{ThresholdMl: thresholdMl, Global: []GlobalStockResponse{}}
	if actor.IsOwner() {
		globalRows, err := s.globalRepo.FindBelowThreshold(ctx, thresholdMl)
		if err != nil {
			return nil, err
		}
		for i := range globalRows {
			response.Global = append(response.Global, ToGlobalStockResponse(&globalRows[i]))
		}
	}

	branchRows, err := s.branchRepo.FindBelowThreshold(ctx, scoped, thresholdMl)
	if err != nil {
		return nil, err
	}
	response.Branches = ToBranchStockResponses(branchRows)
	return response, nil
}

// CountLowStock returns the number of warehouse and branch rows below the
// default threshold. It feeds the low stock gauge.
func (s *StockService) CountLowStock(ctx context.Context) (global, branch int64, err error) {
	globalRows, err := s.globalRepo.FindBelowThreshold(ctx, s.lowStockMl)
	if err != nil {
		return 0, 0, err
	}
	branchRows, err := s.branchRepo.FindBelowThreshold(ctx, nil, s.lowStockMl)
	if err != nil {
		return 0, 0, err
	}
	return int64(len(globalRows)), int64(len(branchRows)), nil
}
