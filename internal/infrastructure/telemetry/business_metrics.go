package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when business metrics are created without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// OrderOutcome labels a step in the lifecycle of an online order
type OrderOutcome string

const (
	OrderOutcomeCreated  OrderOutcome = "created"
	OrderOutcomeApproved OrderOutcome = "approved"
	OrderOutcomeRejected OrderOutcome = "rejected"
)

// LowStockCounter reports how many stock rows sit below the low-stock
// threshold, split by warehouse and branch level.
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (global, branch int64, err error)
}

// BusinessMetrics records ledger activity: stock movements, order outcomes,
// sales and low-stock levels.
type BusinessMetrics struct {
	logger *zap.Logger

	stockMovements  *Counter
	stockMovementMl *Counter
	orderOutcomes   *Counter
	salesTotal      *Counter
	salesRevenue    *Counter
	salesReversed   *Counter
	lowStockRows    *Gauge

	lowStock    LowStockCounter
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	LowStock LowStockCounter
}

// NewBusinessMetrics creates the ledger instruments on the given meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		logger:   logger,
		lowStock: cfg.LowStock,
		stopChan: make(chan struct{}),
	}

	var err error
	if bm.stockMovements, err = NewCounter(cfg.Meter,
		"perfume_stock_movements_total", "Number of warehouse stock movements", "{movements}"); err != nil {
		return nil, err
	}
	if bm.stockMovementMl, err = NewCounter(cfg.Meter,
		"perfume_stock_movement_ml_total", "Absolute volume moved in warehouse stock movements", "ml"); err != nil {
		return nil, err
	}
	if bm.orderOutcomes, err = NewCounter(cfg.Meter,
		"perfume_order_outcomes_total", "Online orders by lifecycle outcome", "{orders}"); err != nil {
		return nil, err
	}
	if bm.salesTotal, err = NewCounter(cfg.Meter,
		"perfume_sales_total", "Number of sales records written", "{sales}"); err != nil {
		return nil, err
	}
	if bm.salesRevenue, err = NewCounter(cfg.Meter,
		"perfume_sales_revenue_total", "Sales revenue in whole currency units", "{currency}"); err != nil {
		return nil, err
	}
	if bm.salesReversed, err = NewCounter(cfg.Meter,
		"perfume_sales_reversed_total", "Sales records deleted with their stock returned", "{sales}"); err != nil {
		return nil, err
	}
	if bm.lowStockRows, err = NewGauge(cfg.Meter,
		"perfume_low_stock_rows", "Stock rows below the low-stock threshold", "{rows}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordStockMovement records one warehouse movement. amountMl is signed;
// the counter accumulates its magnitude.
func (bm *BusinessMetrics) RecordStockMovement(ctx context.Context, movement string, amountMl int64) {
	if amountMl < 0 {
		amountMl = -amountMl
	}
	bm.stockMovements.Inc(ctx, AttrMovementType.String(movement))
	bm.stockMovementMl.Add(ctx, amountMl, AttrMovementType.String(movement))
}

// RecordOrderOutcome records an order reaching the given lifecycle step.
func (bm *BusinessMetrics) RecordOrderOutcome(ctx context.Context, branchID uuid.UUID, outcome OrderOutcome) {
	bm.orderOutcomes.Inc(ctx,
		AttrBranchID.String(branchID.String()),
		AttrOrderOutcome.String(string(outcome)),
	)
}

// RecordSale records one sales record and its revenue.
func (bm *BusinessMetrics) RecordSale(ctx context.Context, branchID uuid.UUID, source string, revenue decimal.Decimal) {
	bm.salesTotal.Inc(ctx,
		AttrBranchID.String(branchID.String()),
		AttrSaleSource.String(source),
	)
	bm.salesRevenue.Add(ctx, revenue.Round(0).IntPart(),
		AttrBranchID.String(branchID.String()),
		AttrSaleSource.String(source),
	)
}

// RecordSaleReversal records a deleted sales record.
func (bm *BusinessMetrics) RecordSaleReversal(ctx context.Context, branchID uuid.UUID, source string) {
	bm.salesReversed.Inc(ctx,
		AttrBranchID.String(branchID.String()),
		AttrSaleSource.String(source),
	)
}

// RecordLowStock records the current low-stock row counts.
func (bm *BusinessMetrics) RecordLowStock(ctx context.Context, global, branch int64) {
	bm.lowStockRows.Record(ctx, global, AttrStockLevel.String("warehouse"))
	bm.lowStockRows.Record(ctx, branch, AttrStockLevel.String("branch"))
}

// StartPeriodicCollection refreshes the low-stock gauge every interval
// (default 5 minutes) until Stop is called or ctx is done. It is non-blocking.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectLowStock(ctx)
	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectLowStock(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectLowStock(ctx context.Context) {
	if bm.lowStock == nil {
		bm.logger.Debug("No low stock counter configured, skipping collection")
		return
	}
	global, branch, err := bm.lowStock.CountLowStock(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count low stock rows", zap.Error(err))
		return
	}
	bm.RecordLowStock(ctx, global, branch)
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
