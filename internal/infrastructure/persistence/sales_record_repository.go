package persistence

import (
	"context"
	"errors"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSalesRecordRepository implements SalesRecordRepository using GORM
type GormSalesRecordRepository struct {
	db *gorm.DB
}

// NewGormSalesRecordRepository creates a new GormSalesRecordRepository
func NewGormSalesRecordRepository(db *gorm.DB) *GormSalesRecordRepository {
	return &GormSalesRecordRepository{db: db}
}

// FindByID finds a sale
func (r *GormSalesRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesRecord, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a sale under an exclusive row lock
func (r *GormSalesRecordRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SalesRecord, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), id)
}

func (r *GormSalesRecordRepository) find(query *gorm.DB, id uuid.UUID) (*trade.SalesRecord, error) {
	var model models.SalesRecordModel
	if err := query.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder finds the sales written for an order
func (r *GormSalesRecordRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.SalesRecord, error) {
	var recordModels []models.SalesRecordModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toSalesRecords(recordModels), nil
}

// FindAll lists sales newest first
func (r *GormSalesRecordRepository) FindAll(ctx context.Context, filter trade.SalesFilter) ([]trade.SalesRecord, error) {
	var recordModels []models.SalesRecordModel
	if err := applySalesFilter(r.db.WithContext(ctx).Model(&models.SalesRecordModel{}), filter).
		Order("transaction_date DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toSalesRecords(recordModels), nil
}

// Create inserts a sale
func (r *GormSalesRecordRepository) Create(ctx context.Context, record *trade.SalesRecord) error {
	var model models.SalesRecordModel
	model.FromDomain(record)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update overwrites a sale
func (r *GormSalesRecordRepository) Update(ctx context.Context, record *trade.SalesRecord) error {
	var model models.SalesRecordModel
	model.FromDomain(record)
	result := r.db.WithContext(ctx).
		Model(&models.SalesRecordModel{}).
		Where("id = ?", record.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a sale
func (r *GormSalesRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SalesRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// salesTotalsRow is the scan target of the aggregate queries
type salesTotalsRow struct {
	GroupKey     string
	Count        int64
	UnitsSold    int64
	VolumeMl     int64
	TotalRevenue decimal.Decimal
}

func (row salesTotalsRow) totals() trade.SalesTotals {
	return trade.SalesTotals{
		Count:        row.Count,
		UnitsSold:    row.UnitsSold,
		VolumeMl:     row.VolumeMl,
		TotalRevenue: row.TotalRevenue,
	}
}

const salesTotalsSelect = "COUNT(*) AS count, " +
	"COALESCE(SUM(quantity_sold), 0) AS units_sold, " +
	"COALESCE(SUM(quantity_sold * volume_ml), 0) AS volume_ml, " +
	"COALESCE(SUM(total_price), 0) AS total_revenue"

// Summarize aggregates the filtered sales overall, by source and by product
func (r *GormSalesRecordRepository) Summarize(ctx context.Context, filter trade.SalesFilter) (*trade.SalesSummary, error) {
	base := func() *gorm.DB {
		return applySalesFilter(r.db.WithContext(ctx).Model(&models.SalesRecordModel{}), filter)
	}

	var overall salesTotalsRow
	if err := base().Select(salesTotalsSelect).Scan(&overall).Error; err != nil {
		return nil, err
	}

	var bySource []salesTotalsRow
	if err := base().
		Select("source AS group_key, " + salesTotalsSelect).
		Group("source").
		Order("source ASC").
		Scan(&bySource).Error; err != nil {
		return nil, err
	}

	var byProduct []salesTotalsRow
	if err := base().
		Select("product_id AS group_key, " + salesTotalsSelect).
		Group("product_id").
		Order("total_revenue DESC").
		Scan(&byProduct).Error; err != nil {
		return nil, err
	}

	summary := &trade.SalesSummary{
		Period:    filter.Period,
		Totals:    overall.totals(),
		BySource:  make([]trade.SourceTotals, 0, len(bySource)),
		ByProduct: make([]trade.ProductTotals, 0, len(byProduct)),
	}
	for _, row := range bySource {
		summary.BySource = append(summary.BySource, trade.SourceTotals{
			Source:      trade.SaleSource(row.GroupKey),
			SalesTotals: row.totals(),
		})
	}
	for _, row := range byProduct {
		productID, err := uuid.Parse(row.GroupKey)
		if err != nil {
			return nil, err
		}
		summary.ByProduct = append(summary.ByProduct, trade.ProductTotals{
			ProductID:   productID,
			SalesTotals: row.totals(),
		})
	}
	return summary, nil
}

func applySalesFilter(query *gorm.DB, filter trade.SalesFilter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if !filter.Period.From.IsZero() {
		query = query.Where("transaction_date >= ?", filter.Period.From)
	}
	if !filter.Period.To.IsZero() {
		query = query.Where("transaction_date < ?", filter.Period.To)
	}
	return query
}

func toSalesRecords(recordModels []models.SalesRecordModel) []trade.SalesRecord {
	records := make([]trade.SalesRecord, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records
}

// Ensure GormSalesRecordRepository implements SalesRecordRepository
var _ trade.SalesRecordRepository = (*GormSalesRecordRepository)(nil)
