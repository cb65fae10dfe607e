package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate is the exclusive row lock clause. Dialects without row locks
// (sqlite) drop it and rely on their database-level write lock.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// GormGlobalStockRepository implements GlobalStockRepository using GORM
type GormGlobalStockRepository struct {
	db *gorm.DB
}

// NewGormGlobalStockRepository creates a new GormGlobalStockRepository
func NewGormGlobalStockRepository(db *gorm.DB) *GormGlobalStockRepository {
	return &GormGlobalStockRepository{db: db}
}

// FindByProduct finds the warehouse row of a product
func (r *GormGlobalStockRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.GlobalStock, error) {
	var model models.GlobalStockModel
	if err := r.db.WithContext(ctx).First(&model, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrCreateForUpdate inserts a zero row if needed, then locks and returns it.
// Concurrent first-time callers both succeed: the loser's insert is a no-op
// and it blocks on the lock until the winner commits.
func (r *GormGlobalStockRepository) GetOrCreateForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.GlobalStock, error) {
	now := time.Now()
	seed := models.GlobalStockModel{ProductID: productID, CreatedAt: now, UpdatedAt: now}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}}, DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, err
	}

	var model models.GlobalStockModel
	if err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("product_id = ?", productID).
		First(&model).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all warehouse rows
func (r *GormGlobalStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.GlobalStock, error) {
	var stockModels []models.GlobalStockModel
	orderBy := ValidateSortField(filter.OrderBy, GlobalStockSortFields, "product_id")
	query := r.db.WithContext(ctx).
		Model(&models.GlobalStockModel{}).
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := paginate(query, filter.Page, filter.PageSize).Find(&stockModels).Error; err != nil {
		return nil, err
	}
	return toGlobalStocks(stockModels), nil
}

// FindBelowThreshold finds rows whose quantity is under thresholdMl
func (r *GormGlobalStockRepository) FindBelowThreshold(ctx context.Context, thresholdMl int64) ([]inventory.GlobalStock, error) {
	var stockModels []models.GlobalStockModel
	if err := r.db.WithContext(ctx).
		Where("quantity < ?", thresholdMl).
		Order("quantity ASC").
		Find(&stockModels).Error; err != nil {
		return nil, err
	}
	return toGlobalStocks(stockModels), nil
}

// Save persists the row
func (r *GormGlobalStockRepository) Save(ctx context.Context, stock *inventory.GlobalStock) error {
	var model models.GlobalStockModel
	model.FromDomain(stock)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toGlobalStocks(stockModels []models.GlobalStockModel) []inventory.GlobalStock {
	stocks := make([]inventory.GlobalStock, len(stockModels))
	for i := range stockModels {
		stocks[i] = *stockModels[i].ToDomain()
	}
	return stocks
}

// GormGlobalStockHistoryRepository implements GlobalStockHistoryRepository using GORM
type GormGlobalStockHistoryRepository struct {
	db *gorm.DB
}

// NewGormGlobalStockHistoryRepository creates a new GormGlobalStockHistoryRepository
func NewGormGlobalStockHistoryRepository(db *gorm.DB) *GormGlobalStockHistoryRepository {
	return &GormGlobalStockHistoryRepository{db: db}
}

// Create appends an entry
func (r *GormGlobalStockHistoryRepository) Create(ctx context.Context, entry *inventory.GlobalStockHistory) error {
	return r.db.WithContext(ctx).Create(models.GlobalStockHistoryModelFromDomain(entry)).Error
}

// FindByProduct returns the history of a product, newest first
func (r *GormGlobalStockHistoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.GlobalStockHistory, error) {
	var historyModels []models.GlobalStockHistoryModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sequence DESC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}
	return toHistory(historyModels), nil
}

// FindAll returns the history of all products, newest first.
// Supports the "product_id" and "type" filters.
func (r *GormGlobalStockHistoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.GlobalStockHistory, error) {
	query := r.db.WithContext(ctx).Model(&models.GlobalStockHistoryModel{})
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		}
	}

	orderBy := ValidateSortField(filter.OrderBy, HistorySortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).Order("sequence DESC")

	var historyModels []models.GlobalStockHistoryModel
	if err := paginate(query, filter.Page, filter.PageSize).Find(&historyModels).Error; err != nil {
		return nil, err
	}
	return toHistory(historyModels), nil
}

func toHistory(historyModels []models.GlobalStockHistoryModel) []inventory.GlobalStockHistory {
	entries := make([]inventory.GlobalStockHistory, len(historyModels))
	for i := range historyModels {
		entries[i] = *historyModels[i].ToDomain()
	}
	return entries
}

// GormBranchStockRepository implements BranchStockRepository using GORM
type GormBranchStockRepository struct {
	db *gorm.DB
}

// NewGormBranchStockRepository creates a new GormBranchStockRepository
func NewGormBranchStockRepository(db *gorm.DB) *GormBranchStockRepository {
	return &GormBranchStockRepository{db: db}
}

// FindByBranchAndProduct finds a row without locking
func (r *GormBranchStockRepository) FindByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID) (*inventory.BranchStock, error) {
	return r.find(r.db.WithContext(ctx), branchID, productID)
}

// FindForUpdate finds a row under an exclusive row lock
func (r *GormBranchStockRepository) FindForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*inventory.BranchStock, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), branchID, productID)
}

// GetOrCreateForUpdate inserts a zero row if needed, then locks and returns it
func (r *GormBranchStockRepository) GetOrCreateForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*inventory.BranchStock, error) {
	var seed models.BranchStockModel
	seed.FromDomain(inventory.NewBranchStock(branchID, productID))
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "branch_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&seed).Error; err != nil {
		return nil, err
	}
	return r.FindForUpdate(ctx, branchID, productID)
}

func (r *GormBranchStockRepository) find(query *gorm.DB, branchID, productID uuid.UUID) (*inventory.BranchStock, error) {
	var model models.BranchStockModel
	if err := query.
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBranch finds all rows of a branch
func (r *GormBranchStockRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]inventory.BranchStock, error) {
	var stockModels []models.BranchStockModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("product_id ASC").
		Find(&stockModels).Error; err != nil {
		return nil, err
	}
	return toBranchStocks(stockModels), nil
}

// FindAll finds all rows of all branches
func (r *GormBranchStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.BranchStock, error) {
	query := r.db.WithContext(ctx).Model(&models.BranchStockModel{})
	if productID, ok := filter.Filters["product_id"]; ok {
		query = query.Where("product_id = ?", productID)
	}

	orderBy := ValidateSortField(filter.OrderBy, BranchStockSortFields, "branch_id")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var stockModels []models.BranchStockModel
	if err := paginate(query, filter.Page, filter.PageSize).Find(&stockModels).Error; err != nil {
		return nil, err
	}
	return toBranchStocks(stockModels), nil
}

// FindBelowThreshold finds rows under thresholdMl, optionally for one branch
func (r *GormBranchStockRepository) FindBelowThreshold(ctx context.Context, branchID *uuid.UUID, thresholdMl int64) ([]inventory.BranchStock, error) {
	query := r.db.WithContext(ctx).Where("quantity < ?", thresholdMl)
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}

	var stockModels []models.BranchStockModel
	if err := query.Order("quantity ASC").Find(&stockModels).Error; err != nil {
		return nil, err
	}
	return toBranchStocks(stockModels), nil
}

// Save persists the row
func (r *GormBranchStockRepository) Save(ctx context.Context, stock *inventory.BranchStock) error {
	var model models.BranchStockModel
	model.FromDomain(stock)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toBranchStocks(stockModels []models.BranchStockModel) []inventory.BranchStock {
	stocks := make([]inventory.BranchStock, len(stockModels))
	for i := range stockModels {
		stocks[i] = *stockModels[i].ToDomain()
	}
	return stocks
}

// Ensure implementations satisfy the domain interfaces
var (
	_ inventory.GlobalStockRepository        = (*GormGlobalStockRepository)(nil)
	_ inventory.GlobalStockHistoryRepository = (*GormGlobalStockHistoryRepository)(nil)
	_ inventory.BranchStockRepository        = (*GormBranchStockRepository)(nil)
)
