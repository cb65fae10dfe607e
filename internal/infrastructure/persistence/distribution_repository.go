package persistence

import (
	"context"
	"errors"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockDistributionRepository implements StockDistributionRepository using GORM
type GormStockDistributionRepository struct {
	db *gorm.DB
}

// NewGormStockDistributionRepository creates a new GormStockDistributionRepository
func NewGormStockDistributionRepository(db *gorm.DB) *GormStockDistributionRepository {
	return &GormStockDistributionRepository{db: db}
}

// FindByID finds a distribution
func (r *GormStockDistributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockDistribution, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a distribution under an exclusive row lock
func (r *GormStockDistributionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockDistribution, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), id)
}

func (r *GormStockDistributionRepository) find(query *gorm.DB, id uuid.UUID) (*inventory.StockDistribution, error) {
	var model models.StockDistributionModel
	if err := query.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists distributions newest first
func (r *GormStockDistributionRepository) FindAll(ctx context.Context, filter inventory.DistributionFilter) ([]inventory.StockDistribution, error) {
	query := r.db.WithContext(ctx).Model(&models.StockDistributionModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}

	var distributionModels []models.StockDistributionModel
	if err := query.Order("distributed_at DESC").Find(&distributionModels).Error; err != nil {
		return nil, err
	}

	distributions := make([]inventory.StockDistribution, len(distributionModels))
	for i := range distributionModels {
		distributions[i] = *distributionModels[i].ToDomain()
	}
	return distributions, nil
}

// Save creates or updates a distribution
func (r *GormStockDistributionRepository) Save(ctx context.Context, distribution *inventory.StockDistribution) error {
	var model models.StockDistributionModel
	model.FromDomain(distribution)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Ensure GormStockDistributionRepository implements StockDistributionRepository
var _ inventory.StockDistributionRepository = (*GormStockDistributionRepository)(nil)
