package models

import (
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/google/uuid"
)

// GlobalStockModel is the warehouse balance of one product
type GlobalStockModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primary_key"`
	Quantity  int64     `gorm:"not null;default:0;check:chk_global_stock_non_negative,quantity >= 0"`
	Version   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GlobalStockModel) TableName() string {
	return "global_stocks"
}

// ToDomain converts the persistence model to a domain GlobalStock.
func (m *GlobalStockModel) ToDomain() *inventory.GlobalStock {
	return &inventory.GlobalStock{
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain GlobalStock.
func (m *GlobalStockModel) FromDomain(s *inventory.GlobalStock) {
	m.ProductID = s.ProductID
	m.Quantity = s.Quantity
	m.Version = s.Version
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// GlobalStockHistoryModel is one append-only warehouse movement
type GlobalStockHistoryModel struct {
	ID              uuid.UUID              `gorm:"type:uuid;primary_key"`
	ProductID       uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_global_history_product_seq,priority:1"`
	Sequence        int64                  `gorm:"not null;uniqueIndex:idx_global_history_product_seq,priority:2"`
	ChangeAmount    int64                  `gorm:"not null"`
	PreviousBalance int64                  `gorm:"not null"`
	NewBalance      int64                  `gorm:"not null"`
	Type            inventory.MovementType `gorm:"type:varchar(20);not null;index"`
	Reason          string                 `gorm:"type:varchar(500)"`
	ReferenceID     *uuid.UUID             `gorm:"type:uuid;index"`
	CreatedBy       *uuid.UUID             `gorm:"type:uuid"`
	CreatedAt       time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (GlobalStockHistoryModel) TableName() string {
	return "global_stock_histories"
}

// ToDomain converts the persistence model to a domain GlobalStockHistory.
func (m *GlobalStockHistoryModel) ToDomain() *inventory.GlobalStockHistory {
	return &inventory.GlobalStockHistory{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Sequence:        m.Sequence,
		ChangeAmount:    m.ChangeAmount,
		PreviousBalance: m.PreviousBalance,
		NewBalance:      m.NewBalance,
		Type:            m.Type,
		Reason:          m.Reason,
		ReferenceID:     m.ReferenceID,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// GlobalStockHistoryModelFromDomain creates a persistence model from a domain entry.
func GlobalStockHistoryModelFromDomain(h *inventory.GlobalStockHistory) *GlobalStockHistoryModel {
	return &GlobalStockHistoryModel{
		ID:              h.ID,
		ProductID:       h.ProductID,
		Sequence:        h.Sequence,
		ChangeAmount:    h.ChangeAmount,
		PreviousBalance: h.PreviousBalance,
		NewBalance:      h.NewBalance,
		Type:            h.Type,
		Reason:          h.Reason,
		ReferenceID:     h.ReferenceID,
		CreatedBy:       h.CreatedBy,
		CreatedAt:       h.CreatedAt,
	}
}

// BranchStockModel is the balance of one product at one branch
type BranchStockModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_branch_stock_branch_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_branch_stock_branch_product,priority:2"`
	Quantity  int64     `gorm:"not null;default:0;check:chk_branch_stock_non_negative,quantity >= 0"`
	Version   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BranchStockModel) TableName() string {
	return "branch_stocks"
}

// ToDomain converts the persistence model to a domain BranchStock.
func (m *BranchStockModel) ToDomain() *inventory.BranchStock {
	return &inventory.BranchStock{
		ID:        m.ID,
		BranchID:  m.BranchID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain BranchStock.
func (m *BranchStockModel) FromDomain(s *inventory.BranchStock) {
	m.ID = s.ID
	m.BranchID = s.BranchID
	m.ProductID = s.ProductID
	m.Quantity = s.Quantity
	m.Version = s.Version
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// StockDistributionModel is a warehouse-to-branch transfer batch
type StockDistributionModel struct {
	AggregateModel
	BranchID      uuid.UUID                    `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Quantity      int64                        `gorm:"not null"`
	UnitQuantity  int                          `gorm:"not null"`
	UnitVolumeMl  int                          `gorm:"column:unit_volume_ml;not null"`
	Note          string                       `gorm:"type:varchar(500)"`
	Status        inventory.DistributionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DistributedBy uuid.UUID                    `gorm:"type:uuid;not null"`
	DistributedAt time.Time                    `gorm:"not null"`
	ReceivedBy    *uuid.UUID                   `gorm:"type:uuid"`
	ReceivedAt    *time.Time
}

// TableName returns the table name for GORM
func (StockDistributionModel) TableName() string {
	return "stock_distributions"
}

// ToDomain converts the persistence model to a domain StockDistribution.
func (m *StockDistributionModel) ToDomain() *inventory.StockDistribution {
	return &inventory.StockDistribution{
		BaseAggregateRoot: m.ToAggregateRoot(),
		BranchID:          m.BranchID,
		ProductID:         m.ProductID,
		Quantity:          m.Quantity,
		UnitQuantity:      m.UnitQuantity,
		UnitVolumeMl:      m.UnitVolumeMl,
		Note:              m.Note,
		Status:            m.Status,
		DistributedBy:     m.DistributedBy,
		DistributedAt:     m.DistributedAt,
		ReceivedBy:        m.ReceivedBy,
		ReceivedAt:        m.ReceivedAt,
	}
}

// FromDomain populates the persistence model from a domain StockDistribution.
func (m *StockDistributionModel) FromDomain(d *inventory.StockDistribution) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.BranchID = d.BranchID
	m.ProductID = d.ProductID
	m.Quantity = d.Quantity
	m.UnitQuantity = d.UnitQuantity
	m.UnitVolumeMl = d.UnitVolumeMl
	m.Note = d.Note
	m.Status = d.Status
	m.DistributedBy = d.DistributedBy
	m.DistributedAt = d.DistributedAt
	m.ReceivedBy = d.ReceivedBy
	m.ReceivedAt = d.ReceivedAt
}
