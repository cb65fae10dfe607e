package models

import (
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the online Order aggregate root.
type OrderModel struct {
	AggregateModel
	CustomerID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	BranchID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status          trade.OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING_PAYMENT';index"`
	TotalAmount     decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	ProofOfPayment  string            `gorm:"type:varchar(500);not null"`
	RecipientName   string            `gorm:"type:varchar(200);not null"`
	RecipientPhone  string            `gorm:"type:varchar(30);not null"`
	DeliveryAddress string            `gorm:"type:text;not null"`
	DeliveryNote    string            `gorm:"type:varchar(500)"`
	DecidedBy       *uuid.UUID        `gorm:"type:uuid"`
	DecidedAt       *time.Time
	RejectionReason string           `gorm:"type:varchar(500)"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		BranchID:          m.BranchID,
		Status:            m.Status,
		TotalAmount:       m.TotalAmount,
		ProofOfPayment:    m.ProofOfPayment,
		Delivery: trade.DeliveryInfo{
			RecipientName: m.RecipientName,
			Phone:         m.RecipientPhone,
			Address:       m.DeliveryAddress,
			Note:          m.DeliveryNote,
		},
		DecidedBy:       m.DecidedBy,
		DecidedAt:       m.DecidedAt,
		RejectionReason: m.RejectionReason,
		Items:           make([]trade.OrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		order.Items[i] = item.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.CustomerID = o.CustomerID
	m.BranchID = o.BranchID
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.ProofOfPayment = o.ProofOfPayment
	m.RecipientName = o.Delivery.RecipientName
	m.RecipientPhone = o.Delivery.Phone
	m.DeliveryAddress = o.Delivery.Address
	m.DeliveryNote = o.Delivery.Note
	m.DecidedBy = o.DecidedBy
	m.DecidedAt = o.DecidedAt
	m.RejectionReason = o.RejectionReason
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(&o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is one line of an order with its locked-in unit price
type OrderItemModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key"`
	OrderID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductName     string               `gorm:"type:varchar(200);not null"`
	Quantity        int                  `gorm:"not null"`
	VolumeMl        int64                `gorm:"column:volume_ml;not null"`
	PurchaseType    catalog.PurchaseType `gorm:"type:varchar(20);not null"`
	PriceAtPurchase decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	CreatedAt       time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:              m.ID,
		OrderID:         m.OrderID,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		VolumeMl:        m.VolumeMl,
		PurchaseType:    m.PurchaseType,
		PriceAtPurchase: m.PriceAtPurchase,
		CreatedAt:       m.CreatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain OrderItem.
func OrderItemModelFromDomain(i *trade.OrderItem) OrderItemModel {
	return OrderItemModel{
		ID:              i.ID,
		OrderID:         i.OrderID,
		ProductID:       i.ProductID,
		ProductName:     i.ProductName,
		Quantity:        i.Quantity,
		VolumeMl:        i.VolumeMl,
		PurchaseType:    i.PurchaseType,
		PriceAtPurchase: i.PriceAtPurchase,
		CreatedAt:       i.CreatedAt,
	}
}

// SalesRecordModel is one committed sale
type SalesRecordModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key"`
	EmployeeID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	BranchID        uuid.UUID            `gorm:"type:uuid;not null;index:idx_sales_branch_date,priority:1"`
	ProductID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	PurchaseType    catalog.PurchaseType `gorm:"type:varchar(20);not null"`
	VolumeMl        int64                `gorm:"column:volume_ml;not null"`
	QuantitySold    int                  `gorm:"not null"`
	TotalPrice      decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Source          trade.SaleSource     `gorm:"type:varchar(10);not null;index"`
	OrderID         *uuid.UUID           `gorm:"type:uuid;index"`
	TransactionDate time.Time            `gorm:"not null;index:idx_sales_branch_date,priority:2"`
	CreatedAt       time.Time            `gorm:"not null"`
	UpdatedAt       time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesRecordModel) TableName() string {
	return "sales_records"
}

// ToDomain converts the persistence model to a domain SalesRecord.
func (m *SalesRecordModel) ToDomain() *trade.SalesRecord {
	return &trade.SalesRecord{
		ID:              m.ID,
		EmployeeID:      m.EmployeeID,
		BranchID:        m.BranchID,
		ProductID:       m.ProductID,
		PurchaseType:    m.PurchaseType,
		VolumeMl:        m.VolumeMl,
		QuantitySold:    m.QuantitySold,
		TotalPrice:      m.TotalPrice,
		Source:          m.Source,
		OrderID:         m.OrderID,
		TransactionDate: m.TransactionDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SalesRecord.
func (m *SalesRecordModel) FromDomain(s *trade.SalesRecord) {
	m.ID = s.ID
	m.EmployeeID = s.EmployeeID
	m.BranchID = s.BranchID
	m.ProductID = s.ProductID
	m.PurchaseType = s.PurchaseType
	m.VolumeMl = s.VolumeMl
	m.QuantitySold = s.QuantitySold
	m.TotalPrice = s.TotalPrice
	m.Source = s.Source
	m.OrderID = s.OrderID
	m.TransactionDate = s.TransactionDate
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// AllModels lists every persisted model, in dependency order
func AllModels() []any {
	return []any{
		&ProductModel{},
		&GlobalStockModel{},
		&GlobalStockHistoryModel{},
		&BranchStockModel{},
		&StockDistributionModel{},
		&OrderModel{},
		&OrderItemModel{},
		&SalesRecordModel{},
	}
}
