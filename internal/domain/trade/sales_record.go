package trade

import (
	"math"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleSource is the channel a sale came through
type SaleSource string

const (
	SaleSourceOnline  SaleSource = "ONLINE"
	SaleSourceOffline SaleSource = "OFFLINE"
)

// IsValid checks if the source is a known value
func (s SaleSource) IsValid() bool {
	return s == SaleSourceOnline || s == SaleSourceOffline
}

// String returns the string representation
func (s SaleSource) String() string {
	return string(s)
}

// SalesRecord is a committed sale. OFFLINE records are entered by staff;
// ONLINE records are written when an order is approved.
type SalesRecord struct {
	ID              uuid.UUID
	EmployeeID      uuid.UUID
	BranchID        uuid.UUID
	ProductID       uuid.UUID
	PurchaseType    catalog.PurchaseType
	VolumeMl        int64
	QuantitySold    int
	TotalPrice      decimal.Decimal
	Source          SaleSource
	OrderID         *uuid.UUID
	TransactionDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SaleLine is the priced content of a sale
type SaleLine struct {
	BranchID     uuid.UUID
	ProductID    uuid.UUID
	PurchaseType catalog.PurchaseType
	VolumeMl     int64
	QuantitySold int
	UnitPrice    decimal.Decimal
}

// Validate checks the line fields
func (l SaleLine) Validate() error {
	if l.BranchID == uuid.Nil {
		return shared.NewInvalidInputError("branch is required")
	}
	if l.ProductID == uuid.Nil {
		return shared.NewInvalidInputError("product is required")
	}
	if !l.PurchaseType.IsValid() {
		return shared.NewInvalidInputError("invalid purchase type %q", l.PurchaseType)
	}
	if l.VolumeMl <= 0 {
		return shared.NewInvalidInputError("volume must be positive, got %d ml", l.VolumeMl)
	}
	if l.QuantitySold <= 0 {
		return shared.NewInvalidInputError("quantity sold must be positive, got %d", l.QuantitySold)
	}
	if !l.UnitPrice.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidPrice, "unit price must be positive")
	}
	if _, err := lineMl(l.QuantitySold, l.VolumeMl); err != nil {
		return err
	}
	return nil
}

// lineMl returns quantity * volume in ml, failing instead of wrapping
func lineMl(quantity int, volumeMl int64) (int64, error) {
	if quantity <= 0 || volumeMl <= 0 {
		return 0, shared.NewInvalidInputError("quantity and volume must be positive")
	}
	if int64(quantity) > math.MaxInt64/volumeMl {
		return 0, shared.NewInvalidInputError("%d x %d ml overflows the stock ledger", quantity, volumeMl)
	}
	return int64(quantity) * volumeMl, nil
}

// addMl sums two ml amounts, failing instead of wrapping
func addMl(a, b int64) (int64, error) {
	if a > math.MaxInt64-b {
		return 0, shared.NewInvalidInputError("required volume overflows the stock ledger")
	}
	return a + b, nil
}

// SoldMl returns the stock consumed by the line. Validate rejects lines
// whose product does not fit in int64.
func (l SaleLine) SoldMl() int64 {
	return int64(l.QuantitySold) * l.VolumeMl
}

// NewOfflineSale creates a staff-entered sale
func NewOfflineSale(line SaleLine, employeeID uuid.UUID) (*SalesRecord, error) {
	if err := line.Validate(); err != nil {
		return nil, err
	}
	return newSalesRecord(line, employeeID, SaleSourceOffline, nil), nil
}

// NewOnlineSale creates the sale that records an approved order line
func NewOnlineSale(order *Order, item OrderItem, approvedBy uuid.UUID) (*SalesRecord, error) {
	line := SaleLine{
		BranchID:     order.BranchID,
		ProductID:    item.ProductID,
		PurchaseType: item.PurchaseType,
		VolumeMl:     item.VolumeMl,
		QuantitySold: item.Quantity,
		UnitPrice:    item.PriceAtPurchase,
	}
	if err := line.Validate(); err != nil {
		return nil, err
	}
	orderID := order.ID
	return newSalesRecord(line, approvedBy, SaleSourceOnline, &orderID), nil
}

func newSalesRecord(line SaleLine, employeeID uuid.UUID, source SaleSource, orderID *uuid.UUID) *SalesRecord {
	now := time.Now().UTC()
	return &SalesRecord{
		ID:              uuid.New(),
		EmployeeID:      employeeID,
		BranchID:        line.BranchID,
		ProductID:       line.ProductID,
		PurchaseType:    line.PurchaseType,
		VolumeMl:        line.VolumeMl,
		QuantitySold:    line.QuantitySold,
		TotalPrice:      line.UnitPrice.Mul(decimal.NewFromInt(int64(line.QuantitySold))),
		Source:          source,
		OrderID:         orderID,
		TransactionDate: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// SoldMl returns the stock consumed by the sale
func (s *SalesRecord) SoldMl() int64 {
	return int64(s.QuantitySold) * s.VolumeMl
}

// Key returns the branch stock row the sale draws from
func (s *SalesRecord) Key() (uuid.UUID, uuid.UUID) {
	return s.BranchID, s.ProductID
}

// Revise overwrites the sale with a re-priced line
func (s *SalesRecord) Revise(line SaleLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	s.BranchID = line.BranchID
	s.ProductID = line.ProductID
	s.PurchaseType = line.PurchaseType
	s.VolumeMl = line.VolumeMl
	s.QuantitySold = line.QuantitySold
	s.TotalPrice = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.QuantitySold)))
	s.UpdatedAt = time.Now()
	return nil
}
