package trade

import (
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryInput represents the shipping details of a checkout
type DeliveryInput struct {
	RecipientName string `json:"recipient_name" binding:"required,max=200"`
	Phone         string `json:"phone" binding:"required,max=30"`
	Address       string `json:"address" binding:"required,max=1000"`
	Note          string `json:"note" binding:"max=500"`
}

// CheckoutItemInput represents one line of a checkout
type CheckoutItemInput struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1,max=10000"`
	VolumeMl     int64     `json:"volume_ml" binding:"required,min=1,max=100000"`
	PurchaseType string    `json:"purchase_type" binding:"required,purchase_type"`
}

// CheckoutRequest represents an online checkout
type CheckoutRequest struct {
	BranchID     uuid.UUID           `json:"branch_id" binding:"required"`
	Delivery     DeliveryInput       `json:"delivery" binding:"required"`
	Items        []CheckoutItemInput `json:"items" binding:"required,min=1,dive"`
	ProofFileRef string              `json:"proof_file_ref" binding:"required,max=500"`
}

// RejectOrderRequest carries the reason an order is rejected
type RejectOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	BranchID   *uuid.UUID `form:"branch_id"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=PENDING_PAYMENT APPROVED REJECTED"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	VolumeMl        int64           `json:"volume_ml"`
	PurchaseType    string          `json:"purchase_type"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	BranchID        uuid.UUID           `json:"branch_id"`
	Status          string              `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ProofOfPayment  string              `json:"proof_of_payment"`
	Delivery        DeliveryInput       `json:"delivery"`
	Items           []OrderItemResponse `json:"items"`
	DecidedBy       *uuid.UUID          `json:"decided_by,omitempty"`
	DecidedAt       *time.Time          `json:"decided_at,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Version         int                 `json:"version"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			VolumeMl:        item.VolumeMl,
			PurchaseType:    item.PurchaseType.String(),
			PriceAtPurchase: item.PriceAtPurchase,
			LineTotal:       item.LineTotal(),
		}
	}
	return OrderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		BranchID:       o.BranchID,
		Status:         o.Status.String(),
		TotalAmount:    o.TotalAmount,
		ProofOfPayment: o.ProofOfPayment,
		Delivery: DeliveryInput{
			RecipientName: o.Delivery.RecipientName,
			Phone:         o.Delivery.Phone,
			Address:       o.Delivery.Address,
			Note:          o.Delivery.Note,
		},
		Items:           items,
		DecidedBy:       o.DecidedBy,
		DecidedAt:       o.DecidedAt,
		RejectionReason: o.RejectionReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// SaleRequest carries the fields of a staff-entered sale
type SaleRequest struct {
	BranchID     uuid.UUID `json:"branch_id" binding:"required"`
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	PurchaseType string    `json:"purchase_type" binding:"required,purchase_type"`
	VolumeMl     int64     `json:"volume_ml" binding:"required,min=1,max=100000"`
	QuantitySold int       `json:"quantity_sold" binding:"required,min=1,max=10000"`
}

// SalesListFilter represents filter options for sales queries
type SalesListFilter struct {
	BranchID  *uuid.UUID `form:"branch_id"`
	ProductID *uuid.UUID `form:"product_id"`
	Source    string     `form:"source" binding:"omitempty,oneof=ONLINE OFFLINE"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}

// SalesRecordResponse represents a sale in API responses
type SalesRecordResponse struct {
	ID              uuid.UUID       `json:"id"`
	EmployeeID      uuid.UUID       `json:"employee_id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	PurchaseType    string          `json:"purchase_type"`
	VolumeMl        int64           `json:"volume_ml"`
	QuantitySold    int             `json:"quantity_sold"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Source          string          `json:"source"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// ToSalesRecordResponse converts a domain SalesRecord
func ToSalesRecordResponse(s *trade.SalesRecord) SalesRecordResponse {
	return SalesRecordResponse{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		BranchID:        s.BranchID,
		ProductID:       s.ProductID,
		PurchaseType:    s.PurchaseType.String(),
		VolumeMl:        s.VolumeMl,
		QuantitySold:    s.QuantitySold,
		TotalPrice:      s.TotalPrice,
		Source:          s.Source.String(),
		OrderID:         s.OrderID,
		TransactionDate: s.TransactionDate,
	}
}

// ToSalesRecordResponses converts a slice of sales
func ToSalesRecordResponses(records []trade.SalesRecord) []SalesRecordResponse {
	out := make([]SalesRecordResponse, len(records))
	for i := range records {
		out[i] = ToSalesRecordResponse(&records[i])
	}
	return out
}

// TotalsResponse is an aggregate over a group of sales
type TotalsResponse struct {
	Count        int64           `json:"count"`
	UnitsSold    int64           `json:"units_sold"`
	VolumeMl     int64           `json:"volume_ml"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

func toTotals(t trade.SalesTotals) TotalsResponse {
	return TotalsResponse{
		Count:        t.Count,
		UnitsSold:    t.UnitsSold,
		VolumeMl:     t.VolumeMl,
		TotalRevenue: t.TotalRevenue,
	}
}

// SourceTotalsResponse groups totals by channel
type SourceTotalsResponse struct {
	Source string `json:"source"`
	TotalsResponse
}

// ProductTotalsResponse groups totals by product
type ProductTotalsResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	TotalsResponse
}

// SalesReportResponse is the summary over a filtered set of sales
type SalesReportResponse struct {
	From      *time.Time              `json:"from,omitempty"`
	To        *time.Time              `json:"to,omitempty"`
	Totals    TotalsResponse          `json:"totals"`
	BySource  []SourceTotalsResponse  `json:"by_source"`
	ByProduct []ProductTotalsResponse `json:"by_product"`
}

// ToSalesReportResponse converts a domain SalesSummary
func ToSalesReportResponse(s *trade.SalesSummary) SalesReportResponse {
	resp := SalesReportResponse{
		Totals:    toTotals(s.Totals),
		BySource:  make([]SourceTotalsResponse, len(s.BySource)),
		ByProduct: make([]ProductTotalsResponse, len(s.ByProduct)),
	}
	if !s.Period.From.IsZero() {
		from := s.Period.From
		resp.From = &from
	}
	if !s.Period.To.IsZero() {
		to := s.Period.To
		resp.To = &to
	}
	for i, t := range s.BySource {
		resp.BySource[i] = SourceTotalsResponse{Source: t.Source.String(), TotalsResponse: toTotals(t.SalesTotals)}
	}
	for i, t := range s.ByProduct {
		resp.ByProduct[i] = ProductTotalsResponse{ProductID: t.ProductID, TotalsResponse: toTotals(t.SalesTotals)}
	}
	return resp
}

// SalesBucketResponse is one point of a sales time series
type SalesBucketResponse struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	TotalsResponse
}

// ToSalesBucketResponses converts a time series
func ToSalesBucketResponses(buckets []trade.SalesBucket) []SalesBucketResponse {
	out := make([]SalesBucketResponse, len(buckets))
	for i, b := range buckets {
		out[i] = SalesBucketResponse{Label: b.Label, Start: b.Start, TotalsResponse: toTotals(b.SalesTotals)}
	}
	return out
}

func (f SalesListFilter) toDomain(branchID *uuid.UUID) (trade.SalesFilter, error) {
	filter := trade.SalesFilter{BranchID: branchID, ProductID: f.ProductID}
	if f.Source != "" {
		source := trade.SaleSource(f.Source)
		if !source.IsValid() {
			return filter, shared.NewInvalidInputError("invalid sale source %q", f.Source)
		}
		filter.Source = &source
	}
	if f.From != nil {
		filter.Period.From = *f.From
	}
	if f.To != nil {
		// the upper bound is inclusive of the whole day
		filter.Period.To = f.To.AddDate(0, 0, 1)
	}
	if !filter.Period.From.IsZero() && !filter.Period.To.IsZero() && !filter.Period.From.Before(filter.Period.To) {
		return filter, shared.NewInvalidInputError("from must not be after to")
	}
	return filter, nil
}
