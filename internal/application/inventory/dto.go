package inventory

import (
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/google/uuid"
)

// GlobalStockResponse represents a warehouse row in API responses
type GlobalStockResponse struct {
	ProductID  uuid.UUID `json:"product_id"`
	QuantityMl int64     `json:"quantity_ml"`
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToGlobalStockResponse converts a domain GlobalStock to a response
func ToGlobalStockResponse(s *inventory.GlobalStock) GlobalStockResponse {
	return GlobalStockResponse{
		ProductID:  s.ProductID,
		QuantityMl: s.Quantity,
		Version:    s.Version,
		UpdatedAt:  s.UpdatedAt,
	}
}

// HistoryResponse represents one warehouse movement
type HistoryResponse struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       uuid.UUID  `json:"product_id"`
	Sequence        int64      `json:"sequence"`
	ChangeAmount    int64      `json:"change_amount"`
	PreviousBalance int64      `json:"previous_balance"`
	NewBalance      int64      `json:"new_balance"`
	Type            string     `json:"type"`
	Reason          string     `json:"reason,omitempty"`
	ReferenceID     *uuid.UUID `json:"reference_id,omitempty"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToHistoryResponses converts history entries to responses
func ToHistoryResponses(entries []inventory.GlobalStockHistory) []HistoryResponse {
	out := make([]HistoryResponse, len(entries))
	for i, h := range entries {
		out[i] = HistoryResponse{
			ID:              h.ID,
			ProductID:       h.ProductID,
			Sequence:        h.Sequence,
			ChangeAmount:    h.ChangeAmount,
			PreviousBalance: h.PreviousBalance,
			NewBalance:      h.NewBalance,
			Type:            h.Type.String(),
			Reason:          h.Reason,
			ReferenceID:     h.ReferenceID,
			CreatedBy:       h.CreatedBy,
			CreatedAt:       h.CreatedAt,
		}
	}
	return out
}

// BranchStockResponse represents a branch row in API responses
type BranchStockResponse struct {
	ID         uuid.UUID `json:"id"`
	BranchID   uuid.UUID `json:"branch_id"`
	ProductID  uuid.UUID `json:"product_id"`
	QuantityMl int64     `json:"quantity_ml"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToBranchStockResponses converts branch rows to responses
func ToBranchStockResponses(rows []inventory.BranchStock) []BranchStockResponse {
	out := make([]BranchStockResponse, len(rows))
	for i, s := range rows {
		out[i] = BranchStockResponse{
			ID:         s.ID,
			BranchID:   s.BranchID,
			ProductID:  s.ProductID,
			QuantityMl: s.Quantity,
			UpdatedAt:  s.UpdatedAt,
		}
	}
	return out
}

// DistributionResponse represents a distribution in API responses
type DistributionResponse struct {
	ID            uuid.UUID  `json:"id"`
	BranchID      uuid.UUID  `json:"branch_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	QuantityMl    int64      `json:"quantity_ml"`
	UnitQuantity  int        `json:"unit_quantity"`
	UnitVolumeMl  int        `json:"unit_volume_ml"`
	Note          string     `json:"note,omitempty"`
	Status        string     `json:"status"`
	DistributedBy uuid.UUID  `json:"distributed_by"`
	DistributedAt time.Time  `json:"distributed_at"`
	ReceivedBy    *uuid.UUID `json:"received_by,omitempty"`
	ReceivedAt    *time.Time `json:"received_at,omitempty"`
}

// ToDistributionResponse converts a domain distribution to a response
func ToDistributionResponse(d *inventory.StockDistribution) DistributionResponse {
	return DistributionResponse{
		ID:            d.ID,
		BranchID:      d.BranchID,
		ProductID:     d.ProductID,
		QuantityMl:    d.Quantity,
		UnitQuantity:  d.UnitQuantity,
		UnitVolumeMl:  d.UnitVolumeMl,
		Note:          d.Note,
		Status:        d.Status.String(),
		DistributedBy: d.DistributedBy,
		DistributedAt: d.DistributedAt,
		ReceivedBy:    d.ReceivedBy,
		ReceivedAt:    d.ReceivedAt,
	}
}

// LowStockResponse lists rows under the alert threshold
type LowStockResponse struct {
	ThresholdMl int64                 `json:"threshold_ml"`
	Global      []GlobalStockResponse `json:"global"`
	Branches    []BranchStockResponse `json:"branches"`
}

// RestockRequest adds bottles to the warehouse
type RestockRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	UnitQuantity int       `json:"unit_quantity" binding:"required,min=1"`
	UnitVolumeMl int       `json:"unit_volume_ml" binding:"required,min=1"`
	Reason       string    `json:"reason" binding:"max=500"`
}

// AdjustRequest sets the warehouse balance after a physical count
type AdjustRequest struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	QuantityMl int64     `json:"quantity_ml" binding:"min=0"`
	Reason     string    `json:"reason" binding:"required,max=500"`
}

// DistributeRequest moves bottles from the warehouse to a branch
type DistributeRequest struct {
	BranchID     uuid.UUID `json:"branch_id" binding:"required"`
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	UnitQuantity int       `json:"unit_quantity" binding:"required,min=1"`
	UnitVolumeMl int       `json:"unit_volume_ml" binding:"required,min=1"`
	Note         string    `json:"note" binding:"max=500"`
}

// DistributionListFilter represents filter options for the distribution list
type DistributionListFilter struct {
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING RECEIVED"`
	BranchID *uuid.UUID `form:"branch_id"`
}

// HistoryListFilter represents filter options for the warehouse history
type HistoryListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=500"`
}
