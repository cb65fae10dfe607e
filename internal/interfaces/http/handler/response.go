package handler

import "github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// CountData represents a count in a response
// @Description Count data
type CountData struct {
	Count int `json:"count"`
}

// BranchStockData is a single branch balance
// @Description Balance of one product at one branch
type BranchStockData struct {
	BranchID   string `json:"branch_id"`
	ProductID  string `json:"product_id"`
	QuantityMl int64  `json:"quantity_ml"`
}

// ChainStatusData is the result of a history verification
// @Description Whether the warehouse balance chain replays cleanly
type ChainStatusData struct {
	ProductID string `json:"product_id"`
	Valid     bool   `json:"valid"`
}
