package persistence

import (
	"strings"

	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// paginate applies offset and limit. A zero page size returns every row.
func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	return query
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"price_per_ml": true,
	"price":        true,
}

// GlobalStockSortFields contains allowed sort fields for warehouse stock
var GlobalStockSortFields = map[string]bool{
	"product_id": true,
	"created_at": true,
	"updated_at": true,
	"quantity":   true,
}

// BranchStockSortFields contains allowed sort fields for branch stock
var BranchStockSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"branch_id":  true,
	"product_id": true,
	"quantity":   true,
}

// HistorySortFields contains allowed sort fields for warehouse history
var HistorySortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"product_id":    true,
	"sequence":      true,
	"change_amount": true,
}
