package handler

import (
	invapp "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// StockHandler serves the warehouse and branch ledgers
type StockHandler struct {
	BaseHandler
	stockService *invapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *invapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// HistoryQuery are the query parameters of the warehouse history
type HistoryQuery struct {
	ProductID string `form:"product_id"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// BranchQuery narrows a request to one branch
type BranchQuery struct {
	BranchID string `form:"branch_id"`
}

// LowStockQuery are the query parameters of the low-stock alert
type LowStockQuery struct {
	BranchID    string `form:"branch_id"`
	ThresholdMl int64  `form:"threshold_ml" binding:"omitempty,min=1"`
}

// ListGlobal godoc
// @Summary      List warehouse stock
// @Tags         stock
// @Produce      json
// @Success      200 {object} APIResponse[[]invapp.GlobalStockResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/global [get]
func (h *StockHandler) ListGlobal(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	rows, err := h.stockService.ListGlobalStock(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// GetGlobal godoc
// @Summary      Get warehouse stock of a product
// @Description  Returns zero for a product that never moved
// @Tags         stock
// @Produce      json
// @Param        productId path string true "Product ID"
// @Success      200 {object} APIResponse[invapp.GlobalStockResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/global/{productId} [get]
func (h *StockHandler) GetGlobal(c *gin.Context) {
	if _, ok := h.requireActor(c); !ok {
		return
	}
	productID, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}

	stock, err := h.stockService.GetGlobalStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Restock godoc
// @Summary      Restock the warehouse
// @Description  Adds unit_quantity bottles of unit_volume_ml to the warehouse (owner only)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body invapp.RestockRequest true "Restock"
// @Success      200 {object} APIResponse[invapp.GlobalStockResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/global/restock [post]
func (h *StockHandler) Restock(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req invapp.RestockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	stock, err := h.stockService.Restock(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Adjust godoc
// @Summary      Adjust warehouse stock after a count
// @Description  Sets the warehouse balance and records the signed difference (owner only)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body invapp.AdjustRequest true "Adjustment"
// @Success      200 {object} APIResponse[invapp.GlobalStockResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/global/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req invapp.AdjustRequest
	if !h.bindJSON(c, &req) {
		return
	}

	stock, err := h.stockService.Adjust(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// History godoc
// @Summary      Warehouse movement history
// @Description  Newest first; all products unless product_id is given
// @Tags         stock
// @Produce      json
// @Param        product_id query string false "Product ID"
// @Param        page       query int    false "Page number"
// @Param        page_size  query int    false "Page size"
// @Success      200 {object} APIResponse[[]invapp.HistoryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/global/history [get]
func (h *StockHandler) History(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var q HistoryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	productID, err := optionalUUID("product_id", q.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	entries, err := h.stockService.History(c.Request.Context(), actor, invapp.HistoryListFilter{
		ProductID: productID,
		Page:      q.Page,
		PageSize:  q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// VerifyHistory godoc
// @Summary      Verify the warehouse balance chain
// @Description  Replays the history of a product against its current balance (owner only)
// @Tags         stock
// @Produce      json
// @Param        productId path string true "Product ID"
// @Success      200 {object} APIResponse[ChainStatusData]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/global/{productId}/verify [get]
func (h *StockHandler) VerifyHistory(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}

	if err := h.stockService.VerifyHistory(c.Request.Context(), actor, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ChainStatusData{ProductID: productID.String(), Valid: true})
}

// ListBranch godoc
// @Summary      List branch stock
// @Description  All branches for the owner; employees always see their own branch
// @Tags         stock
// @Produce      json
// @Param        branch_id query string false "Branch ID"
// @Success      200 {object} APIResponse[[]invapp.BranchStockResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/branches [get]
func (h *StockHandler) ListBranch(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var q BranchQuery
	if !h.bindQuery(c, &q) {
		return
	}
	branchID, err := optionalUUID("branch_id", q.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	rows, err := h.stockService.ListBranchStock(c.Request.Context(), actor, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// GetBranch godoc
// @Summary      Get the stock of a product at a branch
// @Description  Returns zero when the branch never held the product
// @Tags         stock
// @Produce      json
// @Param        branchId  path string true "Branch ID"
// @Param        productId path string true "Product ID"
// @Success      200 {object} APIResponse[BranchStockData]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/branches/{branchId}/products/{productId} [get]
func (h *StockHandler) GetBranch(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	branchID, ok := h.pathUUID(c, "branchId")
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}

	qty, err := h.stockService.GetBranchStock(c.Request.Context(), actor, branchID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BranchStockData{
		BranchID:   branchID.String(),
		ProductID:  productID.String(),
		QuantityMl: qty,
	})
}

// LowStock godoc
// @Summary      Low-stock alerts
// @Description  Warehouse (owner only) and branch rows below threshold_ml, defaulting to the configured threshold
// @Tags         stock
// @Produce      json
// @Param        branch_id    query string false "Branch ID"
// @Param        threshold_ml query int    false "Alert threshold in ml"
// @Success      200 {object} APIResponse[invapp.LowStockResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/low-stock [get]
func (h *StockHandler) LowStock(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var q LowStockQuery
	if !h.bindQuery(c, &q) {
		return
	}
	branchID, err := optionalUUID("branch_id", q.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.stockService.LowStock(c.Request.Context(), actor, branchID, q.ThresholdMl)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
