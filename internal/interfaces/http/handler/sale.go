package handler

import (
	"time"

	tradeapp "github.com/fathiyyah28/proyek-sub000/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SaleHandler serves offline sales and sales reporting
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
	location    *time.Location
}

// NewSaleHandler creates a new SaleHandler. Date filters are read in loc.
func NewSaleHandler(saleService *tradeapp.SaleService, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{
		saleService: saleService,
		location:    loc,
	}
}

// SalesQuery are the query parameters shared by the sales list and reports
type SalesQuery struct {
	BranchID  string `form:"branch_id"`
	ProductID string `form:"product_id"`
	Source    string `form:"source" binding:"omitempty,oneof=ONLINE OFFLINE"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// AggregateQuery adds the bucket size to SalesQuery
type AggregateQuery struct {
	SalesQuery
	Bucket string `form:"bucket" binding:"omitempty,oneof=day month"`
}

// Record godoc
// @Summary      Record an offline sale
// @Description  Deducts branch stock and stores the sale with the derived unit price
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.SaleRequest true "Sale"
// @Success      201 {object} APIResponse[tradeapp.SalesRecordResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Record(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req tradeapp.SaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.Record(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Update godoc
// @Summary      Correct an offline sale
// @Description  Returns the old volume to its branch and deducts the new one in the same transaction
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Sale ID"
// @Param        request body tradeapp.SaleRequest true "Sale"
// @Success      200 {object} APIResponse[tradeapp.SalesRecordResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [put]
func (h *SaleHandler) Update(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.SaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete godoc
// @Summary      Delete an offline sale
// @Description  Returns the sold volume to the branch stock
// @Tags         sales
// @Param        id path string true "Sale ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [delete]
func (h *SaleHandler) Delete(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.saleService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetByID godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} APIResponse[tradeapp.SalesRecordResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Description  Newest first; employees only see their own branch
// @Tags         sales
// @Produce      json
// @Param        branch_id  query string false "Branch ID"
// @Param        product_id query string false "Product ID"
// @Param        source     query string false "ONLINE or OFFLINE"
// @Param        from       query string false "First day, YYYY-MM-DD"
// @Param        to         query string false "Last day inclusive, YYYY-MM-DD"
// @Success      200 {object} APIResponse[[]tradeapp.SalesRecordResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	sales, err := h.saleService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sales)
}

// Report godoc
// @Summary      Sales report
// @Description  Totals per channel and per product for the filtered sales
// @Tags         sales
// @Produce      json
// @Param        branch_id  query string false "Branch ID"
// @Param        product_id query string false "Product ID"
// @Param        source     query string false "ONLINE or OFFLINE"
// @Param        from       query string false "First day, YYYY-MM-DD"
// @Param        to         query string false "Last day inclusive, YYYY-MM-DD"
// @Success      200 {object} APIResponse[tradeapp.SalesReportResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/report [get]
func (h *SaleHandler) Report(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	report, err := h.saleService.Report(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Aggregate godoc
// @Summary      Sales time series
// @Description  Sales grouped by day or month in the shop time zone
// @Tags         sales
// @Produce      json
// @Param        bucket     query string false "day (default) or month"
// @Param        branch_id  query string false "Branch ID"
// @Param        product_id query string false "Product ID"
// @Param        source     query string false "ONLINE or OFFLINE"
// @Param        from       query string false "First day, YYYY-MM-DD"
// @Param        to         query string false "Last day inclusive, YYYY-MM-DD"
// @Success      200 {object} APIResponse[[]tradeapp.SalesBucketResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/aggregate [get]
func (h *SaleHandler) Aggregate(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var q AggregateQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter, err := h.toFilter(q.SalesQuery)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	bucket := q.Bucket
	if bucket == "" {
		bucket = "day"
	}

	buckets, err := h.saleService.Aggregate(c.Request.Context(), actor, filter, bucket)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, buckets)
}

func (h *SaleHandler) bindFilter(c *gin.Context) (tradeapp.SalesListFilter, bool) {
	var q SalesQuery
	if !h.bindQuery(c, &q) {
		return tradeapp.SalesListFilter{}, false
	}
	filter, err := h.toFilter(q)
	if err != nil {
		h.HandleError(c, err)
		return tradeapp.SalesListFilter{}, false
	}
	return filter, true
}

func (h *SaleHandler) toFilter(q SalesQuery) (tradeapp.SalesListFilter, error) {
	filter := tradeapp.SalesListFilter{Source: q.Source}
	var err error
	if filter.BranchID, err = optionalUUID("branch_id", q.BranchID); err != nil {
		return filter, err
	}
	if filter.ProductID, err = optionalUUID("product_id", q.ProductID); err != nil {
		return filter, err
	}
	if filter.From, err = optionalDate("from", q.From, h.location); err != nil {
		return filter, err
	}
	if filter.To, err = optionalDate("to", q.To, h.location); err != nil {
		return filter, err
	}
	return filter, nil
}
