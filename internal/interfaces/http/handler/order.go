package handler

import (
	"errors"
	"net/http"

	tradeapp "github.com/fathiyyah28/proyek-sub000/internal/application/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/dto"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// proofFormField is the multipart field carrying a proof of payment
const proofFormField = "file"

// OrderHandler serves online checkout and order review
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
	proofService *tradeapp.ProofService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService, proofService *tradeapp.ProofService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		proofService: proofService,
	}
}

// OrderQuery are the query parameters of the order list
type OrderQuery struct {
	BranchID   string `form:"branch_id"`
	CustomerID string `form:"customer_id"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING_PAYMENT APPROVED REJECTED"`
}

// UploadProof godoc
// @Summary      Upload a proof of payment
// @Description  Stores a jpeg, png, webp or pdf file and returns the reference to pass to checkout
// @Tags         orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Proof of payment"
// @Success      201 {object} APIResponse[tradeapp.ProofResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/proofs [post]
func (h *OrderHandler) UploadProof(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	header, err := c.FormFile(proofFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Proof file is too large")
			return
		}
		h.BadRequest(c, "Multipart field 'file' is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	proof, err := h.proofService.Upload(c.Request.Context(), actor, tradeapp.ProofUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, proof)
}

// Checkout godoc
// @Summary      Place an online order
// @Description  Creates a PENDING_PAYMENT order priced from the catalog. Stock is checked, not reserved.
// @Description  A repeated Idempotency-Key returns the first order.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request body tradeapp.CheckoutRequest true "Checkout"
// @Success      201 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req tradeapp.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), actor, req, c.GetHeader(middleware.IdempotencyKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Approve godoc
// @Summary      Approve an order
// @Description  Deducts branch stock for every line and records ONLINE sales, all or nothing
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Reject godoc
// @Summary      Reject an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                      true  "Order ID"
// @Param        request body tradeapp.RejectOrderRequest false "Reason"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/reject [post]
func (h *OrderHandler) Reject(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RejectOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByID godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @Summary      List orders
// @Description  Customers see their own orders, employees their branch, the owner everything
// @Tags         orders
// @Produce      json
// @Param        branch_id   query string false "Branch ID"
// @Param        customer_id query string false "Customer ID"
// @Param        status      query string false "PENDING_PAYMENT, APPROVED or REJECTED"
// @Success      200 {object} APIResponse[[]tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var q OrderQuery
	if !h.bindQuery(c, &q) {
		return
	}
	branchID, err := optionalUUID("branch_id", q.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	customerID, err := optionalUUID("customer_id", q.CustomerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	orders, err := h.orderService.List(c.Request.Context(), actor, tradeapp.OrderListFilter{
		BranchID:   branchID,
		CustomerID: customerID,
		Status:     q.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Mine godoc
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[[]tradeapp.OrderResponse]
// @Security     BearerAuth
// @Router       /orders/mine [get]
func (h *OrderHandler) Mine(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
