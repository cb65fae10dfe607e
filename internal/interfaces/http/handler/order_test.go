package handler

import (
	"net/http"
	"strings"
	"testing"

	tradeapp "github.com/fathiyyah28/proyek-sub000/internal/application/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/dto"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadProof stores a png proof as the current caller and returns its reference
func (a *testAPI) uploadProof() string {
	a.t.Helper()
	w := a.upload("/api/v1/orders/proofs", "transfer.png", "image/png", []byte("\x89PNG\r\n\x1a\nproof"))
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[tradeapp.ProofResponse](a.t, w).ProofFileRef
}

func checkoutBody(branchID, productID uuid.UUID, quantity int, volumeMl int64, proofRef string) tradeapp.CheckoutRequest {
	return tradeapp.CheckoutRequest{
		BranchID: branchID,
		Delivery: tradeapp.DeliveryInput{RecipientName: "Sari", Phone: "0812", Address: "Jl. Melati 1"},
		Items: []tradeapp.CheckoutItemInput{
			{ProductID: productID, Quantity: quantity, VolumeMl: volumeMl, PurchaseType: "REFILL"},
		},
		ProofFileRef: proofRef,
	}
}

func TestOrderHandler_UploadProof(t *testing.T) {
	api := newTestAPI(t)
	customer := customerActor()
	api.as(&customer)

	w := api.upload("/api/v1/orders/proofs", "transfer.png", "image/png", []byte("png"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	proof := decodeData[tradeapp.ProofResponse](t, w)
	assert.True(t, strings.HasPrefix(proof.ProofFileRef, "proofs/"))
	assert.True(t, strings.HasSuffix(proof.ProofFileRef, ".png"))
	assert.Equal(t, int64(3), proof.Size)
	assert.Equal(t, "image/png", proof.ContentType)

	w = api.upload("/api/v1/orders/proofs", "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decodeErrorInfo(t, w).Code)

	w = api.do(http.MethodPost, "/api/v1/orders/proofs", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.as(nil).upload("/api/v1/orders/proofs", "transfer.png", "image/png", []byte("png"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_CheckoutAndApprove(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 0)
	branchID := uuid.New()
	api.stockBranch(branchID, productID, 1, 500)

	customer := customerActor()
	api.as(&customer)
	w := api.do(http.MethodPost, "/api/v1/orders", checkoutBody(branchID, productID, 2, 50, api.uploadProof()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeData[tradeapp.OrderResponse](t, w)
	assert.Equal(t, "PENDING_PAYMENT", order.Status)
	assert.Equal(t, customer.ID, order.CustomerID)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(10000)), order.TotalAmount.String())
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].PriceAtPurchase.Equal(decimal.NewFromInt(5000)))

	assert.Equal(t, int64(500), api.branchQty(branchID, productID), "checkout does not reserve stock")

	employee := employeeActor(branchID)
	w = api.as(&employee).do(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeData[tradeapp.OrderResponse](t, w)
	assert.Equal(t, "APPROVED", approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, employee.ID, *approved.DecidedBy)

	assert.Equal(t, int64(400), api.branchQty(branchID, productID))

	w = api.as(&employee).do(http.MethodGet, "/api/v1/sales?source=ONLINE", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sales := decodeData[[]tradeapp.SalesRecordResponse](t, w)
	require.Len(t, sales, 1)
	require.NotNil(t, sales[0].OrderID)
	assert.Equal(t, order.ID, *sales[0].OrderID)
	assert.True(t, sales[0].TotalPrice.Equal(decimal.NewFromInt(10000)))

	w = api.do(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "an order is decided once")
	assert.Equal(t, int64(400), api.branchQty(branchID, productID))
}

func TestOrderHandler_CheckoutRejectsMissingStockAndProof(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 0)
	branchID := uuid.New()
	api.stockBranch(branchID, productID, 1, 100)

	customer := customerActor()
	api.as(&customer)
	proof := api.uploadProof()

	w := api.do(http.MethodPost, "/api/v1/orders", checkoutBody(branchID, productID, 3, 50, proof))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	info := decodeErrorInfo(t, w)
	assert.Equal(t, dto.ErrCodeInsufficientStock, info.Code)
	assert.Contains(t, info.Message, "Oud Wood")

	w = api.do(http.MethodPost, "/api/v1/orders", checkoutBody(branchID, productID, 1, 50, "proofs/2025/01/missing.png"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decodeErrorInfo(t, w).Code)

	body := checkoutBody(branchID, productID, 1, 50, proof)
	body.Items = nil
	w = api.do(http.MethodPost, "/api/v1/orders", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeErrorInfo(t, w).Code)

	body = checkoutBody(branchID, productID, 1, 50, proof)
	body.Items[0].PurchaseType = "SAMPLE"
	w = api.do(http.MethodPost, "/api/v1/orders", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/orders", checkoutBody(branchID, uuid.New(), 1, 50, proof))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_CheckoutIdempotencyKey(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 0)
	branchID := uuid.New()
	api.stockBranch(branchID, productID, 1, 500)

	customer := customerActor()
	api.as(&customer)
	body := checkoutBody(branchID, productID, 1, 50, api.uploadProof())

	first := api.do(http.MethodPost, "/api/v1/orders", body, middleware.IdempotencyKeyHeader, "retry-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := api.do(http.MethodPost, "/api/v1/orders", body, middleware.IdempotencyKeyHeader, "retry-1")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t,
		decodeData[tradeapp.OrderResponse](t, first).ID,
		decodeData[tradeapp.OrderResponse](t, second).ID,
	)

	third := api.do(http.MethodPost, "/api/v1/orders", body, middleware.IdempotencyKeyHeader, "retry-2")
	require.Equal(t, http.StatusCreated, third.Code)

	w := api.do(http.MethodGet, "/api/v1/orders/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]tradeapp.OrderResponse](t, w), 2)
}

func TestOrderHandler_RejectKeepsStock(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 0)
	branchID := uuid.New()
	api.stockBranch(branchID, productID, 1, 500)

	customer := customerActor()
	api.as(&customer)
	w := api.do(http.MethodPost, "/api/v1/orders", checkoutBody(branchID, productID, 1, 100, api.uploadProof()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeData[tradeapp.OrderResponse](t, w)

	w = api.do(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/reject", tradeapp.RejectOrderRequest{Reason: "Payment not received"})
	assert.Equal(t, http.StatusForbidden, w.Code, "customers do not decide orders")

	otherBranch := employeeActor(uuid.New())
	w = api.as(&otherBranch).do(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/reject", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	owner := ownerActor()
	w = api.as(&owner).do(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/reject", tradeapp.RejectOrderRequest{Reason: "Payment not received"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rejected := decodeData[tradeapp.OrderResponse](t, w)
	assert.Equal(t, "REJECTED", rejected.Status)
	assert.Equal(t, "Payment not received", rejected.RejectionReason)

	w = api.do(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(500), api.branchQty(branchID, productID))
}

func TestOrderHandler_ApproveShortfallLeavesOrderPending(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 0)
	branchID := uuid.New()
	api.stockBranch(branchID, productID, 1, 100)

	var orderIDs []uuid.UUID
	for i := 0; i < 2; i++ {
		customer := customerActor()
		api.as(&customer)
		w := api.do(http.MethodPost, "/api/v1/orders", checkoutBody(branchID, productID, 1, 80, api.uploadProof()))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		orderIDs = append(orderIDs, decodeData[tradeapp.OrderResponse](t, w).ID)
	}

	owner := ownerActor()
	api.as(&owner)
	w := api.do(http.MethodPost, "/api/v1/orders/"+orderIDs[0].String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/v1/orders/"+orderIDs[1].String()+"/approve", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, decodeErrorInfo(t, w).Code)

	w = api.do(http.MethodGet, "/api/v1/orders/"+orderIDs[1].String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING_PAYMENT", decodeData[tradeapp.OrderResponse](t, w).Status)
	assert.Equal(t, int64(20), api.branchQty(branchID, productID))
}

func TestOrderHandler_Visibility(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 0)
	branchA, branchB := uuid.New(), uuid.New()
	api.stockBranch(branchA, productID, 1, 500)
	api.stockBranch(branchB, productID, 1, 500)

	alice, bob := customerActor(), customerActor()
	api.as(&alice)
	w := api.do(http.MethodPost, "/api/v1/orders", checkoutBody(branchA, productID, 1, 50, api.uploadProof()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	aliceOrder := decodeData[tradeapp.OrderResponse](t, w)

	api.as(&bob)
	w = api.do(http.MethodPost, "/api/v1/orders", checkoutBody(branchB, productID, 1, 50, api.uploadProof()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/v1/orders/"+aliceOrder.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "another customer's order is not disclosed")

	w = api.do(http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decodeData[[]tradeapp.OrderResponse](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, bob.ID, mine[0].CustomerID)

	employee := employeeActor(branchA)
	api.as(&employee)
	w = api.do(http.MethodGet, "/api/v1/orders?status=PENDING_PAYMENT", nil)
	require.Equal(t, http.StatusOK, w.Code)
	branchOrders := decodeData[[]tradeapp.OrderResponse](t, w)
	require.Len(t, branchOrders, 1)
	assert.Equal(t, aliceOrder.ID, branchOrders[0].ID)

	w = api.do(http.MethodGet, "/api/v1/orders?branch_id="+branchB.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/orders?status=PAID", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	owner := ownerActor()
	w = api.as(&owner).do(http.MethodGet, "/api/v1/orders?customer_id="+alice.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]tradeapp.OrderResponse](t, w), 1)
}
