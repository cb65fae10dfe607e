package trade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestOrderService(r *testRepos) *OrderService {
	return NewOrderService(r.scope(), r.products, r.branchStock, r.orders, catalog.DefaultPriceDeriver(), nil)
}

func checkoutRequest(branchID, productID uuid.UUID, quantity int, volumeMl int64, purchaseType string) CheckoutRequest {
	return CheckoutRequest{
		BranchID: branchID,
		Delivery: DeliveryInput{
			RecipientName: "Ayu",
			Phone:         "08123456789",
			Address:       "Jl. Melati 5",
		},
		Items: []CheckoutItemInput{
			{ProductID: productID, Quantity: quantity, VolumeMl: volumeMl, PurchaseType: purchaseType},
		},
		ProofFileRef: "proofs/transfer.jpg",
	}
}

func pendingOrder(t *testing.T, branchID uuid.UUID, product *catalog.Product, quantity int, volumeMl int64, unitPrice int64) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(uuid.New(), branchID, trade.DeliveryInfo{
		RecipientName: "Ayu", Phone: "0812", Address: "Jl. Melati 5",
	}, "proofs/transfer.jpg")
	require.NoError(t, err)
	_, err = order.AddItem(product, quantity, volumeMl, catalog.PurchaseTypeNewBottle, decimal.NewFromInt(unitPrice))
	require.NoError(t, err)
	return order
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()

	t.Run("locks in per-ml price plus bottle fee", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)
		r.branchStock.On("FindByBranchAndProduct", mock.Anything, branchID, product.ID).Return(stockOf(branchID, product.ID, 1000), nil)
		r.orders.On("Create", mock.Anything, mock.AnythingOfType("*trade.Order")).Return(nil)

		resp, err := newTestOrderService(r).Checkout(ctx, customer(), checkoutRequest(branchID, product.ID, 2, 50, "NEW_BOTTLE"), "")
		require.NoError(t, err)

		assert.Equal(t, trade.OrderStatusPendingPayment.String(), resp.Status)
		require.Len(t, resp.Items, 1)
		assert.True(t, decimal.NewFromInt(10000).Equal(resp.Items[0].PriceAtPurchase))
		assert.True(t, decimal.NewFromInt(20000).Equal(resp.TotalAmount))
		r.orders.AssertExpectations(t)
	})

	t.Run("stock is checked but not reserved", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)
		r.branchStock.On("FindByBranchAndProduct", mock.Anything, branchID, product.ID).Return(stockOf(branchID, product.ID, 100), nil)
		r.orders.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := newTestOrderService(r).Checkout(ctx, customer(), checkoutRequest(branchID, product.ID, 2, 50, "REFILL"), "")
		require.NoError(t, err)

		r.branchStock.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		r.branchStock.AssertNotCalled(t, "FindForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insufficient branch stock", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)
		r.branchStock.On("FindByBranchAndProduct", mock.Anything, branchID, product.ID).Return(stockOf(branchID, product.ID, 50), nil)

		_, err := newTestOrderService(r).Checkout(ctx, customer(), checkoutRequest(branchID, product.ID, 2, 50, "REFILL"), "")
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing branch row counts as empty", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)
		r.branchStock.On("FindByBranchAndProduct", mock.Anything, branchID, product.ID).Return(nil, shared.ErrNotFound)

		_, err := newTestOrderService(r).Checkout(ctx, customer(), checkoutRequest(branchID, product.ID, 1, 30, "REFILL"), "")
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("unknown product", func(t *testing.T) {
		r := newTestRepos()
		missing := uuid.New()
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{missing}).Return([]catalog.Product{}, nil)

		_, err := newTestOrderService(r).Checkout(ctx, customer(), checkoutRequest(branchID, missing, 1, 30, "REFILL"), "")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("unpriced product", func(t *testing.T) {
		r := newTestRepos()
		product := newUnpricedProduct("Unpriced")
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)

		_, err := newTestOrderService(r).Checkout(ctx, customer(), checkoutRequest(branchID, product.ID, 1, 30, "REFILL"), "")
		assert.True(t, errors.Is(err, shared.ErrInvalidPrice))
	})

	t.Run("invalid purchase type", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)

		_, err := newTestOrderService(r).Checkout(ctx, customer(), checkoutRequest(branchID, product.ID, 1, 30, "SAMPLE"), "")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("missing proof of payment", func(t *testing.T) {
		r := newTestRepos()
		req := checkoutRequest(branchID, uuid.New(), 1, 30, "REFILL")
		req.ProofFileRef = ""

		_, err := newTestOrderService(r).Checkout(ctx, customer(), req, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		r.products.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})

	t.Run("legacy price is healed after the order is stored", func(t *testing.T) {
		r := newTestRepos()
		product := newLegacyProduct("Legacy Musk", 90000)
		healer := new(MockPriceHealer)
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)
		r.branchStock.On("FindByBranchAndProduct", mock.Anything, branchID, product.ID).Return(stockOf(branchID, product.ID, 1000), nil)
		r.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		healer.On("HealPricing", mock.Anything, product.ID, mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(3000))
		})).Return()

		svc := newTestOrderService(r)
		svc.SetPriceHealer(healer)
		resp, err := svc.Checkout(ctx, customer(), checkoutRequest(branchID, product.ID, 1, 30, "REFILL"), "")
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(90000).Equal(resp.TotalAmount))
		healer.AssertExpectations(t)
	})
}

func TestOrderService_Checkout_Idempotency(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	buyer := customer()

	t.Run("retry returns the first order", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		var created *trade.Order
		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)
		r.branchStock.On("FindByBranchAndProduct", mock.Anything, branchID, product.ID).Return(stockOf(branchID, product.ID, 1000), nil)
		r.orders.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*trade.Order) }).
			Return(nil).Once()

		svc := newTestOrderService(r)
		svc.SetIdempotencyStore(store, time.Hour)
		req := checkoutRequest(branchID, product.ID, 1, 30, "REFILL")

		first, err := svc.Checkout(ctx, buyer, req, "key-1")
		require.NoError(t, err)

		r.orders.On("FindByID", mock.Anything, first.ID).Return(created, nil)

		second, err := svc.Checkout(ctx, buyer, req, "key-1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		r.orders.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("in-flight key is a conflict", func(t *testing.T) {
		r := newTestRepos()
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.Reserve(ctx, "checkout:"+buyer.ID.String()+":key-2", time.Hour)
		require.NoError(t, err)

		svc := newTestOrderService(r)
		svc.SetIdempotencyStore(store, time.Hour)
		_, err = svc.Checkout(ctx, buyer, checkoutRequest(branchID, uuid.New(), 1, 30, "REFILL"), "key-2")
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})

	t.Run("failed checkout releases the key", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		r.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)
		r.branchStock.On("FindByBranchAndProduct", mock.Anything, branchID, product.ID).Return(stockOf(branchID, product.ID, 0), nil)

		svc := newTestOrderService(r)
		svc.SetIdempotencyStore(store, time.Hour)
		_, err := svc.Checkout(ctx, buyer, checkoutRequest(branchID, product.ID, 1, 30, "REFILL"), "key-3")
		require.Error(t, err)

		_, found, err := store.Result(ctx, "checkout:"+buyer.ID.String()+":key-3")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestOrderService_Approve(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()

	t.Run("debits branch and writes one online sale per item", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 2, 50, 10000)
		stock := stockOf(branchID, product.ID, 1000)

		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)
		r.branchStock.On("FindForUpdate", mock.Anything, branchID, product.ID).Return(stock, nil)
		r.branchStock.On("Save", mock.Anything, stock).Return(nil)
		var sales []*trade.SalesRecord
		r.sales.On("Create", mock.Anything, mock.AnythingOfType("*trade.SalesRecord")).
			Run(func(args mock.Arguments) { sales = append(sales, args.Get(1).(*trade.SalesRecord)) }).
			Return(nil)
		r.orders.On("UpdateStatus", mock.Anything, order).Return(nil)

		approver := employeeOf(branchID)
		resp, err := newTestOrderService(r).Approve(ctx, approver, order.ID)
		require.NoError(t, err)

		assert.Equal(t, trade.OrderStatusApproved.String(), resp.Status)
		assert.Equal(t, int64(900), stock.Quantity)
		require.Len(t, sales, 1)
		assert.Equal(t, trade.SaleSourceOnline, sales[0].Source)
		assert.Equal(t, 2, sales[0].QuantitySold)
		assert.True(t, decimal.NewFromInt(20000).Equal(sales[0].TotalPrice))
		require.NotNil(t, sales[0].OrderID)
		assert.Equal(t, order.ID, *sales[0].OrderID)
		assert.Equal(t, approver.ID, sales[0].EmployeeID)
	})

	t.Run("insufficient stock leaves order pending and writes no sales", func(t *testing.T) {
		r := newTestRepos()
		rich := newPerMlProduct("Rich", 100)
		poor := newPerMlProduct("Poor", 100)
		order := pendingOrder(t, branchID, rich, 1, 50, 10000)
		_, err := order.AddItem(poor, 1, 50, catalog.PurchaseTypeRefill, decimal.NewFromInt(5000))
		require.NoError(t, err)

		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)
		r.branchStock.On("FindForUpdate", mock.Anything, branchID, rich.ID).Return(stockOf(branchID, rich.ID, 1000), nil).Maybe()
		r.branchStock.On("FindForUpdate", mock.Anything, branchID, poor.ID).Return(stockOf(branchID, poor.ID, 10), nil)
		r.branchStock.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()

		_, err = newTestOrderService(r).Approve(ctx, owner(), order.ID)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, trade.OrderStatusPendingPayment, order.Status)
		r.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		r.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("employee of another branch is forbidden", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 1, 50, 10000)
		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)

		_, err := newTestOrderService(r).Approve(ctx, employeeOf(uuid.New()), order.ID)
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		r.branchStock.AssertNotCalled(t, "FindForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already decided order", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 1, 50, 10000)
		require.NoError(t, order.Reject(owner(), "blurry proof"))
		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)

		_, err := newTestOrderService(r).Approve(ctx, owner(), order.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("locked price that is no longer positive", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 1, 50, 10000)
		order.Items[0].PriceAtPurchase = decimal.Zero
		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)

		_, err := newTestOrderService(r).Approve(ctx, owner(), order.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidPrice))
		r.branchStock.AssertNotCalled(t, "FindForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("logs stock failures", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 1, 50, 10000)
		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)
		r.branchStock.On("FindForUpdate", mock.Anything, branchID, product.ID).Return(nil, shared.ErrNotFound)

		core, logs := observer.New(zap.WarnLevel)
		svc := NewOrderService(r.scope(), r.products, r.branchStock, r.orders, catalog.DefaultPriceDeriver(), zap.New(core))
		_, err := svc.Approve(ctx, owner(), order.ID)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, 1, logs.FilterMessage("Order approval rejected by stock check").Len())
	})
}

// Two approvals of the same order race for the order row lock. With the
// lock serializing them, only the first sees PENDING_PAYMENT.
func TestOrderService_Approve_SerializedByOrderLock(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	r := newTestRepos()
	product := newPerMlProduct("Oud Royal", 100)
	order := pendingOrder(t, branchID, product, 1, 50, 10000)
	stock := stockOf(branchID, product.ID, 1000)

	var lock sync.Mutex
	r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Run(func(mock.Arguments) { lock.Lock() }).Return(order, nil)
	r.branchStock.On("FindForUpdate", mock.Anything, branchID, product.ID).Return(stock, nil)
	r.branchStock.On("Save", mock.Anything, stock).Return(nil)
	r.sales.On("Create", mock.Anything, mock.Anything).Return(nil)
	r.orders.On("UpdateStatus", mock.Anything, order).Return(nil)

	svc := newTestOrderService(r)
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Approve(ctx, owner(), order.ID)
			lock.Unlock()
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, invalid int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, shared.ErrInvalidState):
			invalid++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, invalid)
	assert.Equal(t, int64(950), stock.Quantity)
	r.sales.AssertNumberOfCalls(t, "Create", 1)
}

func TestOrderService_Reject(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()

	t.Run("rejects without touching stock", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 1, 50, 10000)
		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)
		r.orders.On("UpdateStatus", mock.Anything, order).Return(nil)

		resp, err := newTestOrderService(r).Reject(ctx, employeeOf(branchID), order.ID, "transfer not received")
		require.NoError(t, err)

		assert.Equal(t, trade.OrderStatusRejected.String(), resp.Status)
		assert.Equal(t, "transfer not received", resp.RejectionReason)
		r.branchStock.AssertNotCalled(t, "FindForUpdate", mock.Anything, mock.Anything, mock.Anything)
		r.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("approved order cannot be rejected", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 1, 50, 10000)
		require.NoError(t, order.Approve(owner()))
		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)

		_, err := newTestOrderService(r).Reject(ctx, owner(), order.ID, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("customers cannot decide orders", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 1, 50, 10000)
		r.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil)

		_, err := newTestOrderService(r).Reject(ctx, customer(), order.ID, "")
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	})
}

func TestOrderService_Visibility(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()

	t.Run("other customers see not found", func(t *testing.T) {
		r := newTestRepos()
		product := newPerMlProduct("Oud Royal", 100)
		order := pendingOrder(t, branchID, product, 1, 50, 10000)
		r.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := newTestOrderService(r).Get(ctx, customer(), order.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("customer list is forced to own orders", func(t *testing.T) {
		r := newTestRepos()
		buyer := customer()
		other := uuid.New()
		r.orders.On("FindAll", mock.Anything, trade.OrderFilter{CustomerID: &buyer.ID}).Return([]trade.Order{}, nil)

		_, err := newTestOrderService(r).List(ctx, buyer, OrderListFilter{CustomerID: &other})
		require.NoError(t, err)
		r.orders.AssertExpectations(t)
	})

	t.Run("employee list is scoped to own branch", func(t *testing.T) {
		r := newTestRepos()
		r.orders.On("FindAll", mock.Anything, trade.OrderFilter{BranchID: &branchID}).Return([]trade.Order{}, nil)

		_, err := newTestOrderService(r).List(ctx, employeeOf(branchID), OrderListFilter{})
		require.NoError(t, err)
		r.orders.AssertExpectations(t)
	})

	t.Run("employee asking for another branch", func(t *testing.T) {
		r := newTestRepos()
		other := uuid.New()
		_, err := newTestOrderService(r).List(ctx, employeeOf(branchID), OrderListFilter{BranchID: &other})
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	})
}
