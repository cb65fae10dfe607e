package trade

import (
	"errors"
	"testing"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDelivery() DeliveryInfo {
	return DeliveryInfo{RecipientName: "Sari", Phone: "0812", Address: "Jl. Melati 1"}
}

func testProduct(t *testing.T, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "", catalog.PerMlPricing(decimal.NewFromInt(100)))
	require.NoError(t, err)
	return p
}

func newPendingOrder(t *testing.T, branchID uuid.UUID) *Order {
	t.Helper()
	order, err := NewOrder(uuid.New(), branchID, testDelivery(), "proofs/abc.jpg")
	require.NoError(t, err)
	_, err = order.AddItem(testProduct(t, "Oud"), 2, 50, catalog.PurchaseTypeNewBottle, decimal.NewFromInt(10000))
	require.NoError(t, err)
	return order
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPendingPayment, OrderStatusApproved, true},
		{OrderStatusPendingPayment, OrderStatusRejected, true},
		{OrderStatusApproved, OrderStatusRejected, false},
		{OrderStatusRejected, OrderStatusApproved, false},
		{OrderStatusApproved, OrderStatusApproved, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
	assert.True(t, OrderStatusApproved.IsTerminal())
	assert.False(t, OrderStatusPendingPayment.IsTerminal())
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending order", func(t *testing.T) {
		order := newPendingOrder(t, uuid.New())
		assert.Equal(t, OrderStatusPendingPayment, order.Status)
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(20000)))
		require.Len(t, order.Items, 1)
		assert.Equal(t, int64(100), order.Items[0].RequiredMl())
		assert.Equal(t, order.ID, order.Items[0].OrderID)
	})

	t.Run("requires proof of payment", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), uuid.New(), testDelivery(), " ")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("requires delivery address", func(t *testing.T) {
		d := testDelivery()
		d.Address = ""
		_, err := NewOrder(uuid.New(), uuid.New(), d, "proof")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects non positive item price", func(t *testing.T) {
		order, err := NewOrder(uuid.New(), uuid.New(), testDelivery(), "proof")
		require.NoError(t, err)
		_, err = order.AddItem(testProduct(t, "Oud"), 1, 50, catalog.PurchaseTypeRefill, decimal.Zero)
		assert.True(t, errors.Is(err, shared.ErrInvalidPrice))
	})
}

func TestOrder_RequiredByProduct(t *testing.T) {
	order, err := NewOrder(uuid.New(), uuid.New(), testDelivery(), "proof")
	require.NoError(t, err)
	p := testProduct(t, "Oud")
	_, err = order.AddItem(p, 2, 50, catalog.PurchaseTypeRefill, decimal.NewFromInt(5000))
	require.NoError(t, err)
	_, err = order.AddItem(p, 1, 30, catalog.PurchaseTypeNewBottle, decimal.NewFromInt(8000))
	require.NoError(t, err)

	required, err := order.RequiredByProduct()
	require.NoError(t, err)
	assert.Equal(t, int64(130), required[p.ID])
}

func TestOrder_AddItemRejectsVolumeOverflow(t *testing.T) {
	price := decimal.NewFromInt(600)

	t.Run("single line", func(t *testing.T) {
		order, err := NewOrder(uuid.New(), uuid.New(), testDelivery(), "proof")
		require.NoError(t, err)
		_, err = order.AddItem(testProduct(t, "Oud"), 1<<62, 4, catalog.PurchaseTypeRefill, price)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Empty(t, order.Items)
		assert.True(t, order.TotalAmount.IsZero())
	})

	t.Run("sum of lines for one product", func(t *testing.T) {
		order, err := NewOrder(uuid.New(), uuid.New(), testDelivery(), "proof")
		require.NoError(t, err)
		p := testProduct(t, "Oud")
		_, err = order.AddItem(p, 1<<60, 4, catalog.PurchaseTypeRefill, price)
		require.NoError(t, err)
		_, err = order.AddItem(p, 1<<60, 4, catalog.PurchaseTypeRefill, price)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Len(t, order.Items, 1)
	})
}

func TestOrder_Approve(t *testing.T) {
	branchID := uuid.New()

	t.Run("branch staff approves own branch order", func(t *testing.T) {
		order := newPendingOrder(t, branchID)
		actor := shared.NewActor(uuid.New(), shared.RoleEmployee, &branchID)

		require.NoError(t, order.Approve(actor))
		assert.Equal(t, OrderStatusApproved, order.Status)
		assert.Equal(t, actor.ID, *order.DecidedBy)
		assert.NotNil(t, order.DecidedAt)
	})

	t.Run("owner approves any branch", func(t *testing.T) {
		order := newPendingOrder(t, branchID)
		require.NoError(t, order.Approve(shared.NewActor(uuid.New(), shared.RoleOwner, nil)))
	})

	t.Run("staff of another branch is forbidden", func(t *testing.T) {
		order := newPendingOrder(t, branchID)
		other := uuid.New()
		err := order.Approve(shared.NewActor(uuid.New(), shared.RoleEmployee, &other))
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		assert.Equal(t, OrderStatusPendingPayment, order.Status)
	})

	t.Run("customer cannot approve", func(t *testing.T) {
		order := newPendingOrder(t, branchID)
		err := order.Approve(shared.NewActor(order.CustomerID, shared.RoleCustomer, nil))
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	})

	t.Run("rejected order cannot be approved", func(t *testing.T) {
		order := newPendingOrder(t, branchID)
		owner := shared.NewActor(uuid.New(), shared.RoleOwner, nil)
		require.NoError(t, order.Reject(owner, "blurry transfer slip"))

		err := order.Approve(owner)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Equal(t, OrderStatusRejected, order.Status)
		assert.Equal(t, "blurry transfer slip", order.RejectionReason)
	})

	t.Run("zero locked-in price fails", func(t *testing.T) {
		order := newPendingOrder(t, branchID)
		order.Items[0].PriceAtPurchase = decimal.Zero
		err := order.Approve(shared.NewActor(uuid.New(), shared.RoleOwner, nil))
		assert.True(t, errors.Is(err, shared.ErrInvalidPrice))
	})
}

func TestOrder_IsVisibleTo(t *testing.T) {
	branchID := uuid.New()
	other := uuid.New()
	order := newPendingOrder(t, branchID)

	assert.True(t, order.IsVisibleTo(shared.NewActor(uuid.New(), shared.RoleOwner, nil)))
	assert.True(t, order.IsVisibleTo(shared.NewActor(uuid.New(), shared.RoleEmployee, &branchID)))
	assert.False(t, order.IsVisibleTo(shared.NewActor(uuid.New(), shared.RoleEmployee, &other)))
	assert.True(t, order.IsVisibleTo(shared.NewActor(order.CustomerID, shared.RoleCustomer, nil)))
	assert.False(t, order.IsVisibleTo(shared.NewActor(uuid.New(), shared.RoleCustomer, nil)))
}

func TestOrder_ItemsInLockOrder(t *testing.T) {
	order, err := NewOrder(uuid.New(), uuid.New(), testDelivery(), "proof")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = order.AddItem(testProduct(t, "P"), 1, 10, catalog.PurchaseTypeRefill, decimal.NewFromInt(1000))
		require.NoError(t, err)
	}

	items := order.ItemsInLockOrder()
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].ProductID.String() <= items[i].ProductID.String())
	}
}
