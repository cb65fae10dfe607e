package persistence_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	appcatalog "github.com/fathiyyah28/proyek-sub000/internal/application/catalog"
	appinv "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	apptrade "github.com/fathiyyah28/proyek-sub000/internal/application/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/persistence"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ledger wires the real services over a file-backed sqlite database.
// A single connection serializes transactions the way row locks do.
type ledger struct {
	db           *gorm.DB
	repos        persistence.Repositories
	products     *appcatalog.ProductService
	stock        *appinv.StockService
	distribution *appinv.DistributionService
	orders       *apptrade.OrderService
	sales        *apptrade.SaleService
}

func newLedger(t *testing.T) *ledger {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return wireLedger(db, 0)
}

// wireLedger builds the services the way cmd/server does.
func wireLedger(db *gorm.DB, lockTimeout time.Duration) *ledger {
	repos := persistence.NewRepositories(db)
	scope := persistence.NewGormTransactionScope(db, lockTimeout)
	deriver := catalog.NewPriceDeriver(decimal.NewFromInt(5000))

	products := appcatalog.NewProductService(scope, repos.Products, nil)
	orders := apptrade.NewOrderService(scope, repos.Products, repos.BranchStock, repos.Orders, deriver, nil)
	orders.SetPriceHealer(products)
	sales := apptrade.NewSaleService(scope, repos.Sales, deriver, nil)
	sales.SetPriceHealer(products)

	return &ledger{
		db:           db,
		repos:        repos,
		products:     products,
		stock:        appinv.NewStockService(scope, repos.Products, repos.GlobalStock, repos.History, repos.BranchStock, nil),
		distribution: appinv.NewDistributionService(scope, repos.Distributions, nil),
		orders:       orders,
		sales:        sales,
	}
}

func ownerActor() shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleOwner, nil)
}

func employeeActor(branchID uuid.UUID) shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleEmployee, &branchID)
}

func (l *ledger) createProduct(t *testing.T, name string, perMl int64, initialMl int64) uuid.UUID {
	t.Helper()
	price := decimal.NewFromInt(perMl)
	product, err := l.products.Create(context.Background(), ownerActor(), appcatalog.CreateProductRequest{
		Name:         name,
		PricePerMl:   &price,
		InitialStock: initialMl,
	})
	require.NoError(t, err)
	return product.ID
}

// stockBranch restocks the warehouse and moves amount to the branch
func (l *ledger) stockBranch(t *testing.T, branchID, productID uuid.UUID, bottles, bottleMl int) {
	t.Helper()
	ctx := context.Background()
	_, err := l.stock.Restock(ctx, ownerActor(), appinv.RestockRequest{ProductID: productID, UnitQuantity: bottles, UnitVolumeMl: bottleMl})
	require.NoError(t, err)
	d, err := l.distribution.Distribute(ctx, ownerActor(), appinv.DistributeRequest{
		BranchID: branchID, ProductID: productID, UnitQuantity: bottles, UnitVolumeMl: bottleMl,
	})
	require.NoError(t, err)
	_, err = l.distribution.Confirm(ctx, employeeActor(branchID), d.ID)
	require.NoError(t, err)
}

func (l *ledger) branchQty(t *testing.T, branchID, productID uuid.UUID) int64 {
	t.Helper()
	qty, err := l.stock.GetBranchStock(context.Background(), ownerActor(), branchID, productID)
	require.NoError(t, err)
	return qty
}

func (l *ledger) globalQty(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	stock, err := l.stock.GetGlobalStock(context.Background(), productID)
	require.NoError(t, err)
	return stock.QuantityMl
}

func TestLedger_BalanceChainReplays(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := ownerActor()
	productID := l.createProduct(t, "Oud Wood", 100, 2000)
	branchID := uuid.New()

	_, err := l.stock.Restock(ctx, owner, appinv.RestockRequest{ProductID: productID, UnitQuantity: 10, UnitVolumeMl: 100})
	require.NoError(t, err)
	_, err = l.distribution.Distribute(ctx, owner, appinv.DistributeRequest{BranchID: branchID, ProductID: productID, UnitQuantity: 5, UnitVolumeMl: 100})
	require.NoError(t, err)
	_, err = l.stock.Adjust(ctx, owner, appinv.AdjustRequest{ProductID: productID, QuantityMl: 2400, Reason: "Physical count"})
	require.NoError(t, err)

	assert.Equal(t, int64(2400), l.globalQty(t, productID))
	assert.NoError(t, l.stock.VerifyHistory(ctx, owner, productID))

	history, err := l.stock.History(ctx, owner, appinv.HistoryListFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "ADJUSTMENT", history[0].Type)
	assert.Equal(t, int64(-100), history[0].ChangeAmount)
	assert.Equal(t, "INITIAL", history[3].Type)
}

func TestLedger_DistributionConservation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := ownerActor()
	productID := l.createProduct(t, "Amber Musk", 80, 0)
	branchID := uuid.New()

	_, err := l.stock.Restock(ctx, owner, appinv.RestockRequest{ProductID: productID, UnitQuantity: 1, UnitVolumeMl: 1000})
	require.NoError(t, err)
	d, err := l.distribution.Distribute(ctx, owner, appinv.DistributeRequest{BranchID: branchID, ProductID: productID, UnitQuantity: 6, UnitVolumeMl: 100})
	require.NoError(t, err)

	// In transit: gone from the warehouse, not yet at the branch.
	assert.Equal(t, int64(400), l.globalQty(t, productID))
	assert.Equal(t, int64(0), l.branchQty(t, branchID, productID))

	_, err = l.distribution.Confirm(ctx, employeeActor(branchID), d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(400)+int64(600), l.globalQty(t, productID)+l.branchQty(t, branchID, productID))

	_, err = l.distribution.Confirm(ctx, employeeActor(branchID), d.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyConfirmed)
	assert.Equal(t, int64(600), l.branchQty(t, branchID, productID))

	_, err = l.distribution.Distribute(ctx, owner, appinv.DistributeRequest{BranchID: branchID, ProductID: productID, UnitQuantity: 5, UnitVolumeMl: 100})
	assert.ErrorIs(t, err, shared.ErrInsufficientGlobalStock)
	assert.Equal(t, int64(400), l.globalQty(t, productID))
}

func TestLedger_OrderApproval(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	branchID := uuid.New()
	productID := l.createProduct(t, "Oud Wood", 100, 0)
	l.stockBranch(t, branchID, productID, 1, 1000)

	customer := shared.NewActor(uuid.New(), shared.RoleCustomer, nil)
	order, err := l.orders.Checkout(ctx, customer, apptrade.CheckoutRequest{
		BranchID:     branchID,
		Delivery:     apptrade.DeliveryInput{RecipientName: "Sari", Phone: "0812", Address: "Jl. Melati 1"},
		Items:        []apptrade.CheckoutItemInput{{ProductID: productID, Quantity: 2, VolumeMl: 50, PurchaseType: "NEW_BOTTLE"}},
		ProofFileRef: "proofs/abc.jpg",
	}, "")
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, int64(1000), l.branchQty(t, branchID, productID))

	approved, err := l.orders.Approve(ctx, employeeActor(branchID), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)
	assert.Equal(t, int64(900), l.branchQty(t, branchID, productID))

	written, err := l.repos.Sales.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, trade.SaleSourceOnline, written[0].Source)
	assert.Equal(t, 2, written[0].QuantitySold)
	assert.True(t, written[0].TotalPrice.Equal(decimal.NewFromInt(20000)))

	_, err = l.orders.Approve(ctx, employeeActor(branchID), order.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, int64(900), l.branchQty(t, branchID, productID))
}

func TestLedger_OrderApprovalIsAtomic(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	branchID := uuid.New()
	plenty := l.createProduct(t, "Plenty", 100, 0)
	scarce := l.createProduct(t, "Scarce", 100, 0)
	l.stockBranch(t, branchID, plenty, 1, 1000)
	l.stockBranch(t, branchID, scarce, 1, 200)

	customer := shared.NewActor(uuid.New(), shared.RoleCustomer, nil)
	order, err := l.orders.Checkout(ctx, customer, apptrade.CheckoutRequest{
		BranchID: branchID,
		Delivery: apptrade.DeliveryInput{RecipientName: "Sari", Phone: "0812", Address: "Jl. Melati 1"},
		Items: []apptrade.CheckoutItemInput{
			{ProductID: plenty, Quantity: 1, VolumeMl: 100, PurchaseType: "REFILL"},
			{ProductID: scarce, Quantity: 2, VolumeMl: 100, PurchaseType: "REFILL"},
		},
		ProofFileRef: "proofs/abc.jpg",
	}, "")
	require.NoError(t, err)

	// A branch sale drains the scarce product between checkout and approval.
	_, err = l.sales.Record(ctx, employeeActor(branchID), apptrade.SaleRequest{
		BranchID: branchID, ProductID: scarce, PurchaseType: "REFILL", VolumeMl: 50, QuantitySold: 1,
	})
	require.NoError(t, err)

	_, err = l.orders.Approve(ctx, ownerActor(), order.ID)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	assert.Equal(t, int64(1000), l.branchQty(t, branchID, plenty))
	assert.Equal(t, int64(150), l.branchQty(t, branchID, scarce))
	written, err := l.repos.Sales.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, written)

	reloaded, err := l.orders.Get(ctx, ownerActor(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING_PAYMENT", reloaded.Status)
}

func TestLedger_ConcurrentApprovalsDeductOnce(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	branchID := uuid.New()
	productID := l.createProduct(t, "Oud Wood", 100, 0)
	l.stockBranch(t, branchID, productID, 1, 1000)

	customer := shared.NewActor(uuid.New(), shared.RoleCustomer, nil)
	order, err := l.orders.Checkout(ctx, customer, apptrade.CheckoutRequest{
		BranchID:     branchID,
		Delivery:     apptrade.DeliveryInput{RecipientName: "Sari", Phone: "0812", Address: "Jl. Melati 1"},
		Items:        []apptrade.CheckoutItemInput{{ProductID: productID, Quantity: 1, VolumeMl: 50, PurchaseType: "REFILL"}},
		ProofFileRef: "proofs/abc.jpg",
	}, "")
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.orders.Approve(ctx, employeeActor(branchID), order.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, shared.ErrInvalidState)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(950), l.branchQty(t, branchID, productID))
}

func TestLedger_SaleReversalRestoresStock(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	branchID := uuid.New()
	productID := l.createProduct(t, "Vanilla", 150, 0)
	l.stockBranch(t, branchID, productID, 5, 100)
	employee := employeeActor(branchID)

	sale, err := l.sales.Record(ctx, employee, apptrade.SaleRequest{
		BranchID: branchID, ProductID: productID, PurchaseType: "REFILL", VolumeMl: 30, QuantitySold: 3,
	})
	require.NoError(t, err)
	assert.True(t, sale.TotalPrice.Equal(decimal.NewFromInt(13500)))
	assert.Equal(t, int64(410), l.branchQty(t, branchID, productID))

	updated, err := l.sales.Update(ctx, employee, sale.ID, apptrade.SaleRequest{
		BranchID: branchID, ProductID: productID, PurchaseType: "REFILL", VolumeMl: 50, QuantitySold: 3,
	})
	require.NoError(t, err)
	assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(22500)))
	assert.Equal(t, int64(350), l.branchQty(t, branchID, productID))

	require.NoError(t, l.sales.Delete(ctx, employee, sale.ID))
	assert.Equal(t, int64(500), l.branchQty(t, branchID, productID))

	_, err = l.sales.Get(ctx, employee, sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLedger_VolumeOverflowIsRejected(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	branchID := uuid.New()
	productID := l.createProduct(t, "Amber", 150, 0)
	l.stockBranch(t, branchID, productID, 5, 100)

	_, err := l.sales.Record(ctx, employeeActor(branchID), apptrade.SaleRequest{
		BranchID: branchID, ProductID: productID, PurchaseType: "REFILL", VolumeMl: 4, QuantitySold: 1<<62 + 1,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, int64(500), l.branchQty(t, branchID, productID))

	sales, err := l.repos.Sales.FindAll(ctx, trade.SalesFilter{BranchID: &branchID})
	require.NoError(t, err)
	assert.Empty(t, sales)

	customer := shared.NewActor(uuid.New(), shared.RoleCustomer, nil)
	_, err = l.orders.Checkout(ctx, customer, apptrade.CheckoutRequest{
		BranchID:     branchID,
		Delivery:     apptrade.DeliveryInput{RecipientName: "Sari", Phone: "0812", Address: "Jl. Melati 1"},
		Items:        []apptrade.CheckoutItemInput{{ProductID: productID, Quantity: 1 << 62, VolumeMl: 4, PurchaseType: "REFILL"}},
		ProofFileRef: "proofs/abc.jpg",
	}, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	orders, err := l.repos.Orders.FindAll(ctx, trade.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestLedger_LegacyPriceIsHealed(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	branchID := uuid.New()
	productID := l.createProduct(t, "Heritage", 100, 0)
	l.stockBranch(t, branchID, productID, 1, 500)

	// Simulate a product migrated from the flat 30 ml price.
	require.NoError(t, l.db.Model(&models.ProductModel{}).
		Where("id = ?", productID).
		Updates(map[string]any{"price_per_ml": decimal.Zero, "price": decimal.NewFromInt(60000)}).Error)

	sale, err := l.sales.Record(ctx, employeeActor(branchID), apptrade.SaleRequest{
		BranchID: branchID, ProductID: productID, PurchaseType: "REFILL", VolumeMl: 30, QuantitySold: 1,
	})
	require.NoError(t, err)
	assert.True(t, sale.TotalPrice.Equal(decimal.NewFromInt(60000)))

	product, err := l.repos.Products.FindByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, product.Pricing.PerMl().Equal(decimal.NewFromInt(2000)))
}

func TestLedger_SalesSummary(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	branchID := uuid.New()
	first := l.createProduct(t, "First", 100, 0)
	second := l.createProduct(t, "Second", 200, 0)
	l.stockBranch(t, branchID, first, 1, 1000)
	l.stockBranch(t, branchID, second, 1, 1000)
	employee := employeeActor(branchID)

	for _, req := range []apptrade.SaleRequest{
		{BranchID: branchID, ProductID: first, PurchaseType: "REFILL", VolumeMl: 10, QuantitySold: 2},
		{BranchID: branchID, ProductID: first, PurchaseType: "REFILL", VolumeMl: 20, QuantitySold: 1},
		{BranchID: branchID, ProductID: second, PurchaseType: "REFILL", VolumeMl: 10, QuantitySold: 1},
	} {
		_, err := l.sales.Record(ctx, employee, req)
		require.NoError(t, err)
	}

	summary, err := l.repos.Sales.Summarize(ctx, trade.SalesFilter{BranchID: &branchID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Totals.Count)
	assert.Equal(t, int64(4), summary.Totals.UnitsSold)
	assert.Equal(t, int64(50), summary.Totals.VolumeMl)
	assert.True(t, summary.Totals.TotalRevenue.Equal(decimal.NewFromInt(6000)), summary.Totals.TotalRevenue.String())

	require.Len(t, summary.BySource, 1)
	assert.Equal(t, trade.SaleSourceOffline, summary.BySource[0].Source)
	require.Len(t, summary.ByProduct, 2)
	assert.Equal(t, first, summary.ByProduct[0].ProductID)
	assert.True(t, summary.ByProduct[0].TotalRevenue.Equal(decimal.NewFromInt(4000)))
}
