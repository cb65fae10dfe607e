package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	catalogapp "github.com/fathiyyah28/proyek-sub000/internal/application/catalog"
	invapp "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	tradeapp "github.com/fathiyyah28/proyek-sub000/internal/application/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/cache"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/persistence"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/persistence/models"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/storage"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testAPI serves the ledger handlers over a file-backed sqlite database.
// The caller is chosen per request instead of through a bearer token.
type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	actor  *shared.Actor
}

func newTestAPI(t *testing.T) *testAPI {
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

	repos := persistence.NewRepositories(db)
	scope := persistence.NewGormTransactionScope(db, 0)
	deriver := catalog.NewPriceDeriver(decimal.NewFromInt(5000))

	proofStore, err := storage.NewLocalProofStorage(t.TempDir(), nil)
	require.NoError(t, err)
	proofs := tradeapp.NewProofService(proofStore, 1<<20, nil)

	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })

	products := catalogapp.NewProductService(scope, repos.Products, nil)
	orders := tradeapp.NewOrderService(scope, repos.Products, repos.BranchStock, repos.Orders, deriver, nil)
	orders.SetPriceHealer(products)
	orders.SetProofVerifier(proofs)
	orders.SetIdempotencyStore(idempotency, time.Hour)
	sales := tradeapp.NewSaleService(scope, repos.Sales, deriver, nil)
	sales.SetPriceHealer(products)
	stock := invapp.NewStockService(scope, repos.Products, repos.GlobalStock, repos.History, repos.BranchStock, nil)
	stock.SetLowStockThreshold(200)
	distributions := invapp.NewDistributionService(scope, repos.Distributions, nil)

	a := &testAPI{t: t, engine: gin.New()}
	a.engine.Use(func(c *gin.Context) {
		if a.actor != nil {
			c.Set(middleware.ActorKey, *a.actor)
		}
		c.Next()
	})

	api := a.engine.Group("/api/v1")

	ph := NewProductHandler(products)
	api.POST("/products", ph.Create)
	api.GET("/products", ph.List)
	api.POST("/products/normalize-pricing", ph.NormalizePricing)
	api.GET("/products/:id", ph.GetByID)
	api.PUT("/products/:id", ph.Update)
	api.PUT("/products/:id/pricing", ph.UpdatePricing)
	api.DELETE("/products/:id", ph.Delete)

	sh := NewStockHandler(stock)
	api.GET("/stock/global", sh.ListGlobal)
	api.POST("/stock/global/restock", sh.Restock)
	api.POST("/stock/global/adjust", sh.Adjust)
	api.GET("/stock/global/history", sh.History)
	api.GET("/stock/global/:productId", sh.GetGlobal)
	api.GET("/stock/global/:productId/verify", sh.VerifyHistory)
	api.GET("/stock/branches", sh.ListBranch)
	api.GET("/stock/branches/:branchId/products/:productId", sh.GetBranch)
	api.GET("/stock/low-stock", sh.LowStock)

	dh := NewDistributionHandler(distributions)
	api.POST("/distributions", dh.Distribute)
	api.GET("/distributions", dh.List)
	api.GET("/distributions/:id", dh.GetByID)
	api.POST("/distributions/:id/confirm", dh.Confirm)

	oh := NewOrderHandler(orders, proofs)
	api.POST("/orders/proofs", oh.UploadProof)
	api.POST("/orders", oh.Checkout)
	api.GET("/orders/mine", oh.Mine)
	api.GET("/orders", oh.List)
	api.GET("/orders/:id", oh.GetByID)
	api.POST("/orders/:id/approve", oh.Approve)
	api.POST("/orders/:id/reject", oh.Reject)

	salesHandler := NewSaleHandler(sales, time.UTC)
	api.POST("/sales", salesHandler.Record)
	api.GET("/sales", salesHandler.List)
	api.GET("/sales/report", salesHandler.Report)
	api.GET("/sales/aggregate", salesHandler.Aggregate)
	api.GET("/sales/:id", salesHandler.GetByID)
	api.PUT("/sales/:id", salesHandler.Update)
	api.DELETE("/sales/:id", salesHandler.Delete)

	return a
}

func ownerActor() shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleOwner, nil)
}

func employeeActor(branchID uuid.UUID) shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleEmployee, &branchID)
}

func customerActor() shared.Actor {
	return shared.NewActor(uuid.New(), shared.RoleCustomer, nil)
}

// as sets the caller of the following requests; nil sends them anonymously.
func (a *testAPI) as(actor *shared.Actor) *testAPI {
	a.actor = actor
	return a
}

func (a *testAPI) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) upload(path, fileName, contentType string, content []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(a.t, err)
	_, err = part.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data envelope of a successful response
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	return resp.Data
}

// createProduct creates a per-ml priced product as the owner
func (a *testAPI) createProduct(name string, perMl, initialMl int64) uuid.UUID {
	a.t.Helper()
	owner := ownerActor()
	w := a.as(&owner).do(http.MethodPost, "/api/v1/products", map[string]any{
		"name":             name,
		"price_per_ml":     decimal.NewFromInt(perMl),
		"initial_stock_ml": initialMl,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[catalogapp.ProductResponse](a.t, w).ID
}

// stockBranch restocks the warehouse and moves the bottles to branchID
func (a *testAPI) stockBranch(branchID, productID uuid.UUID, bottles, bottleMl int) {
	a.t.Helper()
	owner := ownerActor()
	w := a.as(&owner).do(http.MethodPost, "/api/v1/stock/global/restock", invapp.RestockRequest{
		ProductID: productID, UnitQuantity: bottles, UnitVolumeMl: bottleMl,
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/v1/distributions", invapp.DistributeRequest{
		BranchID: branchID, ProductID: productID, UnitQuantity: bottles, UnitVolumeMl: bottleMl,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	d := decodeData[invapp.DistributionResponse](a.t, w)

	employee := employeeActor(branchID)
	w = a.as(&employee).do(http.MethodPost, "/api/v1/distributions/"+d.ID.String()+"/confirm", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
}

// branchQty reads a branch balance as the owner and keeps the current caller
func (a *testAPI) branchQty(branchID, productID uuid.UUID) int64 {
	a.t.Helper()
	caller := a.actor
	defer a.as(caller)
	owner := ownerActor()
	w := a.as(&owner).do(http.MethodGet, "/api/v1/stock/branches/"+branchID.String()+"/products/"+productID.String(), nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decodeData[BranchStockData](a.t, w).QuantityMl
}
