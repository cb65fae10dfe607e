package router

import (
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/handler"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/middleware"
)

// Handlers are the resource handlers served under the versioned API
type Handlers struct {
	Product      *handler.ProductHandler
	Stock        *handler.StockHandler
	Distribution *handler.DistributionHandler
	Order        *handler.OrderHandler
	Sale         *handler.SaleHandler
}

// LedgerGroups builds the route groups of the ledger API.
// Role guards reject callers early; branch scoping stays in the services.
func LedgerGroups(h Handlers) []*DomainGroup {
	owner := middleware.RequireOwner()
	staff := middleware.RequireStaff()

	products := NewDomainGroup("products", "/products")
	products.GET("", h.Product.List).
		GET("/:id", h.Product.GetByID).
		POST("", owner, h.Product.Create).
		POST("/normalize-pricing", owner, h.Product.NormalizePricing).
		PUT("/:id", owner, h.Product.Update).
		PUT("/:id/pricing", owner, h.Product.UpdatePricing).
		DELETE("/:id", owner, h.Product.Delete)

	stock := NewDomainGroup("stock", "/stock").Use(staff)
	global := stock.Group("global", "/global")
	global.GET("", h.Stock.ListGlobal).
		GET("/history", h.Stock.History).
		GET("/:productId", h.Stock.GetGlobal).
		GET("/:productId/verify", owner, h.Stock.VerifyHistory).
		POST("/restock", owner, h.Stock.Restock).
		POST("/adjust", owner, h.Stock.Adjust)
	stock.GET("/branches", h.Stock.ListBranch).
		GET("/branches/:branchId/products/:productId", h.Stock.GetBranch).
		GET("/low-stock", h.Stock.LowStock)

	distributions := NewDomainGroup("distributions", "/distributions").Use(staff)
	distributions.POST("", owner, h.Distribution.Distribute).
		GET("", h.Distribution.List).
		GET("/:id", h.Distribution.GetByID).
		POST("/:id/confirm", h.Distribution.Confirm)

	orders := NewDomainGroup("orders", "/orders")
	orders.POST("/proofs", h.Order.UploadProof).
		POST("", h.Order.Checkout).
		GET("/mine", h.Order.Mine).
		GET("", h.Order.List).
		GET("/:id", h.Order.GetByID).
		POST("/:id/approve", staff, h.Order.Approve).
		POST("/:id/reject", staff, h.Order.Reject)

	sales := NewDomainGroup("sales", "/sales").Use(staff)
	sales.POST("", h.Sale.Record).
		GET("", h.Sale.List).
		GET("/report", h.Sale.Report).
		GET("/aggregate", h.Sale.Aggregate).
		GET("/:id", h.Sale.GetByID).
		PUT("/:id", h.Sale.Update).
		DELETE("/:id", h.Sale.Delete)

	return []*DomainGroup{products, stock, distributions, orders, sales}
}

// RegisterLedger adds the ledger route groups to r
func RegisterLedger(r *Router, h Handlers) *Router {
	for _, g := range LedgerGroups(h) {
		r.Register(g)
	}
	return r
}
