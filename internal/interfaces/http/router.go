package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/inventario-pos/internal/application/auth"
	"github.com/tu-usuario/inventario-pos/internal/application/stock"
	"github.com/tu-usuario/inventario-pos/internal/application/usecase"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *usecase.ProductUseCase
	Engine       *stock.Engine
	HistoryQuery *stock.HistoryQuery
	Stats        *stock.Stats
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products: catálogo + mutaciones de stock
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Engine, deps.Stats)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	// Rutas fijas antes de /:id para que Fiber no las capture como parámetro
	products.Get("/stats", productHandler.Dashboard)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Post("/:id/restock", productHandler.Restock)
	products.Post("/:id/sale", productHandler.Sale)
	products.Post("/:id/adjust", productHandler.Adjust)
	products.Delete("/:id", productHandler.SoftDelete)
	products.Delete("/:id/permanent", RequireRole(entity.RoleAdmin), productHandler.HardDelete)

	// History: ledger de stock (solo lectura)
	history := protected.Group("/history")
	historyHandler := NewHistoryHandler(deps.HistoryQuery, deps.Stats)
	history.Get("/", historyHandler.List)
	history.Get("/stats", historyHandler.Stats)
	history.Get("/product/:productId", historyHandler.ListByProduct)
}
