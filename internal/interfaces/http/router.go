package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/biztracker/internal/application/analytics"
	"github.com/jhoicas/biztracker/internal/application/relationship"
	"github.com/jhoicas/biztracker/internal/application/usecase"
	"github.com/jhoicas/biztracker/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC        *usecase.ItemUseCase
	PurchaseUC    *usecase.PurchaseUseCase
	SaleUC        *usecase.SaleUseCase
	AssetUC       *usecase.AssetUseCase
	Relationships *relationship.Store
	Converter     *relationship.Converter
	Jobs          *relationship.JobRunner
	DashboardUC   *appanalytics.DashboardUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Relationships
	rels := api.Group("/relationships")
	relHandler := NewRelationshipHandler(deps.Relationships)
	convHandler := NewConversionHandler(deps.Converter, deps.Jobs)
	rels.Get("/", relHandler.List)
	rels.Post("/", relHandler.Create)
	rels.Get("/primary/:id/:type", relHandler.ByPrimary)
	rels.Get("/secondary/:id/:type", relHandler.BySecondary)
	rels.Post("/convert/:entityType/:entityId", convHandler.ConvertEntity)
	rels.Post("/convert-all", RequireRole(jwt.RoleOwner), convHandler.ConvertAll)
	rels.Get("/jobs/:jobId", convHandler.JobStatus)
	rels.Post("/product-material/:productId/:materialId", relHandler.LinkProductMaterial)
	rels.Post("/purchase-item/:purchaseId/:itemId", relHandler.LinkPurchaseItem)
	rels.Post("/sale-item/:saleId/:itemId", relHandler.LinkSaleItem)
	rels.Get("/:id", relHandler.GetByID)
	rels.Patch("/:id", relHandler.Update)
	rels.Delete("/:id", relHandler.Delete)

	// Items
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)

	// Purchases
	purchases := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Delete("/:id", purchaseHandler.Delete)

	// Sales
	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Delete("/:id", saleHandler.Delete)

	// Assets
	assets := api.Group("/assets")
	assetHandler := NewAssetHandler(deps.AssetUC)
	assets.Post("/", assetHandler.Create)
	assets.Get("/", assetHandler.List)
	assets.Get("/:id", assetHandler.GetByID)
	assets.Delete("/:id", assetHandler.Delete)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard/summary", dashboardHandler.GetSummary)
}
