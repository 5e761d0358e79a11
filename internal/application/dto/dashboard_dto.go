package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain/inventory"
)

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	// Inventario
	ItemCount      int                    `json:"itemCount"`
	InventoryValue decimal.Decimal        `json:"inventoryValue"`
	StockStatus    inventory.StatusCounts `json:"stockStatus"`
	LowStock       []LowStockItemDTO      `json:"lowStock"`

	// Compras y ventas
	PurchaseCount int             `json:"purchaseCount"`
	PurchaseSpend decimal.Decimal `json:"purchaseSpend"`
	SaleCount     int             `json:"saleCount"`
	SalesRevenue  decimal.Decimal `json:"salesRevenue"`
	SalesProfit   decimal.Decimal `json:"salesProfit"` // Σ totalPrice − costo del ítem × cantidad vendida

	AssetValue decimal.Decimal `json:"assetValue"`
}

// LowStockItemDTO ítem en warning o error.
type LowStockItemDTO struct {
	ItemID string           `json:"itemId"`
	Name   string           `json:"name"`
	Status inventory.Status `json:"status"`
	Amount string           `json:"amount"`
}
