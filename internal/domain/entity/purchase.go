package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/pkg/measurement"
)

// Estados de una compra.
const (
	PurchaseStatusOrdered  = "ordered"
	PurchaseStatusReceived = "received"
)

// Purchase compra a un proveedor. Las líneas viven como relaciones purchase_item / purchase_asset.
type Purchase struct {
	ID            string
	Supplier      string
	InvoiceNumber string
	Date          time.Time
	Status        string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Notes         string

	LegacyItems  []LegacyPurchaseItem
	LegacyAssets []LegacyPurchaseAsset

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LegacyPurchaseItem línea embebida del modelo anterior.
type LegacyPurchaseItem struct {
	ItemID       string                 `json:"item"`
	Measurements measurement.Descriptor `json:"measurements"`
	CostPerUnit  decimal.Decimal        `json:"costPerUnit"`
	TotalCost    decimal.Decimal        `json:"totalCost"`
	OriginalCost decimal.Decimal        `json:"originalCost"`
	Discount     decimal.Decimal        `json:"discount"`
}

// LegacyPurchaseAsset activo embebido del modelo anterior.
type LegacyPurchaseAsset struct {
	AssetID string `json:"asset"`
	Notes   string `json:"notes,omitempty"`
}
