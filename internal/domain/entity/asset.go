package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset activo del negocio (herramienta, equipo) que no forma parte del inventario vendible.
type Asset struct {
	ID           string
	Name         string
	Category     string
	Location     string
	Status       string
	PurchaseCost decimal.Decimal
	CurrentValue decimal.Decimal
	Notes        string

	// Compra de origen en el modelo anterior.
	LegacyPurchaseID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
