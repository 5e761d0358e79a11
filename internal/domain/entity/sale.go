package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/pkg/measurement"
)

// Sale venta a un cliente. Las líneas viven como relaciones sale_item.
type Sale struct {
	ID       string
	Customer string
	Channel  string
	Date     time.Time
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Notes    string

	LegacyItems []LegacySaleItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LegacySaleItem línea embebida del modelo anterior.
type LegacySaleItem struct {
	ItemID       string                 `json:"item"`
	Measurements measurement.Descriptor `json:"measurements"`
	UnitPrice    decimal.Decimal        `json:"unitPrice"`
	TotalPrice   decimal.Decimal        `json:"totalPrice"`
	Discount     decimal.Decimal        `json:"discount"`
}
