package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// PurchaseLineRequest fila de ítem de una compra; se materializa como relación purchase_item.
type PurchaseLineRequest struct {
	ItemID       string                 `json:"itemId" validate:"required"`
	Measurements measurement.Descriptor `json:"measurements"`
	CostPerUnit  decimal.Decimal        `json:"costPerUnit"`
	Discount     decimal.Decimal        `json:"discount"`
	Notes        string                 `json:"notes"`
}

// PurchaseAssetLineRequest activo adquirido en la compra; se materializa como purchase_asset.
type PurchaseAssetLineRequest struct {
	AssetID string `json:"assetId" validate:"required"`
	Notes   string `json:"notes"`
}

// CreatePurchaseRequest entrada para registrar una compra.
type CreatePurchaseRequest struct {
	Supplier      string                     `json:"supplier" validate:"required,max=200"`
	InvoiceNumber string                     `json:"invoiceNumber" validate:"max=100"`
	Date          *time.Time                 `json:"date"`
	Status        string                     `json:"status" validate:"omitempty,oneof=ordered received"`
	Discount      decimal.Decimal            `json:"discount"`
	Tax           decimal.Decimal            `json:"tax"`
	Notes         string                     `json:"notes"`
	Items         []PurchaseLineRequest      `json:"items" validate:"dive"`
	Assets        []PurchaseAssetLineRequest `json:"assets" validate:"dive"`
}

// PurchaseResponse salida de una compra con sus líneas (relaciones).
type PurchaseResponse struct {
	ID            string                 `json:"id"`
	Supplier      string                 `json:"supplier"`
	InvoiceNumber string                 `json:"invoiceNumber"`
	Date          time.Time              `json:"date"`
	Status        string                 `json:"status"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	Discount      decimal.Decimal        `json:"discount"`
	Tax           decimal.Decimal        `json:"tax"`
	Total         decimal.Decimal        `json:"total"`
	Notes         string                 `json:"notes"`
	HasLegacyRefs bool                   `json:"hasLegacyRefs"`
	Lines         []*entity.Relationship `json:"lines,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// ToPurchaseResponse mapea la entidad.
func ToPurchaseResponse(p *entity.Purchase, lines []*entity.Relationship) *PurchaseResponse {
	if p == nil {
		return nil
	}
	return &PurchaseResponse{
		ID:            p.ID,
		Supplier:      p.Supplier,
		InvoiceNumber: p.InvoiceNumber,
		Date:          p.Date,
		Status:        p.Status,
		Subtotal:      p.Subtotal,
		Discount:      p.Discount,
		Tax:           p.Tax,
		Total:         p.Total,
		Notes:         p.Notes,
		HasLegacyRefs: len(p.LegacyItems) > 0 || len(p.LegacyAssets) > 0,
		Lines:         lines,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
