package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// SaleLineRequest fila de ítem de una venta; se materializa como relación sale_item.
type SaleLineRequest struct {
	ItemID       string                 `json:"itemId" validate:"required"`
	Measurements measurement.Descriptor `json:"measurements"`
	UnitPrice    decimal.Decimal        `json:"unitPrice"`
	Discount     decimal.Decimal        `json:"discount"`
	Notes        string                 `json:"notes"`
}

// CreateSaleRequest entrada para registrar una venta.
type CreateSaleRequest struct {
	Customer string            `json:"customer" validate:"max=200"`
	Channel  string            `json:"channel" validate:"max=100"`
	Date     *time.Time        `json:"date"`
	Discount decimal.Decimal   `json:"discount"`
	Tax      decimal.Decimal   `json:"tax"`
	Notes    string            `json:"notes"`
	Items    []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleResponse salida de una venta con sus líneas (relaciones).
type SaleResponse struct {
	ID            string                 `json:"id"`
	Customer      string                 `json:"customer"`
	Channel       string                 `json:"channel"`
	Date          time.Time              `json:"date"`
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

// ToSaleResponse mapea la entidad.
func ToSaleResponse(s *entity.Sale, lines []*entity.Relationship) *SaleResponse {
	if s == nil {
		return nil
	}
	return &SaleResponse{
		ID:            s.ID,
		Customer:      s.Customer,
		Channel:       s.Channel,
		Date:          s.Date,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Tax:           s.Tax,
		Total:         s.Total,
		Notes:         s.Notes,
		HasLegacyRefs: len(s.LegacyItems) > 0,
		Lines:         lines,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
