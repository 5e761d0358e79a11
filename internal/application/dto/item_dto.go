package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// CreateItemRequest entrada para crear un ítem.
type CreateItemRequest struct {
	Name         string                 `json:"name" validate:"required,min=1,max=200"`
	SKU          string                 `json:"sku" validate:"max=100"`
	Category     string                 `json:"category"`
	ItemType     string                 `json:"itemType" validate:"omitempty,oneof=material product resale"`
	TrackingType measurement.Kind       `json:"trackingType" validate:"omitempty,oneof=quantity weight length area volume"`
	PriceType    string                 `json:"priceType"`
	Price        decimal.Decimal        `json:"price"`
	Cost         decimal.Decimal        `json:"cost"`
	Quantity     decimal.Decimal        `json:"quantity"`
	Measure      measurement.Descriptor `json:"measure"`
	Notes        string                 `json:"notes"`
}

// UpdateItemRequest actualización parcial de un ítem.
type UpdateItemRequest struct {
	Name      *string                 `json:"name" validate:"omitempty,min=1,max=200"`
	SKU       *string                 `json:"sku"`
	Category  *string                 `json:"category"`
	PriceType *string                 `json:"priceType"`
	Price     *decimal.Decimal        `json:"price"`
	Cost      *decimal.Decimal        `json:"cost"`
	Quantity  *decimal.Decimal        `json:"quantity"`
	Measure   *measurement.Descriptor `json:"measure"`
	Notes     *string                 `json:"notes"`
}

// ItemResponse salida de un ítem con sus cifras derivadas.
type ItemResponse struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	SKU            string                 `json:"sku"`
	Category       string                 `json:"category"`
	ItemType       string                 `json:"itemType"`
	TrackingType   measurement.Kind       `json:"trackingType"`
	PriceType      string                 `json:"priceType"`
	Price          decimal.Decimal        `json:"price"`
	Cost           decimal.Decimal        `json:"cost"`
	Quantity       decimal.Decimal        `json:"quantity"`
	Measure        measurement.Descriptor `json:"measure"`
	Notes          string                 `json:"notes"`
	InventoryValue decimal.Decimal        `json:"inventoryValue"`
	StockStatus    inventory.Status       `json:"stockStatus"`
	Markup         string                 `json:"markup"`
	Profit         decimal.Decimal        `json:"profit"`
	HasLegacyRefs  bool                   `json:"hasLegacyRefs"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// ToItemResponse mapea la entidad calculando las cifras derivadas con th.
func ToItemResponse(it *entity.Item, th inventory.Thresholds) *ItemResponse {
	if it == nil {
		return nil
	}
	return &ItemResponse{
		ID:             it.ID,
		Name:           it.Name,
		SKU:            it.SKU,
		Category:       it.Category,
		ItemType:       it.ItemType,
		TrackingType:   it.TrackingType,
		PriceType:      it.PriceType,
		Price:          it.Price,
		Cost:           it.Cost,
		Quantity:       it.Quantity,
		Measure:        it.Measure,
		Notes:          it.Notes,
		InventoryValue: inventory.InventoryValue(it),
		StockStatus:    inventory.StockStatus(it, th),
		Markup:         inventory.FormatMarkup(it.Price, it.Cost),
		Profit:         inventory.Profit(it.Price, it.Cost),
		HasLegacyRefs:  len(it.LegacyComponents) > 0 || it.LegacyDerivedFrom != nil,
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}

// ToEntity reconstruye el ítem desde la respuesta (usado por el cliente para los agregados).
func (r *ItemResponse) ToEntity() *entity.Item {
	return &entity.Item{
		ID:           r.ID,
		Name:         r.Name,
		SKU:          r.SKU,
		Category:     r.Category,
		ItemType:     r.ItemType,
		TrackingType: r.TrackingType,
		PriceType:    r.PriceType,
		Price:        r.Price,
		Cost:         r.Cost,
		Quantity:     r.Quantity,
		Measure:      r.Measure,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
