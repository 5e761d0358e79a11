// Package inventory agrupa los servicios de dominio que derivan cifras de presentación a partir
// de los ítems: valor de inventario, estado de stock, markup y costo ponderado.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// InventoryValue valor del stock de un ítem.
//   - quantity: precio × cantidad
//   - medida continua con precio "each": precio × cantidad (precio por paquete)
//   - medida continua con precio por unidad: precio × valor de la medida
func InventoryValue(item *entity.Item) decimal.Decimal {
	if item == nil {
		return decimal.Zero
	}
	if !item.IsContinuous() || item.PriceType == entity.PriceTypeEach {
		return item.Price.Mul(item.Quantity)
	}
	return item.Price.Mul(decimal.NewFromFloat(item.MeasureValue()))
}

// TotalInventoryValue suma InventoryValue sobre todos los ítems.
func TotalInventoryValue(items []*entity.Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(InventoryValue(it))
	}
	return total
}
