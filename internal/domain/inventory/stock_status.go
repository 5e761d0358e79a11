package inventory

import "github.com/jhoicas/biztracker/internal/domain/entity"

// Status semáforo de stock.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// DefaultQuantityThreshold umbral de stock bajo para ítems por conteo.
const DefaultQuantityThreshold = 5

// Thresholds umbrales configurables por el usuario.
type Thresholds struct {
	Quantity float64
	ByUnit   map[string]float64
}

// DefaultThresholds umbrales por defecto (cada unidad es independiente).
func DefaultThresholds() Thresholds {
	return Thresholds{
		Quantity: DefaultQuantityThreshold,
		ByUnit: map[string]float64{
			"kg": 1, "g": 500, "lb": 2, "oz": 16,
			"m": 1, "cm": 100, "mm": 1000, "in": 36, "ft": 3, "yd": 1,
			"sqm": 1, "sqcm": 10000, "sqin": 1296, "sqft": 9, "sqyd": 1,
			"ml": 500, "l": 1, "floz": 16, "cup": 2, "pt": 1, "qt": 1, "gal": 1,
		},
	}
}

// ForUnit umbral de una unidad; si no está configurada usa el de cantidad.
func (t Thresholds) ForUnit(unit string) float64 {
	if v, ok := t.ByUnit[unit]; ok {
		return v
	}
	return t.Quantity
}

// StockStatus evalúa el stock de un ítem.
// Ítems por conteo y continuos con precio "each" se juzgan por Quantity (paquetes);
// el resto por el valor de la medida contra el umbral de su unidad.
func StockStatus(item *entity.Item, th Thresholds) Status {
	if item == nil {
		return StatusError
	}
	if !item.IsContinuous() || item.PriceType == entity.PriceTypeEach {
		return judge(item.Quantity.InexactFloat64(), th.Quantity)
	}
	return judge(item.MeasureValue(), th.ForUnit(item.Measure.Unit))
}

func judge(amount, threshold float64) Status {
	switch {
	case amount <= 0:
		return StatusError
	case amount < threshold:
		return StatusWarning
	default:
		return StatusSuccess
	}
}

// StatusCounts conteo de ítems por estado.
type StatusCounts struct {
	Success int `json:"success"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
}

// CountStatuses agrega StockStatus sobre items y devuelve además los que no están en success.
func CountStatuses(items []*entity.Item, th Thresholds) (StatusCounts, []*entity.Item) {
	var counts StatusCounts
	var low []*entity.Item
	for _, it := range items {
		switch StockStatus(it, th) {
		case StatusSuccess:
			counts.Success++
		case StatusWarning:
			counts.Warning++
			low = append(low, it)
		case StatusError:
			counts.Error++
			low = append(low, it)
		}
	}
	return counts, low
}

// IsLow atajo para filtros de listados.
func IsLow(item *entity.Item, th Thresholds) bool {
	return StockStatus(item, th) != StatusSuccess
}
