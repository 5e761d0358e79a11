package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// MovementAmount expresa d en la unidad de stock del ítem.
// Una línea por conteo mueve paquetes (Quantity); una línea continua mueve la medida del ítem
// y se convierte a su unidad (conversión estricta: familias distintas son error).
func MovementAmount(item *entity.Item, d measurement.Descriptor) (decimal.Decimal, bool, error) {
	if d.Kind == "" || d.Kind == measurement.KindQuantity {
		return decimal.NewFromFloat(d.Value), false, nil
	}
	if !item.IsContinuous() || item.TrackingType != d.Kind {
		return decimal.Zero, false, fmt.Errorf("%w: el ítem %s se lleva por %s, no por %s",
			domain.ErrInvalidInput, item.ID, item.TrackingType, d.Kind)
	}
	unit := item.Measure.Unit
	if unit == "" {
		unit = d.Unit
	}
	v, err := measurement.ConvertStrict(d.Value, d.Unit, unit)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return decimal.NewFromFloat(v), true, nil
}

// ApplyIncoming suma al stock una entrada de compra y recalcula el costo promedio ponderado.
// totalCost es el costo de toda la línea; el costo unitario se expresa en la unidad de stock del
// ítem (paquete o unidad de medida), la misma con la que se fija el precio.
func ApplyIncoming(item *entity.Item, d measurement.Descriptor, totalCost decimal.Decimal) error {
	amount, continuous, err := MovementAmount(item, d)
	if err != nil {
		return err
	}
	costPerUnit := decimal.Zero
	if amount.IsPositive() {
		costPerUnit = totalCost.Div(amount)
	}
	if continuous {
		if item.Measure.Unit == "" {
			item.Measure = measurement.Descriptor{Kind: d.Kind, Unit: d.Unit}
		}
		current := decimal.NewFromFloat(item.Measure.Value)
		if item.PriceType != entity.PriceTypeEach {
			item.Cost = WeightedAverageCost(current, item.Cost, amount, costPerUnit)
		}
		item.Measure.Value = current.Add(amount).InexactFloat64()
		return nil
	}
	if !item.IsContinuous() || item.PriceType == entity.PriceTypeEach {
		item.Cost = WeightedAverageCost(item.Quantity, item.Cost, amount, costPerUnit)
	}
	item.Quantity = item.Quantity.Add(amount)
	return nil
}

// ApplyOutgoing descuenta del stock una salida de venta. Devuelve la cantidad movida
// (en la unidad de costo del ítem) para calcular el costo de lo vendido.
func ApplyOutgoing(item *entity.Item, d measurement.Descriptor) (decimal.Decimal, error) {
	amount, continuous, err := MovementAmount(item, d)
	if err != nil {
		return decimal.Zero, err
	}
	if continuous {
		current := decimal.NewFromFloat(item.Measure.Value)
		if current.LessThan(amount) {
			return decimal.Zero, domain.ErrInsufficientStock
		}
		item.Measure.Value = current.Sub(amount).InexactFloat64()
		return amount, nil
	}
	if item.Quantity.LessThan(amount) {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	item.Quantity = item.Quantity.Sub(amount)
	return amount, nil
}
