package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// lineMeasure normaliza la medida de una línea: sin tipo se asume conteo y el valor debe ser positivo.
func lineMeasure(d measurement.Descriptor) (measurement.Descriptor, error) {
	if d.Kind == "" {
		d.Kind = measurement.KindQuantity
	}
	if d.Value <= 0 {
		return d, fmt.Errorf("%w: la cantidad de la línea debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return d, nil
}

// lineTotal precio unitario × cantidad, antes y después del descuento.
func lineTotal(unit decimal.Decimal, d measurement.Descriptor, discount decimal.Decimal) (original, total decimal.Decimal, err error) {
	original = unit.Mul(decimal.NewFromFloat(d.Value)).Round(2)
	total = original.Sub(discount)
	if discount.IsNegative() || total.IsNegative() {
		return original, total, fmt.Errorf("%w: descuento fuera de rango", domain.ErrInvalidInput)
	}
	return original, total, nil
}
