// Package measurement modela cuánto de una entidad se referencia (cantidad, peso, longitud,
// área o volumen) y la conversión entre unidades de una misma familia.
package measurement

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Kind familia de medida de un descriptor o de un ítem (tracking type).
type Kind string

const (
	KindQuantity Kind = "quantity"
	KindWeight   Kind = "weight"
	KindLength   Kind = "length"
	KindArea     Kind = "area"
	KindVolume   Kind = "volume"
)

// Tablas de factores hacia la unidad base de cada familia (g, m, m², ml).
var (
	weightUnits = map[string]float64{
		"oz": 28.349523125,
		"lb": 453.59237,
		"g":  1,
		"kg": 1000,
	}
	lengthUnits = map[string]float64{
		"mm": 0.001,
		"cm": 0.01,
		"m":  1,
		"in": 0.0254,
		"ft": 0.3048,
		"yd": 0.9144,
	}
	areaUnits = map[string]float64{
		"sqcm": 0.0001,
		"sqm":  1,
		"sqin": 0.00064516,
		"sqft": 0.09290304,
		"sqyd": 0.83612736,
	}
	volumeUnits = map[string]float64{
		"ml":   1,
		"l":    1000,
		"floz": 29.5735295625,
		"cup":  236.5882365,
		"pt":   473.176473,
		"qt":   946.352946,
		"gal":  3785.411784,
	}
)

var families = map[Kind]map[string]float64{
	KindWeight: weightUnits,
	KindLength: lengthUnits,
	KindArea:   areaUnits,
	KindVolume: volumeUnits,
}

// ErrUnitMismatch las unidades no pertenecen a una misma familia (o alguna es desconocida).
var ErrUnitMismatch = errors.New("unidades de familias distintas")

// UnitMismatchError detalle de una conversión imposible.
type UnitMismatchError struct {
	From string
	To   string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("no se puede convertir de %q a %q: %v", e.From, e.To, ErrUnitMismatch)
}

// Is permite errors.Is(err, ErrUnitMismatch).
func (e *UnitMismatchError) Is(target error) bool {
	return target == ErrUnitMismatch
}

// FamilyOf devuelve la familia continua a la que pertenece unit.
func FamilyOf(unit string) (Kind, bool) {
	for kind, table := range families {
		if _, ok := table[unit]; ok {
			return kind, true
		}
	}
	return "", false
}

// UnitsFor lista las unidades válidas de una familia (nil para quantity o familias desconocidas).
func UnitsFor(kind Kind) []string {
	table, ok := families[kind]
	if !ok {
		return nil
	}
	units := make([]string, 0, len(table))
	for u := range table {
		units = append(units, u)
	}
	return units
}

// ValidUnit indica si unit es válida para kind. Para quantity solo se admite "" o "ea".
func ValidUnit(kind Kind, unit string) bool {
	if kind == KindQuantity {
		return unit == "" || unit == "ea"
	}
	table, ok := families[kind]
	if !ok {
		return false
	}
	_, ok = table[unit]
	return ok
}

// ConvertStrict convierte value de from a to. Si from == to devuelve value sin operar.
func ConvertStrict(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}
	for _, table := range families {
		f, okFrom := table[from]
		t, okTo := table[to]
		if okFrom && okTo {
			return value * f / t, nil
		}
	}
	return value, &UnitMismatchError{From: from, To: to}
}

// ConvertOrPassThrough igual que ConvertStrict, pero ante unidades incompatibles registra el
// fallo en log y devuelve value sin convertir. Solo para valores de presentación.
func ConvertOrPassThrough(log zerolog.Logger, value float64, from, to string) float64 {
	out, err := ConvertStrict(value, from, to)
	if err != nil {
		log.Warn().Err(err).Float64("value", value).Str("from", from).Str("to", to).Msg("conversión de unidades omitida")
		return value
	}
	return out
}
