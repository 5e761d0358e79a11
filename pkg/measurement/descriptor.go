package measurement

import (
	"errors"
	"fmt"
)

// Descriptor describe cuánto de una entidad se referencia. Solo el par (Value, Unit) de Kind
// es significativo.
type Descriptor struct {
	Kind  Kind    `json:"kind"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Quantity construye un descriptor de conteo.
func Quantity(n float64) Descriptor {
	return Descriptor{Kind: KindQuantity, Value: n}
}

// Of construye un descriptor continuo deduciendo la familia desde unit.
func Of(value float64, unit string) (Descriptor, error) {
	kind, ok := FamilyOf(unit)
	if !ok {
		return Descriptor{}, fmt.Errorf("unidad desconocida %q", unit)
	}
	d := Descriptor{Kind: kind, Value: value, Unit: unit}
	return d, d.Validate()
}

// Validate verifica el invariante del descriptor.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindQuantity, KindWeight, KindLength, KindArea, KindVolume:
	default:
		return fmt.Errorf("kind de medida inválido %q", d.Kind)
	}
	if d.Value < 0 {
		return errors.New("el valor de la medida no puede ser negativo")
	}
	if !ValidUnit(d.Kind, d.Unit) {
		return fmt.Errorf("unidad %q no válida para %s", d.Unit, d.Kind)
	}
	return nil
}

// IsZero true si el descriptor no fue informado.
func (d Descriptor) IsZero() bool {
	return d.Kind == "" && d.Value == 0 && d.Unit == ""
}

// In expresa el descriptor en otra unidad de la misma familia.
func (d Descriptor) In(unit string) (Descriptor, error) {
	if d.Kind == KindQuantity {
		if unit != "" && unit != "ea" {
			return d, &UnitMismatchError{From: d.Unit, To: unit}
		}
		return d, nil
	}
	v, err := ConvertStrict(d.Value, d.Unit, unit)
	if err != nil {
		return d, err
	}
	return Descriptor{Kind: d.Kind, Value: v, Unit: unit}, nil
}

func (d Descriptor) String() string {
	if d.Kind == KindQuantity || d.Unit == "" {
		return fmt.Sprintf("%g", d.Value)
	}
	return fmt.Sprintf("%g %s", d.Value, d.Unit)
}
