package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/pkg/measurement"
)

// PriceTypeEach el precio aplica por paquete/unidad discreta. Cualquier otro valor
// (per_weight_unit, per_length_unit, ...) significa precio por unidad de la medida continua.
const PriceTypeEach = "each"

// Item representa un artículo del inventario (material, producto o reventa).
// TrackingType indica la familia con la que se lleva el stock; Quantity es siempre el conteo
// de paquetes/unidades y Measure la cantidad continua cuando aplica.
type Item struct {
	ID           string
	Name         string
	SKU          string
	Category     string
	ItemType     string // material, product, resale
	TrackingType measurement.Kind
	PriceType    string
	Price        decimal.Decimal // precio de venta (por paquete o por unidad de medida)
	Cost         decimal.Decimal // costo promedio ponderado por unidad
	Quantity     decimal.Decimal
	Measure      measurement.Descriptor // peso/longitud/área/volumen actual; vacío si TrackingType = quantity
	Notes        string

	// Referencias embebidas del modelo anterior (pendientes de convertir a relaciones).
	LegacyComponents  []LegacyComponent
	LegacyDerivedFrom *LegacyDerivedFrom

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsContinuous true si el ítem se lleva por peso, longitud, área o volumen.
func (i *Item) IsContinuous() bool {
	return i.TrackingType != "" && i.TrackingType != measurement.KindQuantity
}

// MeasureValue cantidad continua en la unidad del ítem (0 si no aplica).
func (i *Item) MeasureValue() float64 {
	if !i.IsContinuous() {
		return 0
	}
	return i.Measure.Value
}

// LegacyComponent componente embebido en un producto (modelo anterior).
type LegacyComponent struct {
	ItemID       string                 `json:"item"`
	Measurements measurement.Descriptor `json:"measurements"`
}

// LegacyDerivedFrom origen embebido de un ítem derivado (modelo anterior).
type LegacyDerivedFrom struct {
	ItemID       string                 `json:"item"`
	Measurements measurement.Descriptor `json:"measurements"`
}
