package inventory

import "github.com/shopspring/decimal"

// NotApplicable se muestra cuando el markup no puede calcularse (costo cero).
const NotApplicable = "N/A"

var hundred = decimal.NewFromInt(100)

// Markup porcentaje de markup: (precio / costo − 1) × 100. ok = false si cost es cero.
func Markup(price, cost decimal.Decimal) (decimal.Decimal, bool) {
	if cost.IsZero() {
		return decimal.Zero, false
	}
	return price.Div(cost).Sub(decimal.NewFromInt(1)).Mul(hundred), true
}

// FormatMarkup markup con dos decimales y signo %, o "N/A".
func FormatMarkup(price, cost decimal.Decimal) string {
	m, ok := Markup(price, cost)
	if !ok {
		return NotApplicable
	}
	return m.StringFixed(2) + "%"
}

// Profit ganancia por unidad.
func Profit(price, cost decimal.Decimal) decimal.Decimal {
	return price.Sub(cost)
}
