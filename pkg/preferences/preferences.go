// Package preferences guarda las preferencias de presentación del operador (umbrales de
// stock bajo, vista y agrupación) en un archivo local manejado con viper.
package preferences

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// Vistas y agrupaciones admitidas.
const (
	ViewList = "list"
	ViewGrid = "grid"

	GroupNone     = "none"
	GroupCategory = "category"
	GroupItemType = "itemType"
)

const (
	keyQuantityThreshold = "thresholds.quantity"
	keyUnitThresholds    = "thresholds.units"
	keyViewMode          = "display.viewmode"
	keyGroupBy           = "display.groupby"
)

// Preferences preferencias del operador.
type Preferences struct {
	QuantityThreshold float64
	UnitThresholds    map[string]float64 // sólo las unidades que el usuario cambió
	ViewMode          string
	GroupBy           string
}

// Defaults preferencias iniciales.
func Defaults() Preferences {
	return Preferences{
		QuantityThreshold: inventory.DefaultQuantityThreshold,
		UnitThresholds:    map[string]float64{},
		ViewMode:          ViewList,
		GroupBy:           GroupNone,
	}
}

// Thresholds umbrales efectivos: los valores por defecto con los del usuario encima.
func (p Preferences) Thresholds() inventory.Thresholds {
	th := inventory.DefaultThresholds()
	th.Quantity = p.QuantityThreshold
	for unit, v := range p.UnitThresholds {
		th.ByUnit[unit] = v
	}
	return th
}

// DefaultPath ruta del archivo: $XDG_CONFIG_HOME/biztracker/preferences.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, "biztracker", "preferences.yaml"), nil
}

// Load lee el archivo. Si no existe devuelve Defaults().
func Load(path string) (Preferences, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Preferences{}, fmt.Errorf("leer preferencias %s: %w", path, err)
	}

	p := Preferences{
		QuantityThreshold: v.GetFloat64(keyQuantityThreshold),
		UnitThresholds:    map[string]float64{},
		ViewMode:          v.GetString(keyViewMode),
		GroupBy:           v.GetString(keyGroupBy),
	}
	for unit, raw := range v.GetStringMap(keyUnitThresholds) {
		f, err := strconv.ParseFloat(fmt.Sprint(raw), 64)
		if err != nil {
			return Preferences{}, fmt.Errorf("umbral de %s inválido: %v", unit, raw)
		}
		p.UnitThresholds[unit] = f
	}
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// Save escribe el archivo creando el directorio si hace falta.
func Save(path string, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("crear directorio de preferencias: %w", err)
	}
	v := newViper(path)
	v.Set(keyQuantityThreshold, p.QuantityThreshold)
	v.Set(keyUnitThresholds, p.UnitThresholds)
	v.Set(keyViewMode, p.ViewMode)
	v.Set(keyGroupBy, p.GroupBy)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("guardar preferencias %s: %w", path, err)
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(keyQuantityThreshold, inventory.DefaultQuantityThreshold)
	v.SetDefault(keyViewMode, ViewList)
	v.SetDefault(keyGroupBy, GroupNone)
	return v
}

// Validate comprueba rangos y valores admitidos.
func (p Preferences) Validate() error {
	if p.QuantityThreshold < 0 {
		return fmt.Errorf("el umbral de cantidad no puede ser negativo")
	}
	for unit, v := range p.UnitThresholds {
		if _, ok := measurement.FamilyOf(unit); !ok {
			return fmt.Errorf("unidad desconocida %q", unit)
		}
		if v < 0 {
			return fmt.Errorf("el umbral de %s no puede ser negativo", unit)
		}
	}
	switch p.ViewMode {
	case ViewList, ViewGrid:
	default:
		return fmt.Errorf("vista inválida %q (list|grid)", p.ViewMode)
	}
	switch p.GroupBy {
	case GroupNone, GroupCategory, GroupItemType:
	default:
		return fmt.Errorf("agrupación inválida %q (none|category|itemType)", p.GroupBy)
	}
	return nil
}

// Set asigna una preferencia por nombre: "quantity", una unidad ("kg", "ml", ...),
// "viewMode" o "groupBy".
func (p *Preferences) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "viewmode":
		p.ViewMode = value
	case "groupby":
		p.GroupBy = value
	default:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %q no es un número", key, value)
		}
		if strings.EqualFold(key, "quantity") {
			p.QuantityThreshold = f
			break
		}
		if p.UnitThresholds == nil {
			p.UnitThresholds = map[string]float64{}
		}
		p.UnitThresholds[strings.ToLower(key)] = f
	}
	return p.Validate()
}

// Units unidades con umbral propio, ordenadas.
func (p Preferences) Units() []string {
	units := make([]string, 0, len(p.UnitThresholds))
	for u := range p.UnitThresholds {
		units = append(units, u)
	}
	sort.Strings(units)
	return units
}
