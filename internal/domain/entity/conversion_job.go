package entity

import "time"

// Estados de un trabajo de conversión. No hay estado "pending": el trabajo corre desde que se crea.
const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// CategoryProgress contadores por categoría de entidad.
type CategoryProgress struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Converted int `json:"converted"`
	Errors    int `json:"errors"`
}

// JobProgress progreso de las cuatro fases.
type JobProgress struct {
	Items     CategoryProgress `json:"items"`
	Purchases CategoryProgress `json:"purchases"`
	Sales     CategoryProgress `json:"sales"`
	Assets    CategoryProgress `json:"assets"`
}

// Category devuelve el contador de la categoría de et.
func (p *JobProgress) Category(et EntityType) *CategoryProgress {
	switch et {
	case EntityItem:
		return &p.Items
	case EntityPurchase:
		return &p.Purchases
	case EntitySale:
		return &p.Sales
	case EntityAsset:
		return &p.Assets
	}
	return nil
}

// ConversionJob trabajo de conversión masiva de referencias embebidas a relaciones.
type ConversionJob struct {
	ID          string
	Status      string
	Phase       EntityType
	Progress    JobProgress
	Error       string
	StartedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Totals suma de todas las categorías.
func (j *ConversionJob) Totals() CategoryProgress {
	var t CategoryProgress
	for _, c := range []CategoryProgress{j.Progress.Items, j.Progress.Purchases, j.Progress.Sales, j.Progress.Assets} {
		t.Total += c.Total
		t.Processed += c.Processed
		t.Converted += c.Converted
		t.Errors += c.Errors
	}
	return t
}

// PercentComplete porcentaje de entidades procesadas (100 si terminó o no había nada que hacer).
func (j *ConversionJob) PercentComplete() float64 {
	t := j.Totals()
	if t.Total == 0 {
		if j.Status == JobStatusRunning {
			return 0
		}
		return 100
	}
	return float64(t.Processed) * 100 / float64(t.Total)
}

// IsTerminal true si el trabajo ya no cambiará de estado.
func (j *ConversionJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
