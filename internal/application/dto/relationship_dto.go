package dto

import (
	"time"

	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// CreateRelationshipRequest borrador de relación (POST /api/relationships).
type CreateRelationshipRequest struct {
	PrimaryID              string                         `json:"primaryId" validate:"required"`
	PrimaryType            entity.EntityType              `json:"primaryType" validate:"required,oneof=Item Purchase Sale Asset"`
	SecondaryID            string                         `json:"secondaryId" validate:"required"`
	SecondaryType          entity.EntityType              `json:"secondaryType" validate:"required,oneof=Item Purchase Sale Asset"`
	RelationshipType       entity.RelationshipType        `json:"relationshipType" validate:"required,oneof=derived product_material purchase_item purchase_asset sale_item"`
	Measurements           *measurement.Descriptor        `json:"measurements,omitempty"`
	PurchaseItemAttributes *entity.PurchaseItemAttributes `json:"purchaseItemAttributes,omitempty"`
	SaleItemAttributes     *entity.SaleItemAttributes     `json:"saleItemAttributes,omitempty"`
	Notes                  string                         `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateRelationshipRequest actualización parcial (PATCH). Los extremos y el tipo no cambian.
type UpdateRelationshipRequest struct {
	Measurements           *measurement.Descriptor        `json:"measurements,omitempty"`
	PurchaseItemAttributes *entity.PurchaseItemAttributes `json:"purchaseItemAttributes,omitempty"`
	SaleItemAttributes     *entity.SaleItemAttributes     `json:"saleItemAttributes,omitempty"`
	Notes                  *string                        `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// LinkRequest cuerpo de los atajos product-material / purchase-item / sale-item.
type LinkRequest struct {
	Measurements           *measurement.Descriptor        `json:"measurements,omitempty"`
	PurchaseItemAttributes *entity.PurchaseItemAttributes `json:"purchaseItemAttributes,omitempty"`
	SaleItemAttributes     *entity.SaleItemAttributes     `json:"saleItemAttributes,omitempty"`
	Notes                  string                         `json:"notes,omitempty" validate:"max=2000"`
}

// ConversionCounts resultado de convertir las referencias de una entidad.
type ConversionCounts struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  int      `json:"errors"`
	Details []string `json:"details,omitempty"`
}

// ConversionResult respuesta de POST /api/relationships/convert/:entityType/:entityId.
type ConversionResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Result  ConversionCounts `json:"result"`
}

// ConvertAllResponse respuesta de POST /api/relationships/convert-all.
type ConvertAllResponse struct {
	JobID string `json:"jobId"`
}

// JobStatusResponse respuesta de GET /api/relationships/jobs/:jobId.
type JobStatusResponse struct {
	JobID           string                  `json:"jobId"`
	Status          string                  `json:"status"`
	Phase           entity.EntityType       `json:"phase,omitempty"`
	Progress        entity.JobProgress      `json:"progress"`
	Totals          entity.CategoryProgress `json:"totals"`
	PercentComplete float64                 `json:"percentComplete"`
	Error           string                  `json:"error,omitempty"`
	StartedAt       time.Time               `json:"startedAt"`
	CompletedAt     *time.Time              `json:"completedAt,omitempty"`
}

// IsTerminal true si el trabajo terminó (completed o failed).
func (s *JobStatusResponse) IsTerminal() bool {
	return s.Status == entity.JobStatusCompleted || s.Status == entity.JobStatusFailed
}

// ToJobStatusResponse mapea la entidad al DTO.
func ToJobStatusResponse(j *entity.ConversionJob) *JobStatusResponse {
	if j == nil {
		return nil
	}
	return &JobStatusResponse{
		JobID:           j.ID,
		Status:          j.Status,
		Phase:           j.Phase,
		Progress:        j.Progress,
		Totals:          j.Totals(),
		PercentComplete: j.PercentComplete(),
		Error:           j.Error,
		StartedAt:       j.StartedAt,
		CompletedAt:     j.CompletedAt,
	}
}
