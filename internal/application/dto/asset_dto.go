package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// CreateAssetRequest entrada para registrar un activo.
type CreateAssetRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Category     string          `json:"category"`
	Location     string          `json:"location"`
	Status       string          `json:"status" validate:"omitempty,oneof=active maintenance retired"`
	PurchaseCost decimal.Decimal `json:"purchaseCost"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	Notes        string          `json:"notes"`
}

// AssetResponse salida de un activo.
type AssetResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Location      string          `json:"location"`
	Status        string          `json:"status"`
	PurchaseCost  decimal.Decimal `json:"purchaseCost"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	Notes         string          `json:"notes"`
	HasLegacyRefs bool            `json:"hasLegacyRefs"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToAssetResponse mapea la entidad.
func ToAssetResponse(a *entity.Asset) *AssetResponse {
	if a == nil {
		return nil
	}
	return &AssetResponse{
		ID:            a.ID,
		Name:          a.Name,
		Category:      a.Category,
		Location:      a.Location,
		Status:        a.Status,
		PurchaseCost:  a.PurchaseCost,
		CurrentValue:  a.CurrentValue,
		Notes:         a.Notes,
		HasLegacyRefs: a.LegacyPurchaseID != "",
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
