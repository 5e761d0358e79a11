package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

// AssetUseCase casos de uso CRUD para activos.
type AssetUseCase struct {
	repo repository.AssetRepository
	tx   ports.TxRunner
}

// NewAssetUseCase construye el caso de uso.
func NewAssetUseCase(repo repository.AssetRepository, tx ports.TxRunner) *AssetUseCase {
	return &AssetUseCase{repo: repo, tx: tx}
}

// Create registra un activo.
func (uc *AssetUseCase) Create(ctx context.Context, in dto.CreateAssetRequest) (*dto.AssetResponse, error) {
	if in.Status == "" {
		in.Status = "active"
	}
	if in.PurchaseCost.IsNegative() || in.CurrentValue.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	a := &entity.Asset{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Category:     in.Category,
		Location:     in.Location,
		Status:       in.Status,
		PurchaseCost: in.PurchaseCost,
		CurrentValue: in.CurrentValue,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return dto.ToAssetResponse(a), nil
}

// GetByID obtiene un activo; domain.ErrNotFound si no existe.
func (uc *AssetUseCase) GetByID(ctx context.Context, id string) (*dto.AssetResponse, error) {
	a, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToAssetResponse(a), nil
}

// List lista activos paginados.
func (uc *AssetUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.AssetResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AssetResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.ToAssetResponse(a))
	}
	return out, nil
}

// Delete elimina el activo y sus relaciones purchase_asset.
func (uc *AssetUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(repos ports.Repositories) error {
		if _, err := repos.Relationships.DeleteByEntity(ctx, id, entity.EntityAsset); err != nil {
			return err
		}
		return repos.Assets.Delete(ctx, id)
	})
}
