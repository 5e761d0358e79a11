package repository

import (
	"context"

	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// AssetRepository define el puerto de persistencia para Asset (DIP).
// GetByID devuelve (nil, nil) si no existe; Delete devuelve domain.ErrNotFound.
type AssetRepository interface {
	Create(ctx context.Context, asset *entity.Asset) error
	GetByID(ctx context.Context, id string) (*entity.Asset, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Asset, error)
	ListAll(ctx context.Context) ([]*entity.Asset, error)
	ListWithLegacyReferences(ctx context.Context) ([]*entity.Asset, error)
	Delete(ctx context.Context, id string) error
}
