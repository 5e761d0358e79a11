package repository

import (
	"context"

	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para Purchase (DIP).
// GetByID devuelve (nil, nil) si no existe; Delete devuelve domain.ErrNotFound.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Purchase, error)
	ListAll(ctx context.Context) ([]*entity.Purchase, error)
	ListWithLegacyReferences(ctx context.Context) ([]*entity.Purchase, error)
	Delete(ctx context.Context, id string) error
}
