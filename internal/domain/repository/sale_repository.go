package repository

import (
	"context"

	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para Sale (DIP).
// GetByID devuelve (nil, nil) si no existe; Delete devuelve domain.ErrNotFound.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
	ListAll(ctx context.Context) ([]*entity.Sale, error)
	ListWithLegacyReferences(ctx context.Context) ([]*entity.Sale, error)
	Delete(ctx context.Context, id string) error
}
