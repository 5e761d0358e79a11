package repository

import (
	"context"

	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el ítem no existe; Update y Delete devuelven
// domain.ErrNotFound.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	// UpdateStock persiste solo Quantity, Measure y Cost.
	UpdateStock(ctx context.Context, item *entity.Item) error
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
	ListAll(ctx context.Context) ([]*entity.Item, error)
	ListWithLegacyReferences(ctx context.Context) ([]*entity.Item, error)
	Delete(ctx context.Context, id string) error
}
