package repository

import (
	"context"

	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// RelationshipRepository define el puerto de persistencia para Relationship (DIP).
//
// Create devuelve domain.ErrDuplicate si ya existe la misma arista (primario, secundario, tipo)
// y domain.ErrDerivedSourceExists si el ítem derivado ya tiene origen.
// GetByID devuelve (nil, nil) si no existe; Update devuelve domain.ErrNotFound.
// relType vacío en las búsquedas significa "cualquier tipo".
type RelationshipRepository interface {
	Create(ctx context.Context, rel *entity.Relationship) error
	GetByID(ctx context.Context, id string) (*entity.Relationship, error)
	Update(ctx context.Context, rel *entity.Relationship) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Relationship, error)
	ListByPrimary(ctx context.Context, id string, et entity.EntityType, relType entity.RelationshipType) ([]*entity.Relationship, error)
	ListBySecondary(ctx context.Context, id string, et entity.EntityType, relType entity.RelationshipType) ([]*entity.Relationship, error)
	ListByType(ctx context.Context, relType entity.RelationshipType) ([]*entity.Relationship, error)
	DeleteByEntity(ctx context.Context, id string, et entity.EntityType) (int64, error)
}
