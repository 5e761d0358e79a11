package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

var _ repository.RelationshipRepository = (*RelationshipRepo)(nil)

var relationshipColumns = []string{
	"id", "primary_id", "primary_type", "secondary_id", "secondary_type", "relationship_type",
	"measurements", "attributes", "is_legacy", "notes", "created_at", "updated_at",
}

// RelationshipRepo implementación del puerto RelationshipRepository sobre PostgreSQL.
// La unicidad de aristas y de origen derivado la imponen índices únicos (ver migrations).
type RelationshipRepo struct {
	q Querier
}

// NewRelationshipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRelationshipRepository(q Querier) *RelationshipRepo {
	return &RelationshipRepo{q: q}
}

func (r *RelationshipRepo) Create(ctx context.Context, rel *entity.Relationship) error {
	measurements, attributes, err := relationshipJSON(rel)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = now
	}
	rel.UpdatedAt = now

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("relationships")
	sb.Cols(relationshipColumns...)
	sb.Values(rel.ID, rel.PrimaryID, string(rel.PrimaryType), rel.SecondaryID, string(rel.SecondaryType), string(rel.Type),
		measurements, attributes, rel.IsLegacy, rel.Notes, rel.CreatedAt, rel.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == derivedSourceConstraint {
				return domain.ErrDerivedSourceExists
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert relationship: %w", err)
	}
	return nil
}

func (r *RelationshipRepo) GetByID(ctx context.Context, id string) (*entity.Relationship, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(relationshipColumns...)
	sb.From("relationships")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	rel, err := scanRelationship(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get relationship: %w", err)
	}
	return rel, nil
}

// Update modifica medida, atributos y notas. Extremos y tipo son inmutables.
func (r *RelationshipRepo) Update(ctx context.Context, rel *entity.Relationship) error {
	measurements, attributes, err := relationshipJSON(rel)
	if err != nil {
		return err
	}
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("relationships")
	sb.Set(
		sb.Assign("measurements", measurements),
		sb.Assign("attributes", attributes),
		sb.Assign("notes", rel.Notes),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(sb.Equal("id", rel.ID))

	query, args := sb.Build()
	query += " RETURNING created_at, updated_at"
	if err := r.q.QueryRow(ctx, query, args...).Scan(&rel.CreatedAt, &rel.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update relationship: %w", err)
	}
	return nil
}

func (r *RelationshipRepo) Delete(ctx context.Context, id string) (bool, error) {
	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("relationships")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete relationship: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *RelationshipRepo) List(ctx context.Context, limit, offset int) ([]*entity.Relationship, error) {
	sb := r.selectAll()
	sb.Limit(limit).Offset(offset)
	return r.query(ctx, sb)
}

// ListByPrimary aristas salientes de (id, et); relType vacío no filtra por tipo.
func (r *RelationshipRepo) ListByPrimary(ctx context.Context, id string, et entity.EntityType, relType entity.RelationshipType) ([]*entity.Relationship, error) {
	sb := r.selectAll()
	where := []string{sb.Equal("primary_id", id), sb.Equal("primary_type", string(et))}
	if relType != "" {
		where = append(where, sb.Equal("relationship_type", string(relType)))
	}
	sb.Where(where...)
	return r.query(ctx, sb)
}

// ListBySecondary aristas entrantes a (id, et); relType vacío no filtra por tipo.
func (r *RelationshipRepo) ListBySecondary(ctx context.Context, id string, et entity.EntityType, relType entity.RelationshipType) ([]*entity.Relationship, error) {
	sb := r.selectAll()
	where := []string{sb.Equal("secondary_id", id), sb.Equal("secondary_type", string(et))}
	if relType != "" {
		where = append(where, sb.Equal("relationship_type", string(relType)))
	}
	sb.Where(where...)
	return r.query(ctx, sb)
}

func (r *RelationshipRepo) ListByType(ctx context.Context, relType entity.RelationshipType) ([]*entity.Relationship, error) {
	sb := r.selectAll()
	sb.Where(sb.Equal("relationship_type", string(relType)))
	return r.query(ctx, sb)
}

// DeleteByEntity borra todas las aristas en las que participa (id, et), en cualquier extremo.
func (r *RelationshipRepo) DeleteByEntity(ctx context.Context, id string, et entity.EntityType) (int64, error) {
	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("relationships")
	sb.Where(sb.Or(
		sb.And(sb.Equal("primary_id", id), sb.Equal("primary_type", string(et))),
		sb.And(sb.Equal("secondary_id", id), sb.Equal("secondary_type", string(et))),
	))

	query, args := sb.Build()
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete relationships of %s %s: %w", et, id, err)
	}
	return cmd.RowsAffected(), nil
}

func (r *RelationshipRepo) selectAll() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(relationshipColumns...)
	sb.From("relationships")
	sb.OrderBy("created_at", "id").Asc()
	return sb
}

func (r *RelationshipRepo) query(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]*entity.Relationship, error) {
	query, args := sb.Build()
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()
	list := []*entity.Relationship{}
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		list = append(list, rel)
	}
	return list, rows.Err()
}

func relationshipJSON(rel *entity.Relationship) (measurements, attributes []byte, err error) {
	if rel.Measurements != nil {
		if measurements, err = toJSON(rel.Measurements); err != nil {
			return nil, nil, err
		}
	}
	if rel.Attributes != nil {
		if attributes, err = toJSON(rel.Attributes); err != nil {
			return nil, nil, err
		}
	}
	return measurements, attributes, nil
}

func scanRelationship(row pgx.Row) (*entity.Relationship, error) {
	var (
		rel                        entity.Relationship
		primaryType, secondaryType string
		relType                    string
		measurements, attributes   []byte
	)
	if err := row.Scan(&rel.ID, &rel.PrimaryID, &primaryType, &rel.SecondaryID, &secondaryType, &relType,
		&measurements, &attributes, &rel.IsLegacy, &rel.Notes, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
		return nil, err
	}
	rel.PrimaryType = entity.EntityType(primaryType)
	rel.SecondaryType = entity.EntityType(secondaryType)
	rel.Type = entity.RelationshipType(relType)
	if len(measurements) > 0 && string(measurements) != "null" {
		rel.Measurements = &measurement.Descriptor{}
		if err := fromJSON(measurements, rel.Measurements); err != nil {
			return nil, err
		}
	}
	if len(attributes) > 0 && string(attributes) != "null" {
		switch rel.Type {
		case entity.RelPurchaseItem:
			a := &entity.PurchaseItemAttributes{}
			if err := fromJSON(attributes, a); err != nil {
				return nil, err
			}
			rel.Attributes = a
		case entity.RelSaleItem:
			a := &entity.SaleItemAttributes{}
			if err := fromJSON(attributes, a); err != nil {
				return nil, err
			}
			rel.Attributes = a
		}
	}
	return &rel, nil
}
