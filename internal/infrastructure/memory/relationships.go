package memory

import (
	"context"
	"time"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

var _ repository.RelationshipRepository = (*RelationshipRepo)(nil)

// RelationshipRepo implementa repository.RelationshipRepository con las mismas
// restricciones de unicidad que los índices de PostgreSQL.
type RelationshipRepo struct{ s *Store }

func (r *RelationshipRepo) Create(_ context.Context, rel *entity.Relationship) error {
	return r.s.write(func(st *state) error {
		rel.ID = newID(rel.ID)
		if _, ok := st.relationships[rel.ID]; ok {
			return domain.ErrDuplicate
		}
		key := rel.Key()
		for _, other := range st.relationships {
			if other.Key() == key {
				return domain.ErrDuplicate
			}
			if rel.Type == entity.RelDerived && other.Type == entity.RelDerived && other.SecondaryID == rel.SecondaryID {
				return domain.ErrDerivedSourceExists
			}
		}
		now := r.s.now()
		if rel.CreatedAt.IsZero() {
			rel.CreatedAt = now
		}
		rel.UpdatedAt = now
		st.relationships[rel.ID] = cloneRelationship(*rel)
		return nil
	})
}

func (r *RelationshipRepo) GetByID(_ context.Context, id string) (*entity.Relationship, error) {
	var out *entity.Relationship
	r.s.read(func(st *state) {
		if v, ok := st.relationships[id]; ok {
			c := cloneRelationship(v)
			out = &c
		}
	})
	return out, nil
}

func (r *RelationshipRepo) Update(_ context.Context, rel *entity.Relationship) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.relationships[rel.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Measurements = rel.Measurements
		cur.Attributes = rel.Attributes
		cur.Notes = rel.Notes
		cur.UpdatedAt = r.s.now()
		st.relationships[rel.ID] = cloneRelationship(cur)
		rel.CreatedAt, rel.UpdatedAt = cur.CreatedAt, cur.UpdatedAt
		return nil
	})
}

func (r *RelationshipRepo) Delete(_ context.Context, id string) (bool, error) {
	var found bool
	err := r.s.write(func(st *state) error {
		_, found = st.relationships[id]
		delete(st.relationships, id)
		return nil
	})
	return found, err
}

func (r *RelationshipRepo) List(_ context.Context, limit, offset int) ([]*entity.Relationship, error) {
	return page(r.collect(nil), limit, offset), nil
}

func (r *RelationshipRepo) ListByPrimary(_ context.Context, id string, et entity.EntityType, relType entity.RelationshipType) ([]*entity.Relationship, error) {
	return r.collect(func(rel *entity.Relationship) bool {
		return rel.PrimaryID == id && rel.PrimaryType == et && (relType == "" || rel.Type == relType)
	}), nil
}

func (r *RelationshipRepo) ListBySecondary(_ context.Context, id string, et entity.EntityType, relType entity.RelationshipType) ([]*entity.Relationship, error) {
	return r.collect(func(rel *entity.Relationship) bool {
		return rel.SecondaryID == id && rel.SecondaryType == et && (relType == "" || rel.Type == relType)
	}), nil
}

func (r *RelationshipRepo) ListByType(_ context.Context, relType entity.RelationshipType) ([]*entity.Relationship, error) {
	return r.collect(func(rel *entity.Relationship) bool { return rel.Type == relType }), nil
}

func (r *RelationshipRepo) DeleteByEntity(_ context.Context, id string, et entity.EntityType) (int64, error) {
	var n int64
	err := r.s.write(func(st *state) error {
		for k, rel := range st.relationships {
			if (rel.PrimaryID == id && rel.PrimaryType == et) || (rel.SecondaryID == id && rel.SecondaryType == et) {
				delete(st.relationships, k)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *RelationshipRepo) collect(keep func(*entity.Relationship) bool) []*entity.Relationship {
	out := []*entity.Relationship{}
	r.s.read(func(st *state) {
		for _, v := range st.relationships {
			c := cloneRelationship(v)
			if keep == nil || keep(&c) {
				out = append(out, &c)
			}
		}
	})
	sortByCreated(out,
		func(r *entity.Relationship) time.Time { return r.CreatedAt },
		func(r *entity.Relationship) string { return r.ID })
	return out
}
