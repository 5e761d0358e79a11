package memory

import (
	"context"
	"time"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementa repository.ItemRepository.
type ItemRepo struct{ s *Store }

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	return r.s.write(func(st *state) error {
		item.ID = newID(item.ID)
		if _, ok := st.items[item.ID]; ok {
			return domain.ErrDuplicate
		}
		if item.SKU != "" {
			for _, other := range st.items {
				if other.SKU == item.SKU {
					return domain.ErrDuplicate
				}
			}
		}
		now := r.s.now()
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		st.items[item.ID] = cloneItem(*item)
		return nil
	})
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	r.s.read(func(st *state) {
		if v, ok := st.items[id]; ok {
			c := cloneItem(v)
			out = &c
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: el bloqueo lo da Store.Run.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok {
			return domain.ErrNotFound
		}
		item.CreatedAt = cur.CreatedAt
		item.UpdatedAt = r.s.now()
		st.items[item.ID] = cloneItem(*item)
		return nil
	})
}

func (r *ItemRepo) UpdateStock(_ context.Context, item *entity.Item) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Quantity = item.Quantity
		cur.Measure = item.Measure
		cur.Cost = item.Cost
		cur.UpdatedAt = r.s.now()
		st.items[item.ID] = cur
		return nil
	})
}

func (r *ItemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	return page(r.collect(nil), limit, offset), nil
}

func (r *ItemRepo) ListAll(_ context.Context) ([]*entity.Item, error) {
	return r.collect(nil), nil
}

func (r *ItemRepo) ListWithLegacyReferences(_ context.Context) ([]*entity.Item, error) {
	return r.collect(func(it *entity.Item) bool {
		return len(it.LegacyComponents) > 0 || it.LegacyDerivedFrom != nil
	}), nil
}

func (r *ItemRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.items[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.items, id)
		return nil
	})
}

func (r *ItemRepo) collect(keep func(*entity.Item) bool) []*entity.Item {
	out := []*entity.Item{}
	r.s.read(func(st *state) {
		for _, v := range st.items {
			c := cloneItem(v)
			if keep == nil || keep(&c) {
				out = append(out, &c)
			}
		}
	})
	sortByCreated(out,
		func(i *entity.Item) time.Time { return i.CreatedAt },
		func(i *entity.Item) string { return i.ID })
	return out
}
