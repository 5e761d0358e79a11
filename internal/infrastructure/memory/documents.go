package memory

import (
	"context"
	"time"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

var (
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.SaleRepository     = (*SaleRepo)(nil)
	_ repository.AssetRepository    = (*AssetRepo)(nil)
)

// PurchaseRepo implementa repository.PurchaseRepository.
type PurchaseRepo struct{ s *Store }

func (r *PurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.s.write(func(st *state) error {
		p.ID = newID(p.ID)
		if _, ok := st.purchases[p.ID]; ok {
			return domain.ErrDuplicate
		}
		now := r.s.now()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		st.purchases[p.ID] = clonePurchase(*p)
		return nil
	})
}

func (r *PurchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	r.s.read(func(st *state) {
		if v, ok := st.purchases[id]; ok {
			c := clonePurchase(v)
			out = &c
		}
	})
	return out, nil
}

func (r *PurchaseRepo) List(_ context.Context, limit, offset int) ([]*entity.Purchase, error) {
	return page(r.collect(nil), limit, offset), nil
}

func (r *PurchaseRepo) ListAll(_ context.Context) ([]*entity.Purchase, error) {
	return r.collect(nil), nil
}

func (r *PurchaseRepo) ListWithLegacyReferences(_ context.Context) ([]*entity.Purchase, error) {
	return r.collect(func(p *entity.Purchase) bool {
		return len(p.LegacyItems) > 0 || len(p.LegacyAssets) > 0
	}), nil
}

func (r *PurchaseRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.purchases[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.purchases, id)
		return nil
	})
}

func (r *PurchaseRepo) collect(keep func(*entity.Purchase) bool) []*entity.Purchase {
	out := []*entity.Purchase{}
	r.s.read(func(st *state) {
		for _, v := range st.purchases {
			c := clonePurchase(v)
			if keep == nil || keep(&c) {
				out = append(out, &c)
			}
		}
	})
	sortByCreated(out,
		func(p *entity.Purchase) time.Time { return p.CreatedAt },
		func(p *entity.Purchase) string { return p.ID })
	return out
}

// SaleRepo implementa repository.SaleRepository.
type SaleRepo struct{ s *Store }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.s.write(func(st *state) error {
		sale.ID = newID(sale.ID)
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		now := r.s.now()
		if sale.CreatedAt.IsZero() {
			sale.CreatedAt = now
		}
		sale.UpdatedAt = now
		st.sales[sale.ID] = cloneSale(*sale)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.s.read(func(st *state) {
		if v, ok := st.sales[id]; ok {
			c := cloneSale(v)
			out = &c
		}
	})
	return out, nil
}

func (r *SaleRepo) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	return page(r.collect(nil), limit, offset), nil
}

func (r *SaleRepo) ListAll(_ context.Context) ([]*entity.Sale, error) {
	return r.collect(nil), nil
}

func (r *SaleRepo) ListWithLegacyReferences(_ context.Context) ([]*entity.Sale, error) {
	return r.collect(func(s *entity.Sale) bool { return len(s.LegacyItems) > 0 }), nil
}

func (r *SaleRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.sales, id)
		return nil
	})
}

func (r *SaleRepo) collect(keep func(*entity.Sale) bool) []*entity.Sale {
	out := []*entity.Sale{}
	r.s.read(func(st *state) {
		for _, v := range st.sales {
			c := cloneSale(v)
			if keep == nil || keep(&c) {
				out = append(out, &c)
			}
		}
	})
	sortByCreated(out,
		func(s *entity.Sale) time.Time { return s.CreatedAt },
		func(s *entity.Sale) string { return s.ID })
	return out
}

// AssetRepo implementa repository.AssetRepository.
type AssetRepo struct{ s *Store }

func (r *AssetRepo) Create(_ context.Context, a *entity.Asset) error {
	return r.s.write(func(st *state) error {
		a.ID = newID(a.ID)
		if _, ok := st.assets[a.ID]; ok {
			return domain.ErrDuplicate
		}
		now := r.s.now()
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.UpdatedAt = now
		st.assets[a.ID] = *a
		return nil
	})
}

func (r *AssetRepo) GetByID(_ context.Context, id string) (*entity.Asset, error) {
	var out *entity.Asset
	r.s.read(func(st *state) {
		if v, ok := st.assets[id]; ok {
			out = &v
		}
	})
	return out, nil
}

func (r *AssetRepo) List(_ context.Context, limit, offset int) ([]*entity.Asset, error) {
	return page(r.collect(nil), limit, offset), nil
}

func (r *AssetRepo) ListAll(_ context.Context) ([]*entity.Asset, error) {
	return r.collect(nil), nil
}

func (r *AssetRepo) ListWithLegacyReferences(_ context.Context) ([]*entity.Asset, error) {
	return r.collect(func(a *entity.Asset) bool { return a.LegacyPurchaseID != "" }), nil
}

func (r *AssetRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.assets[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.assets, id)
		return nil
	})
}

func (r *AssetRepo) collect(keep func(*entity.Asset) bool) []*entity.Asset {
	out := []*entity.Asset{}
	r.s.read(func(st *state) {
		for _, v := range st.assets {
			c := v
			if keep == nil || keep(&c) {
				out = append(out, &c)
			}
		}
	})
	sortByCreated(out,
		func(a *entity.Asset) time.Time { return a.CreatedAt },
		func(a *entity.Asset) string { return a.ID })
	return out
}
