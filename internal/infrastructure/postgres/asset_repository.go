package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

var _ repository.AssetRepository = (*AssetRepo)(nil)

const assetColumns = `id, name, category, location, status, purchase_cost, current_value, notes, legacy_purchase_id,
	created_at, updated_at`

// AssetRepo implementación del puerto AssetRepository sobre PostgreSQL.
type AssetRepo struct {
	q Querier
}

// NewAssetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssetRepository(q Querier) *AssetRepo {
	return &AssetRepo{q: q}
}

func (r *AssetRepo) Create(ctx context.Context, a *entity.Asset) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.Name, a.Category, a.Location, a.Status, a.PurchaseCost, a.CurrentValue, a.Notes,
		a.LegacyPurchaseID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (r *AssetRepo) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	a, err := scanAsset(r.q.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

func (r *AssetRepo) List(ctx context.Context, limit, offset int) ([]*entity.Asset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *AssetRepo) ListAll(ctx context.Context) ([]*entity.Asset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY created_at, id`)
}

// ListWithLegacyReferences activos con compra de origen embebida.
func (r *AssetRepo) ListWithLegacyReferences(ctx context.Context) ([]*entity.Asset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM assets WHERE legacy_purchase_id <> '' ORDER BY created_at, id`)
}

func (r *AssetRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Asset, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()
	list := []*entity.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *AssetRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAsset(row pgx.Row) (*entity.Asset, error) {
	var a entity.Asset
	if err := row.Scan(&a.ID, &a.Name, &a.Category, &a.Location, &a.Status, &a.PurchaseCost, &a.CurrentValue,
		&a.Notes, &a.LegacyPurchaseID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
