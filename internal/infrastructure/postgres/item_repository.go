package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, sku, category, item_type, tracking_type, price_type, price, cost, quantity,
	measure, notes, legacy_components, legacy_derived_from, created_at, updated_at`

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo ítem. SKU repetido devuelve domain.ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	measure, components, derived, err := itemJSON(item)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		item.ID, item.Name, item.SKU, item.Category, item.ItemType, string(item.TrackingType), item.PriceType,
		item.Price, item.Cost, item.Quantity, measure, item.Notes, components, derived,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.get(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// GetForUpdate obtiene el ítem bloqueando la fila hasta el fin de la transacción.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.get(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

func (r *ItemRepo) get(ctx context.Context, query, id string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Update actualiza los datos editables del ítem (incluye stock y referencias legadas).
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	measure, components, derived, err := itemJSON(item)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE items SET name = $2, sku = $3, category = $4, price_type = $5, price = $6, cost = $7,
			quantity = $8, measure = $9, notes = $10, legacy_components = $11, legacy_derived_from = $12,
			updated_at = $13
		WHERE id = $1`,
		item.ID, item.Name, item.SKU, item.Category, item.PriceType, item.Price, item.Cost,
		item.Quantity, measure, item.Notes, components, derived, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock actualiza solo cantidad, medida y costo (usado por compras y ventas).
func (r *ItemRepo) UpdateStock(ctx context.Context, item *entity.Item) error {
	measure, err := toJSON(item.Measure)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE items SET quantity = $2, measure = $3, cost = $4, updated_at = now() WHERE id = $1`,
		item.ID, item.Quantity, measure, item.Cost,
	)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ítems con paginación (orden de creación).
func (r *ItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListAll lista todos los ítems.
func (r *ItemRepo) ListAll(ctx context.Context) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_at, id`)
}

// ListWithLegacyReferences ítems con componentes u origen embebidos.
func (r *ItemRepo) ListWithLegacyReferences(ctx context.Context) ([]*entity.Item, error) {
	return r.list(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE jsonb_array_length(COALESCE(legacy_components, '[]'::jsonb)) > 0
		   OR legacy_derived_from IS NOT NULL
		ORDER BY created_at, id`)
}

func (r *ItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	list := []*entity.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Delete elimina un ítem por ID.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func itemJSON(item *entity.Item) (measure, components, derived []byte, err error) {
	if measure, err = toJSON(item.Measure); err != nil {
		return
	}
	if len(item.LegacyComponents) > 0 {
		if components, err = toJSON(item.LegacyComponents); err != nil {
			return
		}
	}
	if item.LegacyDerivedFrom != nil {
		derived, err = toJSON(item.LegacyDerivedFrom)
	}
	return
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var (
		it                           entity.Item
		tracking                     string
		measure, components, derived []byte
	)
	if err := row.Scan(&it.ID, &it.Name, &it.SKU, &it.Category, &it.ItemType, &tracking, &it.PriceType,
		&it.Price, &it.Cost, &it.Quantity, &measure, &it.Notes, &components, &derived,
		&it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.TrackingType = measurement.Kind(tracking)
	if err := fromJSON(measure, &it.Measure); err != nil {
		return nil, err
	}
	if err := fromJSON(components, &it.LegacyComponents); err != nil {
		return nil, err
	}
	if len(derived) > 0 && string(derived) != "null" {
		it.LegacyDerivedFrom = &entity.LegacyDerivedFrom{}
		if err := fromJSON(derived, it.LegacyDerivedFrom); err != nil {
			return nil, err
		}
	}
	return &it, nil
}
