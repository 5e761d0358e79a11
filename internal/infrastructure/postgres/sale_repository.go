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

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, customer, channel, date, subtotal, discount, tax, total, notes, legacy_items, created_at, updated_at`

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	var items []byte
	var err error
	if len(s.LegacyItems) > 0 {
		if items, err = toJSON(s.LegacyItems); err != nil {
			return err
		}
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.Customer, s.Channel, s.Date, s.Subtotal, s.Discount, s.Tax, s.Total, s.Notes,
		items, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// List lista ventas con paginación.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	return r.list(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListAll lista todas las ventas.
func (r *SaleRepo) ListAll(ctx context.Context) ([]*entity.Sale, error) {
	return r.list(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at, id`)
}

// ListWithLegacyReferences ventas con líneas embebidas.
func (r *SaleRepo) ListWithLegacyReferences(ctx context.Context) ([]*entity.Sale, error) {
	return r.list(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE jsonb_array_length(COALESCE(legacy_items, '[]'::jsonb)) > 0
		ORDER BY created_at, id`)
}

func (r *SaleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	list := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Delete elimina la cabecera de la venta.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var items []byte
	if err := row.Scan(&s.ID, &s.Customer, &s.Channel, &s.Date, &s.Subtotal, &s.Discount, &s.Tax, &s.Total,
		&s.Notes, &items, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := fromJSON(items, &s.LegacyItems); err != nil {
		return nil, err
	}
	return &s, nil
}
