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

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseColumns = `id, supplier, invoice_number, date, status, subtotal, discount, tax, total, notes,
	legacy_items, legacy_assets, created_at, updated_at`

// PurchaseRepo implementación del puerto PurchaseRepository sobre PostgreSQL.
// Las líneas no viven aquí: son relaciones purchase_item / purchase_asset.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create persiste la cabecera de la compra.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	var items, assets []byte
	var err error
	if len(p.LegacyItems) > 0 {
		if items, err = toJSON(p.LegacyItems); err != nil {
			return err
		}
	}
	if len(p.LegacyAssets) > 0 {
		if assets, err = toJSON(p.LegacyAssets); err != nil {
			return err
		}
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Supplier, p.InvoiceNumber, p.Date, p.Status, p.Subtotal, p.Discount, p.Tax, p.Total, p.Notes,
		items, assets, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetByID obtiene una compra por ID.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// List lista compras con paginación.
func (r *PurchaseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Purchase, error) {
	return r.list(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListAll lista todas las compras.
func (r *PurchaseRepo) ListAll(ctx context.Context) ([]*entity.Purchase, error) {
	return r.list(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY created_at, id`)
}

// ListWithLegacyReferences compras con líneas o activos embebidos.
func (r *PurchaseRepo) ListWithLegacyReferences(ctx context.Context) ([]*entity.Purchase, error) {
	return r.list(ctx, `
		SELECT `+purchaseColumns+` FROM purchases
		WHERE jsonb_array_length(COALESCE(legacy_items, '[]'::jsonb)) > 0
		   OR jsonb_array_length(COALESCE(legacy_assets, '[]'::jsonb)) > 0
		ORDER BY created_at, id`)
}

func (r *PurchaseRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Purchase, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	list := []*entity.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina la cabecera; las relaciones las borra el caso de uso en la misma tx.
func (r *PurchaseRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	var items, assets []byte
	if err := row.Scan(&p.ID, &p.Supplier, &p.InvoiceNumber, &p.Date, &p.Status, &p.Subtotal, &p.Discount,
		&p.Tax, &p.Total, &p.Notes, &items, &assets, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := fromJSON(items, &p.LegacyItems); err != nil {
		return nil, err
	}
	if err := fromJSON(assets, &p.LegacyAssets); err != nil {
		return nil, err
	}
	return &p, nil
}
