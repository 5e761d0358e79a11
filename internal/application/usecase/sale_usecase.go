package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/application/relationship"
	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

// SaleUseCase registra ventas. Cada línea es una relación sale_item y descuenta stock.
type SaleUseCase struct {
	sales repository.SaleRepository
	rels  repository.RelationshipRepository
	tx    ports.TxRunner
	log   zerolog.Logger
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(sales repository.SaleRepository, rels repository.RelationshipRepository, tx ports.TxRunner, log zerolog.Logger) *SaleUseCase {
	return &SaleUseCase{sales: sales, rels: rels, tx: tx, log: log}
}

// Create registra la venta en una transacción. Si falta stock en cualquier línea no se graba nada
// (domain.ErrInsufficientStock). Un precio unitario cero toma el precio del ítem.
func (uc *SaleUseCase) Create(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene líneas", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	s := &entity.Sale{
		ID:        uuid.New().String(),
		Customer:  in.Customer,
		Channel:   in.Channel,
		Date:      now,
		Discount:  in.Discount,
		Tax:       in.Tax,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Date != nil {
		s.Date = in.Date.UTC()
	}

	var created []*entity.Relationship
	err := uc.tx.Run(ctx, func(repos ports.Repositories) error {
		created = created[:0]
		lines := make([]*entity.Relationship, 0, len(in.Items))
		subtotal := decimal.Zero
		for _, req := range in.Items {
			d, err := lineMeasure(req.Measurements)
			if err != nil {
				return err
			}
			item, err := repos.Items.GetForUpdate(ctx, req.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: Item %s", domain.ErrNotFound, req.ItemID)
			}
			unitPrice := req.UnitPrice
			if unitPrice.IsZero() {
				unitPrice = item.Price
			}
			_, total, err := lineTotal(unitPrice, d, req.Discount)
			if err != nil {
				return err
			}
			if _, err := inventory.ApplyOutgoing(item, d); err != nil {
				return fmt.Errorf("%w: %s", err, item.Name)
			}
			if err := repos.Items.UpdateStock(ctx, item); err != nil {
				return err
			}
			subtotal = subtotal.Add(total)
			lines = append(lines, &entity.Relationship{
				PrimaryID:     s.ID,
				PrimaryType:   entity.EntitySale,
				SecondaryID:   item.ID,
				SecondaryType: entity.EntityItem,
				Type:          entity.RelSaleItem,
				Measurements:  &d,
				Attributes: &entity.SaleItemAttributes{
					UnitPrice:  unitPrice,
					TotalPrice: total,
					Discount:   req.Discount,
				},
				Notes: req.Notes,
			})
		}
		s.Subtotal = subtotal
		s.Total = subtotal.Sub(s.Discount).Add(s.Tax)
		if err := repos.Sales.Create(ctx, s); err != nil {
			return err
		}
		for _, rel := range lines {
			if err := relationship.Insert(ctx, repos, rel); err != nil {
				return err
			}
			created = append(created, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", s.ID).Int("lines", len(created)).Str("total", s.Total.String()).Msg("venta registrada")
	return dto.ToSaleResponse(s, created), nil
}

// GetByID obtiene la venta con sus líneas.
func (uc *SaleUseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	s, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.rels.ListByPrimary(ctx, id, entity.EntitySale, entity.RelSaleItem)
	if err != nil {
		return nil, err
	}
	return dto.ToSaleResponse(s, lines), nil
}

// List lista ventas paginadas (sin líneas).
func (uc *SaleUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.SaleResponse, error) {
	page.DefaultPage()
	list, err := uc.sales.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ToSaleResponse(s, nil))
	}
	return out, nil
}

// Delete elimina la venta y sus relaciones. El stock vendido no se repone.
func (uc *SaleUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(repos ports.Repositories) error {
		if _, err := repos.Relationships.DeleteByEntity(ctx, id, entity.EntitySale); err != nil {
			return err
		}
		return repos.Sales.Delete(ctx, id)
	})
}
