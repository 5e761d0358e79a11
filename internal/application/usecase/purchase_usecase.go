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
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// PurchaseUseCase registra compras. Cada línea es una relación purchase_item y, si la compra
// está recibida, suma stock y recalcula el costo promedio ponderado del ítem.
type PurchaseUseCase struct {
	purchases repository.PurchaseRepository
	rels      repository.RelationshipRepository
	tx        ports.TxRunner
	log       zerolog.Logger
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(purchases repository.PurchaseRepository, rels repository.RelationshipRepository, tx ports.TxRunner, log zerolog.Logger) *PurchaseUseCase {
	return &PurchaseUseCase{purchases: purchases, rels: rels, tx: tx, log: log}
}

type purchaseLine struct {
	req      dto.PurchaseLineRequest
	measure  measurement.Descriptor
	original decimal.Decimal
	total    decimal.Decimal
}

// Create registra la compra con sus líneas en una sola transacción.
func (uc *PurchaseUseCase) Create(ctx context.Context, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if len(in.Items) == 0 && len(in.Assets) == 0 {
		return nil, fmt.Errorf("%w: la compra no tiene líneas", domain.ErrInvalidInput)
	}
	lines := make([]purchaseLine, 0, len(in.Items))
	subtotal := decimal.Zero
	for _, req := range in.Items {
		d, err := lineMeasure(req.Measurements)
		if err != nil {
			return nil, err
		}
		original, total, err := lineTotal(req.CostPerUnit, d, req.Discount)
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(total)
		lines = append(lines, purchaseLine{req: req, measure: d, original: original, total: total})
	}

	now := time.Now().UTC()
	p := &entity.Purchase{
		ID:            uuid.New().String(),
		Supplier:      in.Supplier,
		InvoiceNumber: in.InvoiceNumber,
		Date:          now,
		Status:        in.Status,
		Subtotal:      subtotal,
		Discount:      in.Discount,
		Tax:           in.Tax,
		Total:         subtotal.Sub(in.Discount).Add(in.Tax),
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Date != nil {
		p.Date = in.Date.UTC()
	}
	if p.Status == "" {
		p.Status = entity.PurchaseStatusReceived
	}

	var created []*entity.Relationship
	err := uc.tx.Run(ctx, func(repos ports.Repositories) error {
		created = created[:0]
		if err := repos.Purchases.Create(ctx, p); err != nil {
			return err
		}
		for _, line := range lines {
			item, err := repos.Items.GetForUpdate(ctx, line.req.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: Item %s", domain.ErrNotFound, line.req.ItemID)
			}
			if p.Status == entity.PurchaseStatusReceived {
				if err := inventory.ApplyIncoming(item, line.measure, line.total); err != nil {
					return err
				}
				if err := repos.Items.UpdateStock(ctx, item); err != nil {
					return err
				}
			}
			m := line.measure
			rel := &entity.Relationship{
				PrimaryID:     p.ID,
				PrimaryType:   entity.EntityPurchase,
				SecondaryID:   item.ID,
				SecondaryType: entity.EntityItem,
				Type:          entity.RelPurchaseItem,
				Measurements:  &m,
				Attributes: &entity.PurchaseItemAttributes{
					CostPerUnit:  line.req.CostPerUnit,
					TotalCost:    line.total,
					OriginalCost: line.original,
					Discount:     line.req.Discount,
				},
				Notes: line.req.Notes,
			}
			if err := relationship.Insert(ctx, repos, rel); err != nil {
				return err
			}
			created = append(created, rel)
		}
		for _, a := range in.Assets {
			rel := &entity.Relationship{
				PrimaryID:     p.ID,
				PrimaryType:   entity.EntityPurchase,
				SecondaryID:   a.AssetID,
				SecondaryType: entity.EntityAsset,
				Type:          entity.RelPurchaseAsset,
				Notes:         a.Notes,
			}
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
	uc.log.Info().Str("purchase_id", p.ID).Int("lines", len(created)).Str("total", p.Total.String()).Msg("compra registrada")
	return dto.ToPurchaseResponse(p, created), nil
}

// GetByID obtiene la compra con sus líneas.
func (uc *PurchaseUseCase) GetByID(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	p, err := uc.purchases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.rels.ListByPrimary(ctx, id, entity.EntityPurchase, "")
	if err != nil {
		return nil, err
	}
	return dto.ToPurchaseResponse(p, lines), nil
}

// List lista compras paginadas (sin líneas).
func (uc *PurchaseUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.PurchaseResponse, error) {
	page.DefaultPage()
	list, err := uc.purchases.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ToPurchaseResponse(p, nil))
	}
	return out, nil
}

// Delete elimina la compra y sus relaciones. El stock ya recibido no se revierte.
func (uc *PurchaseUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(repos ports.Repositories) error {
		if _, err := repos.Relationships.DeleteByEntity(ctx, id, entity.EntityPurchase); err != nil {
			return err
		}
		return repos.Purchases.Delete(ctx, id)
	})
}
