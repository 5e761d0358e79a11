package relationship

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// Converter materializa las referencias embebidas del modelo anterior como relaciones isLegacy.
// Es idempotente: una arista que ya existe cuenta como omitida. Las referencias embebidas
// no se borran de la entidad.
type Converter struct {
	repos ports.Repositories
	log   zerolog.Logger
}

// NewConverter construye el conversor.
func NewConverter(repos ports.Repositories, log zerolog.Logger) *Converter {
	return &Converter{repos: repos, log: log.With().Str("component", "legacy-converter").Logger()}
}

// ConvertEntity convierte las referencias legacy de una sola entidad.
func (c *Converter) ConvertEntity(ctx context.Context, et entity.EntityType, id string) (*dto.ConversionResult, error) {
	drafts, err := c.drafts(ctx, et, id)
	if err != nil {
		return nil, err
	}
	counts := c.apply(ctx, drafts)
	res := &dto.ConversionResult{
		Success: counts.Errors == 0,
		Result:  counts,
	}
	res.Message = fmt.Sprintf("%s %s: %d creadas, %d omitidas, %d errores", et, id, counts.Created, counts.Skipped, counts.Errors)
	c.log.Info().Str("entity_type", string(et)).Str("entity_id", id).
		Int("created", counts.Created).Int("skipped", counts.Skipped).Int("errors", counts.Errors).
		Msg("conversión legacy")
	return res, nil
}

func (c *Converter) apply(ctx context.Context, drafts []*entity.Relationship) dto.ConversionCounts {
	var counts dto.ConversionCounts
	for _, rel := range drafts {
		err := Insert(ctx, c.repos, rel)
		switch {
		case err == nil:
			counts.Created++
		case errors.Is(err, domain.ErrDuplicate):
			counts.Skipped++
		default:
			counts.Errors++
			counts.Details = append(counts.Details, fmt.Sprintf("%s %s -> %s: %v", rel.Type, rel.PrimaryID, rel.SecondaryID, err))
		}
	}
	return counts
}

// drafts carga la entidad y arma una relación por cada referencia embebida.
func (c *Converter) drafts(ctx context.Context, et entity.EntityType, id string) ([]*entity.Relationship, error) {
	switch et {
	case entity.EntityItem:
		it, err := c.repos.Items.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if it == nil {
			return nil, fmt.Errorf("%w: Item %s", domain.ErrNotFound, id)
		}
		return itemDrafts(it), nil
	case entity.EntityPurchase:
		p, err := c.repos.Purchases.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: Purchase %s", domain.ErrNotFound, id)
		}
		return purchaseDrafts(p), nil
	case entity.EntitySale:
		s, err := c.repos.Sales.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("%w: Sale %s", domain.ErrNotFound, id)
		}
		return saleDrafts(s), nil
	case entity.EntityAsset:
		a, err := c.repos.Assets.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, fmt.Errorf("%w: Asset %s", domain.ErrNotFound, id)
		}
		return assetDrafts(a), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedEntity, et)
}

func itemDrafts(it *entity.Item) []*entity.Relationship {
	out := make([]*entity.Relationship, 0, len(it.LegacyComponents)+1)
	for _, comp := range it.LegacyComponents {
		out = append(out, &entity.Relationship{
			PrimaryID:     it.ID,
			PrimaryType:   entity.EntityItem,
			SecondaryID:   comp.ItemID,
			SecondaryType: entity.EntityItem,
			Type:          entity.RelProductMaterial,
			Measurements:  measurementPtr(comp.Measurements),
			IsLegacy:      true,
		})
	}
	if from := it.LegacyDerivedFrom; from != nil {
		out = append(out, &entity.Relationship{
			PrimaryID:     from.ItemID,
			PrimaryType:   entity.EntityItem,
			SecondaryID:   it.ID,
			SecondaryType: entity.EntityItem,
			Type:          entity.RelDerived,
			Measurements:  measurementPtr(from.Measurements),
			IsLegacy:      true,
		})
	}
	return out
}

func purchaseDrafts(p *entity.Purchase) []*entity.Relationship {
	out := make([]*entity.Relationship, 0, len(p.LegacyItems)+len(p.LegacyAssets))
	for _, line := range p.LegacyItems {
		out = append(out, &entity.Relationship{
			PrimaryID:     p.ID,
			PrimaryType:   entity.EntityPurchase,
			SecondaryID:   line.ItemID,
			SecondaryType: entity.EntityItem,
			Type:          entity.RelPurchaseItem,
			Measurements:  measurementPtr(line.Measurements),
			Attributes: &entity.PurchaseItemAttributes{
				CostPerUnit:  line.CostPerUnit,
				TotalCost:    line.TotalCost,
				OriginalCost: line.OriginalCost,
				Discount:     line.Discount,
			},
			IsLegacy: true,
		})
	}
	for _, a := range p.LegacyAssets {
		out = append(out, &entity.Relationship{
			PrimaryID:     p.ID,
			PrimaryType:   entity.EntityPurchase,
			SecondaryID:   a.AssetID,
			SecondaryType: entity.EntityAsset,
			Type:          entity.RelPurchaseAsset,
			Notes:         a.Notes,
			IsLegacy:      true,
		})
	}
	return out
}

func saleDrafts(s *entity.Sale) []*entity.Relationship {
	out := make([]*entity.Relationship, 0, len(s.LegacyItems))
	for _, line := range s.LegacyItems {
		out = append(out, &entity.Relationship{
			PrimaryID:     s.ID,
			PrimaryType:   entity.EntitySale,
			SecondaryID:   line.ItemID,
			SecondaryType: entity.EntityItem,
			Type:          entity.RelSaleItem,
			Measurements:  measurementPtr(line.Measurements),
			Attributes: &entity.SaleItemAttributes{
				UnitPrice:  line.UnitPrice,
				TotalPrice: line.TotalPrice,
				Discount:   line.Discount,
			},
			IsLegacy: true,
		})
	}
	return out
}

func assetDrafts(a *entity.Asset) []*entity.Relationship {
	if a.LegacyPurchaseID == "" {
		return nil
	}
	return []*entity.Relationship{{
		PrimaryID:     a.LegacyPurchaseID,
		PrimaryType:   entity.EntityPurchase,
		SecondaryID:   a.ID,
		SecondaryType: entity.EntityAsset,
		Type:          entity.RelPurchaseAsset,
		IsLegacy:      true,
	}}
}
