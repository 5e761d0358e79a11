package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/internal/domain/repository"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// ItemUseCase casos de uso CRUD para ítems. El stock y el costo cambian vía compras y ventas.
type ItemUseCase struct {
	repo       repository.ItemRepository
	tx         ports.TxRunner
	thresholds inventory.Thresholds
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository, tx ports.TxRunner, th inventory.Thresholds) *ItemUseCase {
	return &ItemUseCase{repo: repo, tx: tx, thresholds: th}
}

// Create crea un ítem nuevo.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.TrackingType == "" {
		in.TrackingType = measurement.KindQuantity
	}
	if in.PriceType == "" {
		in.PriceType = entity.PriceTypeEach
	}
	now := time.Now().UTC()
	item := &entity.Item{
		ID:           uuid.New().String(),
		Name:         in.Name,
		SKU:          in.SKU,
		Category:     in.Category,
		ItemType:     in.ItemType,
		TrackingType: in.TrackingType,
		PriceType:    in.PriceType,
		Price:        in.Price,
		Cost:         in.Cost,
		Quantity:     in.Quantity,
		Measure:      in.Measure,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return dto.ToItemResponse(item, uc.thresholds), nil
}

// GetByID obtiene un ítem; domain.ErrNotFound si no existe.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToItemResponse(item, uc.thresholds), nil
}

// List lista ítems paginados. Si lowOnly, devuelve solo los que no están en success.
func (uc *ItemUseCase) List(ctx context.Context, page dto.PageRequest, lowOnly bool) ([]*dto.ItemResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ItemResponse, 0, len(list))
	for _, it := range list {
		if lowOnly && !inventory.IsLow(it, uc.thresholds) {
			continue
		}
		out = append(out, dto.ToItemResponse(it, uc.thresholds))
	}
	return out, nil
}

// Update actualización parcial. La familia de seguimiento no cambia después de creado.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.SKU != nil {
		item.SKU = *in.SKU
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.PriceType != nil {
		item.PriceType = *in.PriceType
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Cost != nil {
		item.Cost = *in.Cost
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.Measure != nil {
		item.Measure = *in.Measure
	}
	if in.Notes != nil {
		item.Notes = *in.Notes
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return dto.ToItemResponse(item, uc.thresholds), nil
}

// Delete elimina el ítem y todas las relaciones que lo tocan.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(repos ports.Repositories) error {
		if _, err := repos.Relationships.DeleteByEntity(ctx, id, entity.EntityItem); err != nil {
			return err
		}
		return repos.Items.Delete(ctx, id)
	})
}

func validateItem(item *entity.Item) error {
	if item.Quantity.IsNegative() || item.Price.IsNegative() || item.Cost.IsNegative() {
		return fmt.Errorf("%w: precio, costo y cantidad no pueden ser negativos", domain.ErrInvalidInput)
	}
	if !item.IsContinuous() {
		if !item.Measure.IsZero() {
			return fmt.Errorf("%w: un ítem por conteo no lleva medida", domain.ErrInvalidInput)
		}
		return nil
	}
	if item.Measure.Kind == "" {
		item.Measure.Kind = item.TrackingType
	}
	if item.Measure.Kind != item.TrackingType {
		return fmt.Errorf("%w: la medida (%s) no coincide con el seguimiento (%s)",
			domain.ErrInvalidInput, item.Measure.Kind, item.TrackingType)
	}
	if err := item.Measure.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
