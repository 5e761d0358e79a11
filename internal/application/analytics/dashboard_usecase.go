// Package analytics contiene los casos de uso de reportes de negocio y el resumen del dashboard.
package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

// DashboardUseCase genera el resumen de inventario, compras y ventas.
//
// Fuente de datos: repositorios de ítems, compras, ventas, activos y relaciones (solo lectura).
type DashboardUseCase struct {
	items      repository.ItemRepository
	purchases  repository.PurchaseRepository
	sales      repository.SaleRepository
	assets     repository.AssetRepository
	rels       repository.RelationshipRepository
	thresholds inventory.Thresholds
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	items repository.ItemRepository,
	purchases repository.PurchaseRepository,
	sales repository.SaleRepository,
	assets repository.AssetRepository,
	rels repository.RelationshipRepository,
	th inventory.Thresholds,
) *DashboardUseCase {
	return &DashboardUseCase{items: items, purchases: purchases, sales: sales, assets: assets, rels: rels, thresholds: th}
}

// GetSummary construye el DashboardSummaryDTO. quantityThreshold > 0 reemplaza el umbral
// de stock bajo por conteo solo para esta consulta.
//
// Cinco lecturas en paralelo: ítems, compras, ventas, activos y líneas sale_item.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, quantityThreshold float64) (*dto.DashboardSummaryDTO, error) {
	var (
		items     []*entity.Item
		purchases []*entity.Purchase
		sales     []*entity.Sale
		assets    []*entity.Asset
		saleLines []*entity.Relationship
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = uc.items.ListAll(gctx)
		return wrap("ítems", err)
	})
	g.Go(func() (err error) {
		purchases, err = uc.purchases.ListAll(gctx)
		return wrap("compras", err)
	})
	g.Go(func() (err error) {
		sales, err = uc.sales.ListAll(gctx)
		return wrap("ventas", err)
	})
	g.Go(func() (err error) {
		assets, err = uc.assets.ListAll(gctx)
		return wrap("activos", err)
	})
	g.Go(func() (err error) {
		saleLines, err = uc.rels.ListByType(gctx, entity.RelSaleItem)
		return wrap("líneas de venta", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	th := uc.thresholds
	if quantityThreshold > 0 {
		th.Quantity = quantityThreshold
	}
	counts, low := inventory.CountStatuses(items, th)
	out := &dto.DashboardSummaryDTO{
		ItemCount:      len(items),
		InventoryValue: inventory.TotalInventoryValue(items).Round(2),
		StockStatus:    counts,
		LowStock:       make([]dto.LowStockItemDTO, 0, len(low)),
		PurchaseCount:  len(purchases),
		SaleCount:      len(sales),
	}
	for _, it := range low {
		amount := it.Quantity.String()
		if it.IsContinuous() && it.PriceType != entity.PriceTypeEach {
			amount = it.Measure.String()
		}
		out.LowStock = append(out.LowStock, dto.LowStockItemDTO{
			ItemID: it.ID,
			Name:   it.Name,
			Status: inventory.StockStatus(it, th),
			Amount: amount,
		})
	}
	sort.Slice(out.LowStock, func(i, j int) bool { return out.LowStock[i].Name < out.LowStock[j].Name })

	spend := decimal.Zero
	for _, p := range purchases {
		spend = spend.Add(p.Total)
	}
	revenue := decimal.Zero
	for _, s := range sales {
		revenue = revenue.Add(s.Total)
	}
	assetValue := decimal.Zero
	for _, a := range assets {
		assetValue = assetValue.Add(a.CurrentValue)
	}
	out.PurchaseSpend = spend.Round(2)
	out.SalesRevenue = revenue.Round(2)
	out.AssetValue = assetValue.Round(2)
	out.SalesProfit = salesProfit(saleLines, items).Round(2)
	return out, nil
}

// salesProfit Σ (totalPrice − costo del ítem × cantidad movida) sobre las líneas sale_item.
// Las líneas cuyo ítem ya no existe o cuya medida no es convertible se cuentan sin costo.
func salesProfit(lines []*entity.Relationship, items []*entity.Item) decimal.Decimal {
	byID := make(map[string]*entity.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	profit := decimal.Zero
	for _, rel := range lines {
		attrs, ok := rel.SaleItem()
		if !ok {
			continue
		}
		line := attrs.TotalPrice
		if it, ok := byID[rel.SecondaryID]; ok && rel.Measurements != nil {
			if amount, _, err := inventory.MovementAmount(it, *rel.Measurements); err == nil {
				line = line.Sub(it.Cost.Mul(amount))
			}
		}
		profit = profit.Add(line)
	}
	return profit
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}
