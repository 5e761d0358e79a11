package analytics_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biztracker/internal/application/analytics"
	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/usecase"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/internal/infrastructure/memory"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestDashboard_GetSummary(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	th := inventory.DefaultThresholds()
	items := usecase.NewItemUseCase(ms.Items(), ms, th)
	sales := usecase.NewSaleUseCase(ms.Sales(), ms.Relationships(), ms, zerolog.Nop())
	purchases := usecase.NewPurchaseUseCase(ms.Purchases(), ms.Relationships(), ms, zerolog.Nop())

	pan, err := items.Create(ctx, dto.CreateItemRequest{Name: "Pan", Price: dec(10), Cost: dec(4), Quantity: dec(3)})
	require.NoError(t, err)
	_, err = items.Create(ctx, dto.CreateItemRequest{
		Name: "Harina", TrackingType: measurement.KindWeight, PriceType: "per_weight_unit",
		Price: dec(3), Measure: measurement.Descriptor{Kind: measurement.KindWeight, Value: 5, Unit: "lb"},
	})
	require.NoError(t, err)

	_, err = purchases.Create(ctx, dto.CreatePurchaseRequest{
		Supplier: "Molino",
		Items:    []dto.PurchaseLineRequest{{ItemID: pan.ID, Measurements: measurement.Quantity(1), CostPerUnit: dec(4)}},
	})
	require.NoError(t, err)
	_, err = sales.Create(ctx, dto.CreateSaleRequest{
		Items: []dto.SaleLineRequest{{ItemID: pan.ID, Measurements: measurement.Quantity(2)}},
	})
	require.NoError(t, err)

	uc := analytics.NewDashboardUseCase(ms.Items(), ms.Purchases(), ms.Sales(), ms.Assets(), ms.Relationships(), th)
	sum, err := uc.GetSummary(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.ItemCount)
	// Pan: 10 × 2 restantes; Harina: 3 × 5 lb.
	assert.True(t, sum.InventoryValue.Equal(dec(35)), sum.InventoryValue.String())
	assert.Equal(t, inventory.StatusCounts{Success: 1, Warning: 1}, sum.StockStatus)
	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, "Pan", sum.LowStock[0].Name)
	assert.True(t, sum.PurchaseSpend.Equal(dec(4)))
	assert.True(t, sum.SalesRevenue.Equal(dec(20)))
	assert.True(t, sum.SalesProfit.Equal(dec(12)), "20 − 4 × 2")

	relaxed, err := uc.GetSummary(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, relaxed.LowStock)
}

func TestDashboard_SinDatos(t *testing.T) {
	ms := memory.NewStore()
	uc := analytics.NewDashboardUseCase(ms.Items(), ms.Purchases(), ms.Sales(), ms.Assets(), ms.Relationships(), inventory.DefaultThresholds())
	sum, err := uc.GetSummary(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, sum.ItemCount)
	assert.NotNil(t, sum.LowStock)
	assert.True(t, sum.SalesProfit.IsZero())
}
