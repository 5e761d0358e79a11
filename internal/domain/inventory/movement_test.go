package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

func TestApplyIncoming_Cantidad(t *testing.T) {
	item := &entity.Item{TrackingType: measurement.KindQuantity, Quantity: dec(10), Cost: dec(2)}
	require.NoError(t, inventory.ApplyIncoming(item, measurement.Quantity(10), dec(40)))
	assert.True(t, item.Quantity.Equal(dec(20)))
	assert.True(t, item.Cost.Equal(dec(3)))
}

func TestApplyIncoming_PesoConvierteUnidad(t *testing.T) {
	item := &entity.Item{
		TrackingType: measurement.KindWeight,
		PriceType:    "per_weight_unit",
		Cost:         dec(10),
		Measure:      measurement.Descriptor{Kind: measurement.KindWeight, Value: 1, Unit: "kg"},
	}
	require.NoError(t, inventory.ApplyIncoming(item,
		measurement.Descriptor{Kind: measurement.KindWeight, Value: 1000, Unit: "g"}, dec(20)))
	assert.InDelta(t, 2, item.Measure.Value, 1e-9)
	assert.True(t, item.Cost.Equal(dec(15)))
}

func TestApplyIncoming_FamiliaIncompatible(t *testing.T) {
	item := &entity.Item{
		TrackingType: measurement.KindWeight,
		Measure:      measurement.Descriptor{Kind: measurement.KindWeight, Value: 1, Unit: "kg"},
	}
	err := inventory.ApplyIncoming(item, measurement.Descriptor{Kind: measurement.KindLength, Value: 2, Unit: "m"}, dec(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyOutgoing(t *testing.T) {
	item := &entity.Item{TrackingType: measurement.KindQuantity, Quantity: dec(3)}
	moved, err := inventory.ApplyOutgoing(item, measurement.Quantity(2))
	require.NoError(t, err)
	assert.True(t, moved.Equal(dec(2)))
	assert.True(t, item.Quantity.Equal(dec(1)))

	_, err = inventory.ApplyOutgoing(item, measurement.Quantity(2))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
