package commerce

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/toy-market/internal/models"
)

func TestUnitPriceRentTiers(t *testing.T) {
	toy := rentableToy()

	tests := []struct {
		duration models.RentDuration
		want     int64
	}{
		{models.DurationDay, 5},
		{models.DurationWeek, 20},
		{models.DurationTwoWeeks, 35},
	}

	for _, tt := range tests {
		price, err := UnitPrice(toy, models.KindRent, tt.duration)
		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.NewFromInt(tt.want)),
			"duration %s: expected %d, got %s", tt.duration, tt.want, price)
	}
}

func TestUnitPriceSale(t *testing.T) {
	toy := rentableToy()

	price, err := UnitPrice(toy, models.KindSale, "")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(60)))
}

func TestUnitPriceFlagViolations(t *testing.T) {
	toy := rentableToy()
	toy.IsRentable = false

	_, err := UnitPrice(toy, models.KindRent, models.DurationDay)
	assert.ErrorIs(t, err, ErrNotRentable)

	toy = rentableToy()
	toy.IsSaleable = false

	_, err = UnitPrice(toy, models.KindSale, "")
	assert.ErrorIs(t, err, ErrNotSaleable)
}

func TestUnitPriceInvalidDuration(t *testing.T) {
	_, err := UnitPrice(rentableToy(), models.KindRent, "fortnight")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestUnitPriceUnknownKind(t *testing.T) {
	_, err := UnitPrice(rentableToy(), models.TransactionKind("lease"), "")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestLineTotalMultipliesByQuantity(t *testing.T) {
	total, err := LineTotal(rentableToy(), models.LineItem{
		Kind:         models.KindRent,
		RentDuration: models.DurationWeek,
		Quantity:     2,
	})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(40)), "expected 40, got %s", total)
}

func TestPriceLineFillsDerivedFields(t *testing.T) {
	item := models.LineItem{
		Kind:     models.KindSale,
		Quantity: 3,
	}
	require.NoError(t, PriceLine(rentableToy(), &item))

	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(60)))
	assert.True(t, item.LineTotal.Equal(decimal.NewFromInt(180)))
}

func TestAggregate(t *testing.T) {
	assert.True(t, Aggregate(nil).Equal(decimal.Zero))

	items := []models.LineItem{
		{LineTotal: decimal.NewFromInt(40)},
		{LineTotal: decimal.NewFromInt(15)},
	}
	assert.True(t, Aggregate(items).Equal(decimal.NewFromInt(55)))

	reversed := []models.LineItem{items[1], items[0]}
	assert.True(t, Aggregate(reversed).Equal(Aggregate(items)))
}
