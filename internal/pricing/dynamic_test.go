package pricing

import (
	"testing"
	"time"

	"catering_orders/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveDiscountForPrefersLatestStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	discounts := []models.DynamicMenuDiscount{
		{ID: 1, DiscountPercentage: d("10"), StartDate: now.AddDate(0, 0, -10), IsActive: true},
		{ID: 2, DiscountPercentage: d("20"), StartDate: now.AddDate(0, 0, -2), IsActive: true},
		{ID: 3, DiscountPercentage: d("30"), StartDate: now.AddDate(0, 0, -1), IsActive: false},
		{ID: 4, DiscountPercentage: d("40"), StartDate: now.AddDate(0, 0, 1), IsActive: true},
	}

	active := ActiveDiscountFor(discounts, now)
	require.NotNil(t, active)
	assert.Equal(t, uint(2), active.ID)
}

func TestActiveDiscountForBreaksTiesByID(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -1)
	discounts := []models.DynamicMenuDiscount{
		{ID: 9, DiscountPercentage: d("10"), StartDate: start, IsActive: true},
		{ID: 5, DiscountPercentage: d("20"), StartDate: start, IsActive: true},
	}

	active := ActiveDiscountFor(discounts, now)
	require.NotNil(t, active)
	assert.Equal(t, uint(5), active.ID)
	assert.Equal(t, uint(9), discounts[0].ID, "input must not be reordered")
}

func TestActiveDiscountForSkipsExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-time.Hour)
	discounts := []models.DynamicMenuDiscount{
		{ID: 1, DiscountPercentage: d("10"), StartDate: now.AddDate(0, 0, -3), EndDate: &ended, IsActive: true},
	}

	assert.Nil(t, ActiveDiscountFor(discounts, now))
	assert.Nil(t, ActiveDiscountFor(nil, now))
}

func TestDiscountedPrice(t *testing.T) {
	discount := &models.DynamicMenuDiscount{DiscountPercentage: d("25")}
	assert.Equal(t, "30000", DiscountedPrice(d("40000"), discount).String())

	discount.MaxDiscountPerItem = decimal.NewNullDecimal(d("5000"))
	assert.Equal(t, "35000", DiscountedPrice(d("40000"), discount).String())

	assert.Equal(t, "40000", DiscountedPrice(d("40000"), nil).String())

	full := &models.DynamicMenuDiscount{DiscountPercentage: d("100")}
	assert.True(t, DiscountedPrice(d("40000"), full).IsZero())
}

func TestDiscountedPriceFloorsToCents(t *testing.T) {
	discount := &models.DynamicMenuDiscount{DiscountPercentage: d("33.33")}
	// 999 - 332.9667 = 666.0333
	assert.Equal(t, "666.03", DiscountedPrice(d("999"), discount).String())
}
