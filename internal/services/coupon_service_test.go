package services

import (
	"testing"
	"time"

	"catering_orders/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponValidate_Reasons(t *testing.T) {
	f := newFixture(t)
	user := f.createEmployee("wes", "100000", f.company)
	past := f.now.AddDate(0, 0, -2)
	zero := 0

	f.createCode("OFF", func(c *models.DiscountCode) { c.IsActive = false })
	f.createCode("SOON", func(c *models.DiscountCode) { c.StartDate = f.now.AddDate(0, 0, 1) })
	f.createCode("OLD", func(c *models.DiscountCode) { c.EndDate = &past; c.StartDate = past.AddDate(0, 0, -5) })
	f.createCode("FULL", func(c *models.DiscountCode) { c.MaxUsageCount = &zero })
	f.createCode("BIG", func(c *models.DiscountCode) { c.MinOrderAmount = decimal.NewNullDecimal(dec("100000")) })
	used := f.createCode("USED", nil)
	require.NoError(t, f.discounts.CreateUsage(f.ctx, &models.DiscountCodeUsage{
		DiscountCodeID: used.ID,
		UserID:         user.ID,
		OrderID:        777,
	}))

	subtotal := decimal.NewNullDecimal(dec("50000"))
	tests := []struct {
		code   string
		reason string
	}{
		{"MISSING", ReasonCodeNotFound},
		{"OFF", ReasonInactive},
		{"SOON", ReasonNotYetStarted},
		{"OLD", ReasonExpired},
		{"FULL", ReasonUsageCapReached},
		{"USED", ReasonPersonalCapReached},
		{"BIG", ReasonOrderTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := f.coupons.Validate(f.ctx, nil, tt.code, user.ID, subtotal)
			var invalid *InvalidCouponError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.reason, invalid.Reason)
			assert.Equal(t, tt.code, invalid.Code)
		})
	}
}

func TestCouponValidate_Amounts(t *testing.T) {
	f := newFixture(t)
	user := f.createEmployee("xena", "100000", f.company)
	f.createCode("PCT", func(c *models.DiscountCode) {
		c.Value = dec("20")
		c.MaxDiscountAmount = decimal.NewNullDecimal(dec("8000"))
	})
	f.createCode("FLAT", func(c *models.DiscountCode) {
		c.DiscountType = string(models.CouponFixedAmount)
		c.Value = dec("70000")
	})

	got, err := f.coupons.Validate(f.ctx, nil, "pct", user.ID, decimal.NewNullDecimal(dec("30000")))
	require.NoError(t, err)
	assertDecimal(t, "6000", got.DiscountAmount)

	got, err = f.coupons.Validate(f.ctx, nil, "PCT", user.ID, decimal.NewNullDecimal(dec("50000")))
	require.NoError(t, err)
	assertDecimal(t, "8000", got.DiscountAmount)

	got, err = f.coupons.Validate(f.ctx, nil, "FLAT", user.ID, decimal.NewNullDecimal(dec("50000")))
	require.NoError(t, err)
	assertDecimal(t, "50000", got.DiscountAmount)

	got, err = f.coupons.Validate(f.ctx, nil, "FLAT", user.ID, decimal.NullDecimal{})
	require.NoError(t, err)
	assertDecimal(t, "0", got.DiscountAmount)
	assert.Equal(t, "FLAT", got.Code.Code)
}

func TestCouponRedeemAndRelease(t *testing.T) {
	f := newFixture(t)
	user := f.createEmployee("yuri", "100000", f.company)
	one := 1
	code := f.createCode("SINGLE", func(c *models.DiscountCode) {
		c.MaxUsageCount = &one
		c.MaxUsagePerUser = 5
	})

	usage, err := f.coupons.Redeem(f.ctx, nil, code, user.ID, 101)
	require.NoError(t, err)
	assert.Equal(t, code.ID, usage.DiscountCodeID)

	_, err = f.coupons.Redeem(f.ctx, nil, code, user.ID, 102)
	var invalid *InvalidCouponError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ReasonUsageCapReached, invalid.Reason)

	require.NoError(t, f.coupons.Release(f.ctx, nil, 101))
	stored, err := f.discounts.FindByCode(f.ctx, "SINGLE")
	require.NoError(t, err)
	assert.Zero(t, stored.UsageCount)

	// Orders without a code release nothing.
	require.NoError(t, f.coupons.Release(f.ctx, nil, 555))
}

func TestCouponRedeem_SameOrderTwice(t *testing.T) {
	f := newFixture(t)
	user := f.createEmployee("zoe", "100000", f.company)
	code := f.createCode("TWICE", func(c *models.DiscountCode) { c.MaxUsagePerUser = 3 })

	_, err := f.coupons.Redeem(f.ctx, nil, code, user.ID, 200)
	require.NoError(t, err)

	_, err = f.coupons.Redeem(f.ctx, nil, code, user.ID, 200)
	var invalid *InvalidCouponError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ReasonPersonalCapReached, invalid.Reason)
}

func TestCouponValidate_ExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	user := f.createEmployee("abe", "100000", f.company)
	end := f.now
	f.createCode("EDGE", func(c *models.DiscountCode) { c.EndDate = &end })

	_, err := f.coupons.Validate(f.ctx, nil, "EDGE", user.ID, decimal.NullDecimal{})
	require.NoError(t, err)

	later := NewCouponService(f.discounts, func() time.Time { return end.Add(time.Second) })
	_, err = later.Validate(f.ctx, nil, "EDGE", user.ID, decimal.NullDecimal{})
	var invalid *InvalidCouponError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ReasonExpired, invalid.Reason)
}

func TestCouponRedeem_CapReachedAfterValidation(t *testing.T) {
	f := newFixture(t)
	one := 1
	f.createCode("LAST", func(c *models.DiscountCode) { c.MaxUsageCount = &one })
	first := f.createEmployee("sam", "100000", f.company)
	second := f.createEmployee("tara", "100000", f.company)
	subtotal := decimal.NewNullDecimal(dec("50000"))

	// Both checks read usage_count 0 before either redemption lands.
	a, err := f.coupons.Validate(f.ctx, nil, "LAST", first.ID, subtotal)
	require.NoError(t, err)
	b, err := f.coupons.Validate(f.ctx, nil, "last", second.ID, subtotal)
	require.NoError(t, err)

	_, err = f.coupons.Redeem(f.ctx, nil, a.Code, first.ID, 301)
	require.NoError(t, err)
	_, err = f.coupons.Redeem(f.ctx, nil, b.Code, second.ID, 302)
	var invalid *InvalidCouponError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ReasonUsageCapReached, invalid.Reason)

	stored, err := f.discounts.FindByCode(f.ctx, "LAST")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)
	assert.EqualValues(t, 1, f.countRows(&models.DiscountCodeUsage{}, "discount_code_id = ?", stored.ID))
}
