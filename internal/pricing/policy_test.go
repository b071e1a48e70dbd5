package pricing

import (
	"testing"

	"catering_orders/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyWithoutPolicyRoundsToWhole(t *testing.T) {
	r := NewResolver(DefaultConfig())

	assert.True(t, r.Apply(d("12000.40"), nil).Equal(d("12000")))
	// banker's rounding on the tie
	assert.True(t, r.Apply(d("12000.50"), nil).Equal(d("12000")))
	assert.True(t, r.Apply(d("12001.50"), nil).Equal(d("12002")))
}

func TestApplyPercentageWithRounding(t *testing.T) {
	r := NewResolver(DefaultConfig())
	policy := &models.PricingPolicy{
		CalculationMode: string(models.CalculationFluid),
		DiscountType:    string(models.CompanyDiscountPercentage),
		DiscountValue:   d("10"),
		RoundingRule:    string(models.RoundingHundred),
	}

	assert.Equal(t, "111000", r.Apply(d("123456"), policy).String())
}

func TestApplyHonorsTierWhenConfigured(t *testing.T) {
	r := NewResolver(Config{RoundingUnit: d("1000"), HonorRoundingTier: true})
	policy := &models.PricingPolicy{
		DiscountType:  string(models.CompanyDiscountPercentage),
		DiscountValue: d("10"),
		RoundingRule:  string(models.RoundingHundred),
	}

	assert.Equal(t, "111100", r.Apply(d("123456"), policy).String())

	policy.RoundingRule = string(models.RoundingFiveHundred)
	assert.Equal(t, "111000", r.Apply(d("123456"), policy).String())
}

func TestApplyPercentageWithoutRounding(t *testing.T) {
	r := NewResolver(DefaultConfig())
	policy := &models.PricingPolicy{
		DiscountType:  string(models.CompanyDiscountPercentage),
		DiscountValue: d("15"),
		RoundingRule:  string(models.RoundingNone),
	}

	// 45000 * 0.85
	assert.Equal(t, "38250", r.Apply(d("45000"), policy).String())
}

func TestApplyFixedDiscount(t *testing.T) {
	r := NewResolver(DefaultConfig())
	policy := &models.PricingPolicy{
		DiscountType:  string(models.CompanyDiscountFixed),
		DiscountValue: d("5000"),
		RoundingRule:  string(models.RoundingThousand),
	}

	// rounding never applies to FIXED
	assert.Equal(t, "37550", r.Apply(d("42550"), policy).String())
	assert.True(t, r.Apply(d("3000"), policy).IsZero())
}

func TestApplyAveragePrice(t *testing.T) {
	r := NewResolver(DefaultConfig())
	policy := &models.PricingPolicy{
		CalculationMode: string(models.CalculationAverage),
		AveragePrice:    d("60000"),
		DiscountType:    string(models.CompanyDiscountNone),
	}

	assert.Equal(t, "60000", r.Apply(d("85000"), policy).String())

	policy.AveragePrice = decimal.Zero
	assert.Equal(t, "85000", r.Apply(d("85000"), policy).String())
}

func TestApplyIgnoresNonPositiveDiscountValue(t *testing.T) {
	r := NewResolver(DefaultConfig())
	policy := &models.PricingPolicy{
		DiscountType:  string(models.CompanyDiscountPercentage),
		DiscountValue: decimal.Zero,
		RoundingRule:  string(models.RoundingThousand),
	}

	// rounding still runs for a PERCENTAGE policy even when the value is zero
	assert.Equal(t, "124000", r.Apply(d("123556"), policy).String())
}
