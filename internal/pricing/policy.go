// Package pricing turns menu prices into the amounts charged for an order.
// Everything here is pure: no I/O, no clock reads.
package pricing

import (
	"catering_orders/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Config carries deployment-wide pricing knobs.
type Config struct {
	// RoundingUnit is the granularity used for every non-NONE rounding rule.
	RoundingUnit decimal.Decimal
	// HonorRoundingTier rounds to the configured tier (100, 500, 1000)
	// instead of RoundingUnit.
	HonorRoundingTier bool
}

func DefaultConfig() Config {
	return Config{RoundingUnit: decimal.NewFromInt(1000)}
}

var tierUnits = map[models.RoundingRule]decimal.Decimal{
	models.RoundingHundred:     decimal.NewFromInt(100),
	models.RoundingFiveHundred: decimal.NewFromInt(500),
	models.RoundingThousand:    decimal.NewFromInt(1000),
}

// Resolver applies a company pricing policy to item prices.
type Resolver struct {
	cfg Config
}

func NewResolver(cfg Config) Resolver {
	if !cfg.RoundingUnit.IsPositive() {
		cfg.RoundingUnit = DefaultConfig().RoundingUnit
	}
	return Resolver{cfg: cfg}
}

// Apply returns the company-adjusted price of one item. The result is always
// a whole amount since the currency has no subunits.
func (r Resolver) Apply(original decimal.Decimal, policy *models.PricingPolicy) decimal.Decimal {
	if policy == nil {
		return original.RoundBank(0)
	}

	base := original
	if models.CalculationMode(policy.CalculationMode) == models.CalculationAverage && policy.AveragePrice.IsPositive() {
		base = policy.AveragePrice
	}

	price := base
	discountType := models.CompanyDiscountType(policy.DiscountType)
	if discountType != models.CompanyDiscountNone && policy.DiscountValue.IsPositive() {
		switch discountType {
		case models.CompanyDiscountFixed:
			price = decimal.Max(decimal.Zero, base.Sub(policy.DiscountValue))
		case models.CompanyDiscountPercentage:
			multiplier := decimal.NewFromInt(1).Sub(policy.DiscountValue.Div(hundred))
			price = base.Mul(multiplier)
		}
	}

	rule := models.RoundingRule(policy.RoundingRule)
	if discountType == models.CompanyDiscountPercentage && rule != models.RoundingNone && rule != "" {
		unit := r.roundingUnit(rule)
		// Round half-up; prices are never negative here.
		price = price.Div(unit).Round(0).Mul(unit)
	}

	return price.RoundBank(0)
}

func (r Resolver) roundingUnit(rule models.RoundingRule) decimal.Decimal {
	if r.cfg.HonorRoundingTier {
		if unit, ok := tierUnits[rule]; ok {
			return unit
		}
	}
	return r.cfg.RoundingUnit
}
