package pricing

import (
	"sort"
	"time"

	"catering_orders/internal/models"

	"github.com/shopspring/decimal"
)

// ActiveDiscountFor returns the dynamic discount applying at the given
// instant, or nil. When several match, the most recently started one wins and
// equal start dates fall back to the lowest id.
func ActiveDiscountFor(discounts []models.DynamicMenuDiscount, at time.Time) *models.DynamicMenuDiscount {
	if len(discounts) == 0 {
		return nil
	}

	ordered := make([]models.DynamicMenuDiscount, len(discounts))
	copy(ordered, discounts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].StartDate.Equal(ordered[j].StartDate) {
			return ordered[i].StartDate.After(ordered[j].StartDate)
		}
		return ordered[i].ID < ordered[j].ID
	})

	for i := range ordered {
		d := ordered[i]
		if !d.IsActive || d.StartDate.After(at) {
			continue
		}
		if d.EndDate != nil && d.EndDate.Before(at) {
			continue
		}
		return &d
	}
	return nil
}

// DiscountedPrice applies a dynamic discount to an item price. A nil discount
// leaves the price unchanged.
func DiscountedPrice(price decimal.Decimal, discount *models.DynamicMenuDiscount) decimal.Decimal {
	if discount == nil {
		return price
	}

	amount := price.Mul(discount.DiscountPercentage).Div(hundred)
	if discount.MaxDiscountPerItem.Valid && discount.MaxDiscountPerItem.Decimal.IsPositive() && amount.GreaterThan(discount.MaxDiscountPerItem.Decimal) {
		amount = discount.MaxDiscountPerItem.Decimal
	}

	discounted := price.Sub(amount).RoundFloor(2)
	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted
}

// ItemPriceAt is the dynamic-discount price of a food item at the instant.
func ItemPriceAt(item *models.FoodItem, at time.Time) decimal.Decimal {
	return DiscountedPrice(item.Price, ActiveDiscountFor(item.DynamicDiscounts, at))
}
