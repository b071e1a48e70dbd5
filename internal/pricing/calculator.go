package pricing

import (
	"time"

	"catering_orders/internal/models"

	"github.com/shopspring/decimal"
)

// Components is everything that determines an order's price.
type Components struct {
	Food     *models.FoodItem
	Sides    []models.SideDish
	Quantity int
	// Policy is the purchasing user's company policy; nil when the user has no company.
	Policy *models.PricingPolicy
	// Coupon is the discount code attached to the order, if any.
	Coupon *models.DiscountCode
	At     time.Time
}

// Breakdown holds the four persisted price fields of an order.
type Breakdown struct {
	BasePrice             decimal.Decimal
	CompanyDiscountAmount decimal.Decimal
	CouponDiscountAmount  decimal.Decimal
	FinalPrice            decimal.Decimal
}

// Subtotal is the undiscounted price of the components.
func Subtotal(food *models.FoodItem, sides []models.SideDish, quantity int) decimal.Decimal {
	unit := decimal.Zero
	if food != nil {
		unit = food.Price
	}
	for _, side := range sides {
		unit = unit.Add(side.Price)
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// Calculate composes dynamic discounts, company pricing and the coupon, in
// that order. The result always satisfies
// FinalPrice == BasePrice - CompanyDiscountAmount - CouponDiscountAmount.
func (r Resolver) Calculate(c Components) Breakdown {
	qty := decimal.NewFromInt(int64(c.Quantity))
	base := Subtotal(c.Food, c.Sides, c.Quantity)

	unit := decimal.Zero
	if c.Food != nil {
		unit = r.Apply(ItemPriceAt(c.Food, c.At), c.Policy)
	}
	for _, side := range c.Sides {
		unit = unit.Add(r.Apply(side.Price, c.Policy))
	}
	afterCompany := unit.Mul(qty)

	// Company pricing only ever lowers or preserves the price.
	if afterCompany.GreaterThan(base) {
		afterCompany = base
	}
	companyDiscount := base.Sub(afterCompany)

	couponDiscount := decimal.Zero
	if c.Coupon != nil {
		couponDiscount = c.Coupon.CalculateDiscountAmount(afterCompany)
	}

	return Breakdown{
		BasePrice:             base,
		CompanyDiscountAmount: companyDiscount,
		CouponDiscountAmount:  couponDiscount,
		FinalPrice:            afterCompany.Sub(couponDiscount),
	}
}
