package services

import (
	"context"
	"fmt"
	"time"

	"catering_orders/internal/models"
	"catering_orders/internal/pricing"
	"catering_orders/internal/repository"

	"gorm.io/gorm"
)

// PriceCalculator loads an order's pricing components and persists the
// resulting breakdown.
type PriceCalculator interface {
	CalculateAndSave(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type priceCalculator struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	menuRepo  repository.MenuRepository
	resolver  pricing.Resolver
	now       func() time.Time
}

func NewPriceCalculator(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	menuRepo repository.MenuRepository,
	resolver pricing.Resolver,
	now func() time.Time,
) PriceCalculator {
	if now == nil {
		now = time.Now
	}
	return &priceCalculator{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		menuRepo:  menuRepo,
		resolver:  resolver,
		now:       now,
	}
}

// CalculateAndSave reprices the order from what is stored and writes the four
// price fields back onto both the row and the passed struct. Orders whose food
// item no longer exists keep their last price.
func (c *priceCalculator) CalculateAndSave(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order.FoodItemID == nil {
		return nil
	}

	orders := c.orderRepo.WithTx(tx)
	stored, err := orders.GetByID(ctx, order.ID)
	if err != nil {
		return notFound(err, "order")
	}

	user, err := c.userRepo.WithTx(tx).GetByID(ctx, stored.UserID)
	if err != nil {
		return notFound(err, "user")
	}
	var policy *models.PricingPolicy
	if user.Company != nil {
		policy = &user.Company.PricingPolicy
	}

	food, err := c.menuRepo.WithTx(tx).GetFoodItem(ctx, *order.FoodItemID)
	if err != nil {
		return notFound(err, "food item")
	}

	var coupon *models.DiscountCode
	if stored.DiscountUsage != nil {
		coupon = stored.DiscountUsage.DiscountCode
	}

	breakdown := c.resolver.Calculate(pricing.Components{
		Food:     food,
		Sides:    stored.SideDishes,
		Quantity: stored.Quantity,
		Policy:   policy,
		Coupon:   coupon,
		At:       c.now(),
	})

	order.BasePrice = breakdown.BasePrice
	order.CompanyDiscountAmount = breakdown.CompanyDiscountAmount
	order.CouponDiscountAmount = breakdown.CouponDiscountAmount
	order.FinalPrice = breakdown.FinalPrice

	if err := orders.UpdatePrices(ctx, order); err != nil {
		return fmt.Errorf("failed to save order prices: %w", err)
	}
	return nil
}
