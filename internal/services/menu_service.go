package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catering_orders/internal/models"
	"catering_orders/internal/pricing"
	"catering_orders/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PricedItem struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Kind            string          `json:"kind"` // food, side
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"` // after any active dynamic discount
	CompanyPrice    decimal.Decimal `json:"company_price"`
	HasDiscount     bool            `json:"has_discount"`
}

type PricedMenu struct {
	DailyMenuID uint         `json:"daily_menu_id"`
	Date        string       `json:"date"`
	Items       []PricedItem `json:"items"`
}

// MenuService previews what a user would pay for each item on a menu.
type MenuService interface {
	PricedMenu(ctx context.Context, userID, dailyMenuID uint) (*PricedMenu, error)
}

type menuService struct {
	menuRepo  repository.MenuRepository
	userRepo  repository.UserRepository
	companies CompanyService
	resolver  pricing.Resolver
	now       func() time.Time
}

func NewMenuService(menuRepo repository.MenuRepository, userRepo repository.UserRepository, companies CompanyService, resolver pricing.Resolver, now func() time.Time) MenuService {
	if now == nil {
		now = time.Now
	}
	return &menuService{menuRepo: menuRepo, userRepo: userRepo, companies: companies, resolver: resolver, now: now}
}

func (s *menuService) PricedMenu(ctx context.Context, userID, dailyMenuID uint) (*PricedMenu, error) {
	menu, err := s.menuRepo.GetDailyMenu(ctx, dailyMenuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("daily menu: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load daily menu: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if menu.Schedule != nil && menu.Schedule.CompanyID != nil {
		if user.CompanyID == nil || *user.CompanyID != *menu.Schedule.CompanyID {
			return nil, ErrForbidden
		}
	}

	var policy *models.PricingPolicy
	if user.CompanyID != nil {
		policy, err = s.companies.GetPricingPolicy(ctx, *user.CompanyID)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	priced := &PricedMenu{
		DailyMenuID: menu.ID,
		Date:        menu.Date.Format("2006-01-02"),
		Items:       make([]PricedItem, 0, len(menu.AvailableFoods)+len(menu.AvailableSides)),
	}
	for i := range menu.AvailableFoods {
		food := &menu.AvailableFoods[i]
		if !food.IsAvailable {
			continue
		}
		discounted := pricing.ItemPriceAt(food, now)
		priced.Items = append(priced.Items, PricedItem{
			ID:              food.ID,
			Name:            food.Name,
			Kind:            "food",
			Price:           food.Price,
			DiscountedPrice: discounted,
			CompanyPrice:    decimal.Min(food.Price, s.resolver.Apply(discounted, policy)),
			HasDiscount:     !discounted.Equal(food.Price),
		})
	}
	for _, side := range menu.AvailableSides {
		if !side.IsAvailable {
			continue
		}
		priced.Items = append(priced.Items, PricedItem{
			ID:              side.ID,
			Name:            side.Name,
			Kind:            "side",
			Price:           side.Price,
			DiscountedPrice: side.Price,
			CompanyPrice:    decimal.Min(side.Price, s.resolver.Apply(side.Price, policy)),
		})
	}
	return priced, nil
}
