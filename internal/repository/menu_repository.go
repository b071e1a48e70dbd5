package repository

import (
	"context"

	"catering_orders/internal/models"

	"gorm.io/gorm"
)

type MenuRepository interface {
	WithTx(tx *gorm.DB) MenuRepository
	// GetDailyMenu loads the menu with its schedule, offered items and the
	// dynamic discounts attached to each food item.
	GetDailyMenu(ctx context.Context, id uint) (*models.DailyMenu, error)
	GetFoodItem(ctx context.Context, id uint) (*models.FoodItem, error)
	GetSideDishes(ctx context.Context, ids []uint) ([]models.SideDish, error)
	CreateFoodItem(ctx context.Context, item *models.FoodItem) error
	CreateSideDish(ctx context.Context, side *models.SideDish) error
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	CreateDailyMenu(ctx context.Context, menu *models.DailyMenu) error
	CreateDynamicDiscount(ctx context.Context, discount *models.DynamicMenuDiscount) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) WithTx(tx *gorm.DB) MenuRepository {
	return &menuRepository{db: tx}
}

func (r *menuRepository) GetDailyMenu(ctx context.Context, id uint) (*models.DailyMenu, error) {
	var menu models.DailyMenu
	err := r.db.WithContext(ctx).
		Preload("Schedule").
		Preload("AvailableFoods", func(db *gorm.DB) *gorm.DB { return db.Order("food_items.id") }).
		Preload("AvailableFoods.DynamicDiscounts").
		Preload("AvailableSides", func(db *gorm.DB) *gorm.DB { return db.Order("side_dishes.id") }).
		First(&menu, id).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) GetFoodItem(ctx context.Context, id uint) (*models.FoodItem, error) {
	var item models.FoodItem
	err := r.db.WithContext(ctx).Preload("DynamicDiscounts").First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetSideDishes returns the dishes found, ordered by id. Missing ids are
// silently skipped; callers compare lengths when that matters.
func (r *menuRepository) GetSideDishes(ctx context.Context, ids []uint) ([]models.SideDish, error) {
	var sides []models.SideDish
	if len(ids) == 0 {
		return sides, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&sides).Error
	return sides, err
}

// CreateFoodItem links already persisted dynamic discounts without
// re-saving them.
func (r *menuRepository) CreateFoodItem(ctx context.Context, item *models.FoodItem) error {
	return r.db.WithContext(ctx).Omit("DynamicDiscounts.*").Create(item).Error
}

func (r *menuRepository) CreateSideDish(ctx context.Context, side *models.SideDish) error {
	return r.db.WithContext(ctx).Create(side).Error
}

func (r *menuRepository) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *menuRepository) CreateDailyMenu(ctx context.Context, menu *models.DailyMenu) error {
	return r.db.WithContext(ctx).Omit("Schedule", "AvailableFoods.*", "AvailableSides.*").Create(menu).Error
}

func (r *menuRepository) CreateDynamicDiscount(ctx context.Context, discount *models.DynamicMenuDiscount) error {
	return r.db.WithContext(ctx).Create(discount).Error
}
