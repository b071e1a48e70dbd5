package repository

import (
	"context"

	"catering_orders/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	// LockByID is GetByID with the order row held FOR UPDATE until the
	// transaction ends.
	LockByID(ctx context.Context, id uint) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	// ExistsActiveForMenu reports whether the user already holds a
	// non-canceled order on the menu, ignoring excludeID.
	ExistsActiveForMenu(ctx context.Context, userID, dailyMenuID, excludeID uint) (bool, error)
	UpdatePrices(ctx context.Context, order *models.Order) error
	UpdateComposition(ctx context.Context, order *models.Order, sides []models.SideDish) error
	// TransitionStatus sets the status only while the row is still in one of
	// from. It reports false when another writer moved the order first.
	TransitionStatus(ctx context.Context, id uint, to models.OrderStatus, from ...models.OrderStatus) (bool, error)
	UpdateSettlementState(ctx context.Context, id uint, state models.SettlementState) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

// Create stores the order and its side dish links. Referenced menu items are
// never written back.
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Omit("DailyMenu", "FoodItem", "DiscountUsage", "SideDishes.*").
		Create(order).Error
}

func (r *orderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("DailyMenu").
		Preload("FoodItem").
		Preload("SideDishes", func(db *gorm.DB) *gorm.DB { return db.Order("side_dishes.id") }).
		Preload("DiscountUsage.DiscountCode")
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.preloaded(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.preloaded(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.preloaded(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ExistsActiveForMenu(ctx context.Context, userID, dailyMenuID, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND daily_menu_id = ? AND status <> ?", userID, dailyMenuID, string(models.OrderCanceled))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// UpdatePrices persists the four price fields in a single write.
func (r *orderRepository) UpdatePrices(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Model(order).
		Select("base_price", "company_discount_amount", "coupon_discount_amount", "final_price").
		Updates(order).Error
}

func (r *orderRepository) UpdateComposition(ctx context.Context, order *models.Order, sides []models.SideDish) error {
	db := r.db.WithContext(ctx)
	err := db.Model(order).Select("food_item_id", "quantity").Updates(order).Error
	if err != nil {
		return err
	}
	if err := db.Model(order).Association("SideDishes").Replace(sides); err != nil {
		return err
	}
	order.SideDishes = sides
	return nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id uint, to models.OrderStatus, from ...models.OrderStatus) (bool, error) {
	allowed := make([]string, len(from))
	for i, status := range from {
		allowed[i] = string(status)
	}
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, allowed).
		Update("status", string(to))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepository) UpdateSettlementState(ctx context.Context, id uint, state models.SettlementState) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("settlement_state", string(state)).Error
}
