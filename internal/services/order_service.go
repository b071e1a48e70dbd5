package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"catering_orders/internal/models"
	"catering_orders/internal/pricing"
	"catering_orders/internal/repository"
	"catering_orders/internal/reservation"
	"catering_orders/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Event topics published after a successful commit.
const (
	TopicOrderPlaced   = "order.placed"
	TopicOrderModified = "order.modified"
	TopicOrderCanceled = "order.canceled"
	TopicOrderStatus   = "order.status_changed"
)

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type EventPublisher interface {
	Publish(topic string, message map[string]interface{})
}

type PlaceOrderInput struct {
	UserID       uint
	DailyMenuID  uint
	FoodItemID   uint
	SideDishIDs  []uint
	Quantity     int
	DiscountCode string
	// CouponOptional places the order without the discount when the code is
	// rejected, instead of failing the whole request.
	CouponOptional bool
}

type ModifyOrderInput struct {
	UserID  uint
	OrderID uint
	// DailyMenuID may be omitted; when set it must match the order's menu.
	DailyMenuID    uint
	FoodItemID     uint
	SideDishIDs    []uint
	Quantity       int
	DiscountCode   string
	CouponOptional bool
}

type OrderResult struct {
	Order *models.Order
	// CouponRejected holds the rejection reason of an optional coupon.
	CouponRejected string
}

type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderResult, error)
	ModifyOrder(ctx context.Context, input ModifyOrderInput) (*OrderResult, error)
	CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]models.Order, error)
	AdvanceStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	tx         TxRunner
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	menuRepo   repository.MenuRepository
	coupons    CouponService
	calculator PriceCalculator
	settlement SettlementService
	guard      *reservation.Guard
	events     EventPublisher
	log        *logger.Logger
}

type OrderServiceDeps struct {
	Tx         TxRunner
	Orders     repository.OrderRepository
	Users      repository.UserRepository
	Menus      repository.MenuRepository
	Coupons    CouponService
	Calculator PriceCalculator
	Settlement SettlementService
	Guard      *reservation.Guard
	Events     EventPublisher
	Logger     *logger.Logger
}

func NewOrderService(deps OrderServiceDeps) OrderService {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &orderService{
		tx:         deps.Tx,
		orderRepo:  deps.Orders,
		userRepo:   deps.Users,
		menuRepo:   deps.Menus,
		coupons:    deps.Coupons,
		calculator: deps.Calculator,
		settlement: deps.Settlement,
		guard:      deps.Guard,
		events:     deps.Events,
		log:        log,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderResult, error) {
	if input.Quantity < 1 {
		return nil, validation("quantity", "must be at least 1")
	}

	menu, err := s.loadMenu(ctx, input.DailyMenuID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(menu.Date); err != nil {
		return nil, windowError(err)
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	food, sides, err := selectItems(menu, user, input.FoodItemID, input.SideDishIDs)
	if err != nil {
		return nil, err
	}

	result := &OrderResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.userRepo.WithTx(tx).LockByID(ctx, user.ID); err != nil {
			return notFound(err, "user")
		}

		orders := s.orderRepo.WithTx(tx)
		exists, err := orders.ExistsActiveForMenu(ctx, user.ID, menu.ID, 0)
		if err != nil {
			return fmt.Errorf("failed to check existing orders: %w", err)
		}
		if exists {
			return validation("daily_menu", "an order for this menu already exists")
		}

		var coupon *models.DiscountCode
		if input.DiscountCode != "" {
			subtotal := pricing.Subtotal(food, sides, input.Quantity)
			coupon, err = s.validateCoupon(ctx, tx, input.DiscountCode, user.ID, subtotal, input.CouponOptional, result)
			if err != nil {
				return err
			}
		}

		menuID, foodID := menu.ID, food.ID
		order := &models.Order{
			UserID:          user.ID,
			DailyMenuID:     &menuID,
			FoodItemID:      &foodID,
			SideDishes:      sides,
			Quantity:        input.Quantity,
			Status:          string(models.OrderPlaced),
			SettlementState: string(models.SettlementUnsettled),
		}
		if err := orders.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if coupon != nil {
			if err := s.redeemCoupon(ctx, tx, coupon, order, input.CouponOptional, result); err != nil {
				return err
			}
		}

		if err := s.calculator.CalculateAndSave(ctx, tx, order); err != nil {
			return err
		}
		if err := s.settlement.SettleCreate(ctx, tx, order); err != nil {
			return err
		}
		result.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, TopicOrderPlaced, result)
}

func (s *orderService) ModifyOrder(ctx context.Context, input ModifyOrderInput) (*OrderResult, error) {
	if input.Quantity < 1 {
		return nil, validation("quantity", "must be at least 1")
	}

	existing, err := s.ownedOrder(ctx, input.UserID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := checkModifiable(existing); err != nil {
		return nil, err
	}
	if input.DailyMenuID != 0 && input.DailyMenuID != *existing.DailyMenuID {
		return nil, validation("daily_menu", "menu cannot be changed")
	}

	menu, err := s.loadMenu(ctx, *existing.DailyMenuID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(menu.Date); err != nil {
		return nil, windowError(err)
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	food, sides, err := selectItems(menu, user, input.FoodItemID, input.SideDishIDs)
	if err != nil {
		return nil, err
	}

	result := &OrderResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.userRepo.WithTx(tx).LockByID(ctx, user.ID); err != nil {
			return notFound(err, "user")
		}

		orders := s.orderRepo.WithTx(tx)
		order, err := orders.LockByID(ctx, existing.ID)
		if err != nil {
			return notFound(err, "order")
		}
		if err := checkModifiable(order); err != nil {
			return err
		}
		oldTotal := order.FinalPrice

		foodID := food.ID
		order.FoodItemID = &foodID
		order.FoodItem = food
		order.Quantity = input.Quantity
		if err := orders.UpdateComposition(ctx, order, sides); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		if input.DiscountCode != "" && order.DiscountUsage == nil {
			subtotal := pricing.Subtotal(food, sides, input.Quantity)
			coupon, err := s.validateCoupon(ctx, tx, input.DiscountCode, user.ID, subtotal, input.CouponOptional, result)
			if err != nil {
				return err
			}
			if coupon != nil {
				if err := s.redeemCoupon(ctx, tx, coupon, order, input.CouponOptional, result); err != nil {
					return err
				}
			}
		}

		if err := s.calculator.CalculateAndSave(ctx, tx, order); err != nil {
			return err
		}
		if err := s.settlement.SettleUpdate(ctx, tx, order, oldTotal, order.FinalPrice); err != nil {
			return err
		}
		result.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, TopicOrderModified, result)
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	existing, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkModifiable(existing); err != nil {
		return nil, err
	}
	if err := s.guard.Check(existing.DailyMenu.Date); err != nil {
		return nil, windowError(err)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.userRepo.WithTx(tx).LockByID(ctx, userID); err != nil {
			return notFound(err, "user")
		}

		orders := s.orderRepo.WithTx(tx)
		order, err := orders.LockByID(ctx, existing.ID)
		if err != nil {
			return notFound(err, "order")
		}
		if err := checkModifiable(order); err != nil {
			return err
		}

		if err := s.settlement.SettleCancel(ctx, tx, order); err != nil {
			return err
		}
		if err := s.coupons.Release(ctx, tx, order.ID); err != nil {
			return err
		}
		moved, err := orders.TransitionStatus(ctx, order.ID, models.OrderCanceled, models.OrderPlaced, models.OrderConfirmed)
		if err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		if !moved {
			return errStatusChanged(order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.finish(ctx, TopicOrderCanceled, &OrderResult{Order: existing})
	if err != nil {
		return nil, err
	}
	return result.Order, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	return s.ownedOrder(ctx, userID, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// AdvanceStatus moves an order one step along its fulfilment path.
func (s *orderService) AdvanceStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		var err error
		order, err = orders.LockByID(ctx, orderID)
		if err != nil {
			return notFound(err, "order")
		}
		current := models.OrderStatus(order.Status)
		if !current.CanAdvanceTo(status) {
			return validation("status", fmt.Sprintf("cannot move order from %s to %s", current, status))
		}
		moved, err := orders.TransitionStatus(ctx, order.ID, status, current)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if !moved {
			return errStatusChanged(order.ID)
		}
		order.Status = string(status)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, TopicOrderStatus, order)
	return order, nil
}

func (s *orderService) loadMenu(ctx context.Context, id uint) (*models.DailyMenu, error) {
	menu, err := s.menuRepo.GetDailyMenu(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validation("daily_menu", "daily menu not found")
		}
		return nil, fmt.Errorf("failed to load daily menu: %w", err)
	}
	return menu, nil
}

func (s *orderService) ownedOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

// validateCoupon returns nil without error when an optional coupon is
// rejected; the reason is stored on result.
func (s *orderService) validateCoupon(ctx context.Context, tx *gorm.DB, code string, userID uint, subtotal decimal.Decimal, optional bool, result *OrderResult) (*models.DiscountCode, error) {
	validated, err := s.coupons.Validate(ctx, tx, code, userID, decimal.NewNullDecimal(subtotal))
	if err != nil {
		var invalid *InvalidCouponError
		if optional && errors.As(err, &invalid) {
			result.CouponRejected = invalid.Reason
			return nil, nil
		}
		return nil, err
	}
	return validated.Code, nil
}

func (s *orderService) redeemCoupon(ctx context.Context, tx *gorm.DB, coupon *models.DiscountCode, order *models.Order, optional bool, result *OrderResult) error {
	usage, err := s.coupons.Redeem(ctx, tx, coupon, order.UserID, order.ID)
	if err != nil {
		// A lost race on the global cap leaves no failed statement behind, so
		// the transaction can continue without the coupon.
		var invalid *InvalidCouponError
		if optional && errors.As(err, &invalid) && invalid.Reason == ReasonUsageCapReached {
			result.CouponRejected = invalid.Reason
			return nil
		}
		return err
	}
	order.DiscountUsage = usage
	return nil
}

// finish reloads the committed order and announces it.
func (s *orderService) finish(ctx context.Context, topic string, result *OrderResult) (*OrderResult, error) {
	order, err := s.orderRepo.GetByID(ctx, result.Order.ID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	result.Order = order
	s.publish(ctx, topic, order)
	return result, nil
}

func (s *orderService) publish(ctx context.Context, topic string, order *models.Order) {
	s.log.Info(ctx, topic, fmt.Sprintf("order #%d %s", order.ID, order.Status), map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"final_price": order.FinalPrice.String(),
	})
	if s.events == nil {
		return
	}
	s.events.Publish(topic, map[string]interface{}{
		"order_id":         order.ID,
		"user_id":          order.UserID,
		"status":           order.Status,
		"settlement_state": order.SettlementState,
		"final_price":      order.FinalPrice.String(),
	})
}

func errStatusChanged(orderID uint) error {
	return validation("status", fmt.Sprintf("order #%d changed status concurrently, retry", orderID))
}

func checkModifiable(order *models.Order) error {
	if !models.OrderStatus(order.Status).IsModifiable() {
		return validation("status", fmt.Sprintf("order is %s and can no longer be changed", order.Status))
	}
	if order.DailyMenuID == nil || order.DailyMenu == nil {
		return validation("daily_menu", "the menu of this order no longer exists")
	}
	return nil
}

// selectItems resolves the requested food and sides against the menu.
func selectItems(menu *models.DailyMenu, user *models.User, foodID uint, sideIDs []uint) (*models.FoodItem, []models.SideDish, error) {
	if menu.Schedule != nil && menu.Schedule.CompanyID != nil {
		if user.CompanyID == nil || *user.CompanyID != *menu.Schedule.CompanyID {
			return nil, nil, validation("daily_menu", "menu is not offered to your company")
		}
	}

	food, ok := menu.OffersFood(foodID)
	if !ok || !food.IsAvailable {
		return nil, nil, validation("food_item", "item not available on this date")
	}

	seen := make(map[uint]bool, len(sideIDs))
	sides := make([]models.SideDish, 0, len(sideIDs))
	for _, id := range sideIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		side, ok := menu.OffersSide(id)
		if !ok || !side.IsAvailable {
			return nil, nil, validation("side_dishes", "item not available on this date")
		}
		sides = append(sides, *side)
	}
	sort.Slice(sides, func(i, j int) bool { return sides[i].ID < sides[j].ID })
	return food, sides, nil
}
