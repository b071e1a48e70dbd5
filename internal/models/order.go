package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                    uint               `json:"id" gorm:"primaryKey"`
	UserID                uint               `json:"user_id" gorm:"not null;index"`
	DailyMenuID           *uint              `json:"daily_menu_id" gorm:"index"`
	DailyMenu             *DailyMenu         `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	FoodItemID            *uint              `json:"food_item_id"`
	FoodItem              *FoodItem          `json:"food_item,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	SideDishes            []SideDish         `json:"side_dishes" gorm:"many2many:order_side_dishes;"`
	Quantity              int                `json:"quantity" gorm:"not null;default:1"`
	Status                string             `json:"status" gorm:"default:'PLACED'"`                   // PLACED, CONFIRMED, PREPARING, DELIVERED, CANCELED
	SettlementState       string             `json:"settlement_state" gorm:"default:'UNSETTLED'"`      // UNSETTLED, SETTLED, REFUNDED
	BasePrice             decimal.Decimal    `json:"base_price" gorm:"type:decimal(12,2);not null;default:0"`
	CompanyDiscountAmount decimal.Decimal    `json:"company_discount_amount" gorm:"type:decimal(12,2);not null;default:0"`
	CouponDiscountAmount  decimal.Decimal    `json:"coupon_discount_amount" gorm:"type:decimal(12,2);not null;default:0"`
	FinalPrice            decimal.Decimal    `json:"final_price" gorm:"type:decimal(12,2);not null;default:0"`
	DiscountUsage         *DiscountCodeUsage `json:"discount_usage,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "PLACED"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// orderProgression is the linear order of non-terminal statuses.
var orderProgression = map[OrderStatus]int{
	OrderPlaced:    0,
	OrderConfirmed: 1,
	OrderPreparing: 2,
	OrderDelivered: 3,
}

// CanAdvanceTo reports whether status next is the immediate successor of s.
// CANCELED is not reachable this way: cancellation goes through the refund path.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	cur, ok := orderProgression[s]
	if !ok {
		return false
	}
	n, ok := orderProgression[next]
	return ok && n == cur+1
}

// IsModifiable reports whether an order in this status may still change
// composition or be canceled by its owner.
func (s OrderStatus) IsModifiable() bool {
	return s == OrderPlaced || s == OrderConfirmed
}

type SettlementState string

const (
	SettlementUnsettled SettlementState = "UNSETTLED"
	SettlementSettled   SettlementState = "SETTLED"
	SettlementRefunded  SettlementState = "REFUNDED"
)

// DeliveryDate returns the menu date of the order, if the menu still exists.
func (o *Order) DeliveryDate() (time.Time, bool) {
	if o.DailyMenu == nil {
		return time.Time{}, false
	}
	return o.DailyMenu.Date, true
}
