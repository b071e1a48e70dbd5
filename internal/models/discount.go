package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountCode struct {
	ID                uint                `json:"id" gorm:"primaryKey"`
	Code              string              `json:"code" gorm:"uniqueIndex;not null;size:50"`
	DiscountType      string              `json:"discount_type" gorm:"not null"` // PERCENTAGE, FIXED_AMOUNT
	Value             decimal.Decimal     `json:"value" gorm:"type:decimal(12,2);not null"`
	MaxUsageCount     *int                `json:"max_usage_count"`
	UsageCount        int                 `json:"usage_count" gorm:"not null;default:0"`
	MaxUsagePerUser   int                 `json:"max_usage_per_user" gorm:"not null;default:1"`
	MinOrderAmount    decimal.NullDecimal `json:"min_order_amount" gorm:"type:decimal(12,2)"`
	MaxDiscountAmount decimal.NullDecimal `json:"max_discount_amount" gorm:"type:decimal(12,2)"`
	StartDate         time.Time           `json:"start_date" gorm:"not null"`
	EndDate           *time.Time          `json:"end_date"`
	Scope             string              `json:"scope" gorm:"default:'PUBLIC'"` // PUBLIC, PRIVATE
	IsActive          bool                `json:"is_active"`
	Description       string              `json:"description" gorm:"type:text"`
	CreatedAt         time.Time           `json:"created_at"`
}

// NormalizeCouponCode is the stored form of a code. Codes are unique
// regardless of case, so the unique index only sees this form.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (d *DiscountCode) BeforeSave(tx *gorm.DB) error {
	d.Code = NormalizeCouponCode(d.Code)
	return nil
}

type CouponDiscountType string

const (
	CouponPercentage  CouponDiscountType = "PERCENTAGE"
	CouponFixedAmount CouponDiscountType = "FIXED_AMOUNT"
)

type CouponScope string

const (
	CouponPublic  CouponScope = "PUBLIC"
	CouponPrivate CouponScope = "PRIVATE"
)

// CalculateDiscountAmount returns the discount this code grants on price. The
// result never exceeds price.
func (c *DiscountCode) CalculateDiscountAmount(price decimal.Decimal) decimal.Decimal {
	amount := decimal.Zero
	switch CouponDiscountType(c.DiscountType) {
	case CouponFixedAmount:
		amount = c.Value
	case CouponPercentage:
		amount = price.Mul(c.Value).Div(decimal.NewFromInt(100))
	}

	if c.MaxDiscountAmount.Valid && c.MaxDiscountAmount.Decimal.IsPositive() && amount.GreaterThan(c.MaxDiscountAmount.Decimal) {
		amount = c.MaxDiscountAmount.Decimal
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return decimal.Min(price, amount).Round(2)
}

type DiscountCodeUsage struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	DiscountCodeID uint          `json:"discount_code_id" gorm:"not null;uniqueIndex:idx_code_user_order"`
	DiscountCode   *DiscountCode `json:"discount_code,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	UserID         uint          `json:"user_id" gorm:"not null;index;uniqueIndex:idx_code_user_order"`
	OrderID        uint          `json:"order_id" gorm:"not null;uniqueIndex;uniqueIndex:idx_code_user_order"`
	UsedAt         time.Time     `json:"used_at" gorm:"autoCreateTime"`
}

// DynamicMenuDiscount is a time-bounded promotional markdown on food items.
type DynamicMenuDiscount struct {
	ID                 uint                `json:"id" gorm:"primaryKey"`
	Name               string              `json:"name" gorm:"not null"`
	DiscountPercentage decimal.Decimal     `json:"discount_percentage" gorm:"type:decimal(5,2);not null"`
	MaxDiscountPerItem decimal.NullDecimal `json:"max_discount_per_item" gorm:"type:decimal(12,2)"`
	StartDate          time.Time           `json:"start_date" gorm:"not null"`
	EndDate            *time.Time          `json:"end_date"`
	IsActive           bool                `json:"is_active"`
	ShowOnMenu         bool                `json:"show_on_menu"`
	Description        string              `json:"description" gorm:"type:text"`
	CreatedAt          time.Time           `json:"created_at"`
}
