package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FoodItem struct {
	ID               uint                  `json:"id" gorm:"primaryKey"`
	Name             string                `json:"name" gorm:"not null"`
	Description      string                `json:"description" gorm:"type:text"`
	Price            decimal.Decimal       `json:"price" gorm:"type:decimal(12,2);not null"`
	IsAvailable      bool                  `json:"is_available"`
	DynamicDiscounts []DynamicMenuDiscount `json:"-" gorm:"many2many:dynamic_discount_items;"`
	CreatedAt        time.Time             `json:"created_at"`
}

type SideDish struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"unique;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	IsAvailable bool            `json:"is_available"`
}

// Schedule groups daily menus. A nil CompanyID marks the default schedule
// offered to every company.
type Schedule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CompanyID *uint     `json:"company_id" gorm:"index"`
	StartDate time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time `json:"end_date" gorm:"type:date;not null"`
	IsActive  bool      `json:"is_active"`
}

type DailyMenu struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	ScheduleID     uint       `json:"schedule_id" gorm:"not null;uniqueIndex:idx_schedule_date"`
	Schedule       *Schedule  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Date           time.Time  `json:"date" gorm:"type:date;not null;uniqueIndex:idx_schedule_date"`
	AvailableFoods []FoodItem `json:"available_foods" gorm:"many2many:daily_menu_foods;"`
	AvailableSides []SideDish `json:"available_sides" gorm:"many2many:daily_menu_sides;"`
}

// OffersFood reports whether the food item is on this menu.
func (m *DailyMenu) OffersFood(foodID uint) (*FoodItem, bool) {
	for i := range m.AvailableFoods {
		if m.AvailableFoods[i].ID == foodID {
			return &m.AvailableFoods[i], true
		}
	}
	return nil, false
}

// OffersSide reports whether the side dish is on this menu.
func (m *DailyMenu) OffersSide(sideID uint) (*SideDish, bool) {
	for i := range m.AvailableSides {
		if m.AvailableSides[i].ID == sideID {
			return &m.AvailableSides[i], true
		}
	}
	return nil, false
}
