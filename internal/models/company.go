package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	ID              uint                  `json:"id" gorm:"primaryKey"`
	Name            string                `json:"name" gorm:"unique;not null"`
	NationalID      string                `json:"national_id"`
	Address         string                `json:"address" gorm:"type:text"`
	ContactPerson   string                `json:"contact_person"`
	ContactPhone    string                `json:"contact_phone"`
	PaymentModel    string                `json:"payment_model" gorm:"default:'ONLINE'"`      // ONLINE, INVOICE
	InvoiceSchedule string                `json:"invoice_schedule" gorm:"default:'WEEKLY'"`   // WEEKLY, BIWEEKLY, MONTHLY
	Status          string                `json:"status" gorm:"default:'DRAFT'"`              // PUBLISHED, DRAFT
	PricingPolicy   PricingPolicy         `json:"pricing_policy" gorm:"embedded"`
	Notes           string                `json:"notes" gorm:"type:text"`
	Wallet          *Wallet               `json:"-"`
	Config          *CompanyConfiguration `json:"-"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type PaymentModel string

const (
	PaymentOnline  PaymentModel = "ONLINE"
	PaymentInvoice PaymentModel = "INVOICE"
)

type InvoiceSchedule string

const (
	InvoiceWeekly   InvoiceSchedule = "WEEKLY"
	InvoiceBiweekly InvoiceSchedule = "BIWEEKLY"
	InvoiceMonthly  InvoiceSchedule = "MONTHLY"
)

type CompanyStatus string

const (
	CompanyPublished CompanyStatus = "PUBLISHED"
	CompanyDraft     CompanyStatus = "DRAFT"
)

// PricingPolicy transforms a menu item's nominal price into the price charged
// to the company's employees.
type PricingPolicy struct {
	CalculationMode string          `json:"calculation_mode" gorm:"default:'FLUID'"` // FLUID, AVERAGE
	AveragePrice    decimal.Decimal `json:"average_price" gorm:"type:decimal(12,2);not null;default:0"`
	DiscountType    string          `json:"discount_type" gorm:"default:'NONE'"` // NONE, PERCENTAGE, FIXED
	DiscountValue   decimal.Decimal `json:"discount_value" gorm:"type:decimal(12,2);not null;default:0"`
	RoundingRule    string          `json:"rounding_rule" gorm:"default:'NONE'"` // NONE, HUNDRED, FIVE_HUNDRED, THOUSAND
}

type CalculationMode string

const (
	CalculationFluid   CalculationMode = "FLUID"
	CalculationAverage CalculationMode = "AVERAGE"
)

type CompanyDiscountType string

const (
	CompanyDiscountNone       CompanyDiscountType = "NONE"
	CompanyDiscountPercentage CompanyDiscountType = "PERCENTAGE"
	CompanyDiscountFixed      CompanyDiscountType = "FIXED"
)

type RoundingRule string

const (
	RoundingNone        RoundingRule = "NONE"
	RoundingHundred     RoundingRule = "HUNDRED"
	RoundingFiveHundred RoundingRule = "FIVE_HUNDRED"
	RoundingThousand    RoundingRule = "THOUSAND"
)

type CompanyConfiguration struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	CompanyID           uint      `json:"company_id" gorm:"uniqueIndex;not null"`
	ShowFoodImages      bool      `json:"show_food_images"`
	ShowFoodPrices      bool      `json:"show_food_prices"`
	AllowHolidays       bool      `json:"allow_holidays"`
	AdminOnlyOrdering   bool      `json:"admin_only_ordering"`
	UserHasWalletAccess bool      `json:"user_has_wallet_access"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultCompanyConfiguration mirrors the defaults a new company starts with.
func DefaultCompanyConfiguration(companyID uint) *CompanyConfiguration {
	return &CompanyConfiguration{
		CompanyID:           companyID,
		ShowFoodImages:      true,
		ShowFoodPrices:      true,
		AllowHolidays:       true,
		AdminOnlyOrdering:   false,
		UserHasWalletAccess: true,
	}
}
