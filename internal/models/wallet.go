package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the per-company balance funding budget allocations.
type Wallet struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	CompanyID uint            `json:"company_id" gorm:"uniqueIndex;not null"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction is an immutable ledger row. Negative amounts are outflows.
type Transaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	WalletID        uint            `json:"wallet_id" gorm:"index;not null"`
	UserID          *uint           `json:"user_id" gorm:"index"`
	OrderID         *uint           `json:"order_id" gorm:"index"`
	TransactionType string          `json:"transaction_type" gorm:"not null"` // DEPOSIT, BUDGET_ALLOCATION, ORDER_DEDUCTION, REFUND
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description     string          `json:"description"`
	Timestamp       time.Time       `json:"timestamp" gorm:"autoCreateTime;index"`
}

type TransactionType string

const (
	TransactionDeposit          TransactionType = "DEPOSIT"
	TransactionBudgetAllocation TransactionType = "BUDGET_ALLOCATION"
	TransactionOrderDeduction   TransactionType = "ORDER_DEDUCTION"
	TransactionRefund           TransactionType = "REFUND"
)
