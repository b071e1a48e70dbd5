package services

import (
	"context"
	"errors"
	"fmt"

	"catering_orders/internal/models"
	"catering_orders/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService moves an order's charge between the user's budget and
// the ledger. Every method must run inside the caller's transaction and
// locks the user row before reading the budget.
//
// State machine: UNSETTLED -> SETTLED -> (adjusted)* -> REFUNDED.
type SettlementService interface {
	SettleCreate(ctx context.Context, tx *gorm.DB, order *models.Order) error
	SettleUpdate(ctx context.Context, tx *gorm.DB, order *models.Order, oldTotal, newTotal decimal.Decimal) error
	SettleCancel(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type settlementService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	walletRepo  repository.WalletRepository
	orderRepo   repository.OrderRepository
}

func NewSettlementService(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	walletRepo repository.WalletRepository,
	orderRepo repository.OrderRepository,
) SettlementService {
	return &settlementService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		walletRepo:  walletRepo,
		orderRepo:   orderRepo,
	}
}

// SettleCreate charges a new order. Users without a company and companies
// paying by invoice are never charged; their orders stay UNSETTLED.
func (s *settlementService) SettleCreate(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	user, err := s.userRepo.WithTx(tx).LockByID(ctx, order.UserID)
	if err != nil {
		return notFound(err, "user")
	}
	if user.CompanyID == nil {
		return nil
	}

	company, err := s.companyRepo.WithTx(tx).GetByID(ctx, *user.CompanyID)
	if err != nil {
		return notFound(err, "company")
	}
	if models.PaymentModel(company.PaymentModel) != models.PaymentOnline {
		return nil
	}

	wallet, err := s.companyWallet(ctx, tx, company.ID, "settle_create")
	if err != nil {
		return err
	}

	charge := order.FinalPrice
	if user.Budget.LessThan(charge) {
		return &InsufficientFundsError{Budget: user.Budget, Required: charge}
	}

	if err := s.userRepo.WithTx(tx).UpdateBudget(ctx, user.ID, user.Budget.Sub(charge)); err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if err := s.record(ctx, tx, wallet.ID, user.ID, order.ID, models.TransactionOrderDeduction, charge.Neg(),
		fmt.Sprintf("Order #%d", order.ID)); err != nil {
		return err
	}
	return s.markState(ctx, tx, order, models.SettlementSettled)
}

// SettleUpdate applies the difference between the old and new charge of a
// settled order. A positive delta goes back to the user.
func (s *settlementService) SettleUpdate(ctx context.Context, tx *gorm.DB, order *models.Order, oldTotal, newTotal decimal.Decimal) error {
	user, err := s.userRepo.WithTx(tx).LockByID(ctx, order.UserID)
	if err != nil {
		return notFound(err, "user")
	}
	if models.SettlementState(order.SettlementState) != models.SettlementSettled {
		return nil
	}

	delta := oldTotal.Sub(newTotal)
	if delta.IsZero() {
		return nil
	}
	if delta.IsNegative() && user.Budget.LessThan(delta.Abs()) {
		return &InsufficientFundsError{Budget: user.Budget, Required: delta.Abs()}
	}

	wallet, err := s.userWallet(ctx, tx, user, "settle_update")
	if err != nil {
		return err
	}

	if err := s.userRepo.WithTx(tx).UpdateBudget(ctx, user.ID, user.Budget.Add(delta)); err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	txnType := models.TransactionOrderDeduction
	if delta.IsPositive() {
		txnType = models.TransactionRefund
	}
	return s.record(ctx, tx, wallet.ID, user.ID, order.ID, txnType, delta,
		fmt.Sprintf("Order #%d updated", order.ID))
}

// SettleCancel refunds the full final price of a settled order.
func (s *settlementService) SettleCancel(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	user, err := s.userRepo.WithTx(tx).LockByID(ctx, order.UserID)
	if err != nil {
		return notFound(err, "user")
	}
	if models.SettlementState(order.SettlementState) != models.SettlementSettled {
		return nil
	}

	wallet, err := s.userWallet(ctx, tx, user, "settle_cancel")
	if err != nil {
		return err
	}

	refund := order.FinalPrice
	if err := s.userRepo.WithTx(tx).UpdateBudget(ctx, user.ID, user.Budget.Add(refund)); err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if err := s.record(ctx, tx, wallet.ID, user.ID, order.ID, models.TransactionRefund, refund,
		fmt.Sprintf("Order #%d canceled", order.ID)); err != nil {
		return err
	}
	return s.markState(ctx, tx, order, models.SettlementRefunded)
}

func (s *settlementService) userWallet(ctx context.Context, tx *gorm.DB, user *models.User, op string) (*models.Wallet, error) {
	if user.CompanyID == nil {
		return nil, &ConsistencyError{Op: op, Err: fmt.Errorf("user %d has a settled order but no company", user.ID)}
	}
	return s.companyWallet(ctx, tx, *user.CompanyID, op)
}

func (s *settlementService) companyWallet(ctx context.Context, tx *gorm.DB, companyID uint, op string) (*models.Wallet, error) {
	wallet, err := s.walletRepo.WithTx(tx).GetByCompanyID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ConsistencyError{Op: op, Err: fmt.Errorf("company %d has no wallet", companyID)}
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return wallet, nil
}

func (s *settlementService) record(ctx context.Context, tx *gorm.DB, walletID, userID, orderID uint, txnType models.TransactionType, amount decimal.Decimal, description string) error {
	txn := &models.Transaction{
		WalletID:        walletID,
		UserID:          &userID,
		OrderID:         &orderID,
		TransactionType: string(txnType),
		Amount:          amount,
		Description:     description,
	}
	if err := s.walletRepo.WithTx(tx).CreateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

func (s *settlementService) markState(ctx context.Context, tx *gorm.DB, order *models.Order, state models.SettlementState) error {
	if err := s.orderRepo.WithTx(tx).UpdateSettlementState(ctx, order.ID, state); err != nil {
		return fmt.Errorf("failed to update settlement state: %w", err)
	}
	order.SettlementState = string(state)
	return nil
}
