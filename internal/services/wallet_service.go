package services

import (
	"context"
	"fmt"

	"catering_orders/internal/models"
	"catering_orders/internal/repository"
	"catering_orders/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const TopicWalletChanged = "wallet.changed"

type WalletView struct {
	Wallet       *models.Wallet       `json:"wallet"`
	Transactions []models.Transaction `json:"transactions"`
}

// WalletService moves money between a company wallet and its employees'
// budgets. Wallet operations lock the wallet row before the user row.
type WalletService interface {
	Deposit(ctx context.Context, companyID, actorID uint, amount decimal.Decimal, description string) (*models.Wallet, error)
	AllocateBudget(ctx context.Context, companyID, userID uint, amount decimal.Decimal) (*models.User, error)
	ReclaimBudget(ctx context.Context, companyID, userID uint, amount decimal.Decimal) (*models.User, error)
	GetWallet(ctx context.Context, companyID uint, limit int) (*WalletView, error)
}

type walletService struct {
	tx         TxRunner
	walletRepo repository.WalletRepository
	userRepo   repository.UserRepository
	events     EventPublisher
	log        *logger.Logger
}

func NewWalletService(tx TxRunner, walletRepo repository.WalletRepository, userRepo repository.UserRepository, events EventPublisher, log *logger.Logger) WalletService {
	if log == nil {
		log = logger.Nop()
	}
	return &walletService{tx: tx, walletRepo: walletRepo, userRepo: userRepo, events: events, log: log}
}

func (s *walletService) Deposit(ctx context.Context, companyID, actorID uint, amount decimal.Decimal, description string) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, validation("amount", "must be positive")
	}
	if description == "" {
		description = "Wallet deposit"
	}

	var wallet *models.Wallet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		wallets := s.walletRepo.WithTx(tx)
		var err error
		wallet, err = s.lockWallet(ctx, wallets, companyID)
		if err != nil {
			return err
		}

		wallet.Balance = wallet.Balance.Add(amount)
		if err := wallets.UpdateBalance(ctx, wallet.ID, wallet.Balance); err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}

		txn := &models.Transaction{
			WalletID:        wallet.ID,
			TransactionType: string(models.TransactionDeposit),
			Amount:          amount,
			Description:     description,
		}
		if actorID != 0 {
			txn.UserID = &actorID
		}
		return wallets.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.TransactionDeposit, companyID, 0, amount)
	return wallet, nil
}

// AllocateBudget moves amount from the company wallet to an employee.
func (s *walletService) AllocateBudget(ctx context.Context, companyID, userID uint, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() {
		return nil, validation("amount", "must be positive")
	}

	var user *models.User
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		wallets := s.walletRepo.WithTx(tx)
		users := s.userRepo.WithTx(tx)

		wallet, err := s.lockWallet(ctx, wallets, companyID)
		if err != nil {
			return err
		}
		user, err = s.lockEmployee(ctx, users, companyID, userID)
		if err != nil {
			return err
		}
		if wallet.Balance.LessThan(amount) {
			return &InsufficientFundsError{Budget: wallet.Balance, Required: amount}
		}

		if err := wallets.UpdateBalance(ctx, wallet.ID, wallet.Balance.Sub(amount)); err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}
		user.Budget = user.Budget.Add(amount)
		if err := users.UpdateBudget(ctx, user.ID, user.Budget); err != nil {
			return fmt.Errorf("failed to update budget: %w", err)
		}
		return wallets.CreateTransaction(ctx, &models.Transaction{
			WalletID:        wallet.ID,
			UserID:          &user.ID,
			TransactionType: string(models.TransactionBudgetAllocation),
			Amount:          amount.Neg(),
			Description:     fmt.Sprintf("Budget allocated to %s", user.FullName()),
		})
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.TransactionBudgetAllocation, companyID, userID, amount)
	return user, nil
}

// ReclaimBudget moves amount from an employee back to the company wallet.
func (s *walletService) ReclaimBudget(ctx context.Context, companyID, userID uint, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() {
		return nil, validation("amount", "must be positive")
	}

	var user *models.User
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		wallets := s.walletRepo.WithTx(tx)
		users := s.userRepo.WithTx(tx)

		wallet, err := s.lockWallet(ctx, wallets, companyID)
		if err != nil {
			return err
		}
		user, err = s.lockEmployee(ctx, users, companyID, userID)
		if err != nil {
			return err
		}
		if user.Budget.LessThan(amount) {
			return &InsufficientFundsError{Budget: user.Budget, Required: amount}
		}

		user.Budget = user.Budget.Sub(amount)
		if err := users.UpdateBudget(ctx, user.ID, user.Budget); err != nil {
			return fmt.Errorf("failed to update budget: %w", err)
		}
		if err := wallets.UpdateBalance(ctx, wallet.ID, wallet.Balance.Add(amount)); err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}
		return wallets.CreateTransaction(ctx, &models.Transaction{
			WalletID:        wallet.ID,
			UserID:          &user.ID,
			TransactionType: string(models.TransactionRefund),
			Amount:          amount,
			Description:     fmt.Sprintf("Budget reclaimed from %s", user.FullName()),
		})
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.TransactionRefund, companyID, userID, amount)
	return user, nil
}

func (s *walletService) GetWallet(ctx context.Context, companyID uint, limit int) (*WalletView, error) {
	wallet, err := s.walletRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "wallet")
	}
	txns, err := s.walletRepo.ListTransactions(ctx, wallet.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &WalletView{Wallet: wallet, Transactions: txns}, nil
}

func (s *walletService) lockWallet(ctx context.Context, wallets repository.WalletRepository, companyID uint) (*models.Wallet, error) {
	wallet, err := wallets.LockByCompanyID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "wallet")
	}
	return wallet, nil
}

func (s *walletService) lockEmployee(ctx context.Context, users repository.UserRepository, companyID, userID uint) (*models.User, error) {
	user, err := users.LockByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if user.CompanyID == nil || *user.CompanyID != companyID {
		return nil, fmt.Errorf("user %d is not an employee of company %d: %w", userID, companyID, ErrForbidden)
	}
	return user, nil
}

func (s *walletService) announce(ctx context.Context, kind models.TransactionType, companyID, userID uint, amount decimal.Decimal) {
	message := map[string]interface{}{
		"type":       string(kind),
		"company_id": companyID,
		"amount":     amount.String(),
	}
	if userID != 0 {
		message["user_id"] = userID
	}
	s.log.Info(ctx, "wallet_"+string(kind), "wallet changed", message)
	if s.events != nil {
		s.events.Publish(TopicWalletChanged, message)
	}
}
