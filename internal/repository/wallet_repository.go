package repository

import (
	"context"

	"catering_orders/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository owns company wallets and the append-only transaction
// ledger.
type WalletRepository interface {
	WithTx(tx *gorm.DB) WalletRepository
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByCompanyID(ctx context.Context, companyID uint) (*models.Wallet, error)
	LockByCompanyID(ctx context.Context, companyID uint) (*models.Wallet, error)
	UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	ListTransactions(ctx context.Context, walletID uint, limit int) ([]models.Transaction, error)
	ListTransactionsByOrder(ctx context.Context, orderID uint) ([]models.Transaction, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) WithTx(tx *gorm.DB) WalletRepository {
	return &walletRepository{db: tx}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *walletRepository) GetByCompanyID(ctx context.Context, companyID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) LockByCompanyID(ctx context.Context, companyID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ?", companyID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Wallet{}).Where("id = ?", id).Update("balance", balance).Error
}

func (r *walletRepository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListTransactions returns the newest rows first. A non-positive limit
// returns everything.
func (r *walletRepository) ListTransactions(ctx context.Context, walletID uint, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	query := r.db.WithContext(ctx).Where("wallet_id = ?", walletID).Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&txns).Error
	return txns, err
}

func (r *walletRepository) ListTransactionsByOrder(ctx context.Context, orderID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&txns).Error
	return txns, err
}
