package repository

import (
	"context"

	"catering_orders/internal/models"

	"gorm.io/gorm"
)

type DiscountRepository interface {
	WithTx(tx *gorm.DB) DiscountRepository
	Create(ctx context.Context, code *models.DiscountCode) error
	// FindByCode matches case-insensitively. Create fails with
	// gorm.ErrDuplicatedKey when a code differing only in case exists.
	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	CountUserUsages(ctx context.Context, codeID, userID uint) (int64, error)
	// IncrementUsage bumps usage_count unless the global cap is reached. It
	// reports false when the cap stopped the increment.
	IncrementUsage(ctx context.Context, codeID uint) (bool, error)
	DecrementUsage(ctx context.Context, codeID uint) error
	CreateUsage(ctx context.Context, usage *models.DiscountCodeUsage) error
	GetUsageByOrder(ctx context.Context, orderID uint) (*models.DiscountCodeUsage, error)
	DeleteUsage(ctx context.Context, id uint) error
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) WithTx(tx *gorm.DB) DiscountRepository {
	return &discountRepository{db: tx}
}

func (r *discountRepository) Create(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *discountRepository) FindByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var discount models.DiscountCode
	err := r.db.WithContext(ctx).Where("code = ?", models.NormalizeCouponCode(code)).First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) CountUserUsages(ctx context.Context, codeID, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DiscountCodeUsage{}).
		Where("discount_code_id = ? AND user_id = ?", codeID, userID).
		Count(&count).Error
	return count, err
}

func (r *discountRepository) IncrementUsage(ctx context.Context, codeID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.DiscountCode{}).
		Where("id = ? AND (max_usage_count IS NULL OR usage_count < max_usage_count)", codeID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *discountRepository) DecrementUsage(ctx context.Context, codeID uint) error {
	return r.db.WithContext(ctx).Model(&models.DiscountCode{}).
		Where("id = ? AND usage_count > 0", codeID).
		UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error
}

func (r *discountRepository) CreateUsage(ctx context.Context, usage *models.DiscountCodeUsage) error {
	return r.db.WithContext(ctx).Omit("DiscountCode").Create(usage).Error
}

func (r *discountRepository) GetUsageByOrder(ctx context.Context, orderID uint) (*models.DiscountCodeUsage, error) {
	var usage models.DiscountCodeUsage
	err := r.db.WithContext(ctx).Preload("DiscountCode").Where("order_id = ?", orderID).First(&usage).Error
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

func (r *discountRepository) DeleteUsage(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.DiscountCodeUsage{}, id).Error
}
