package repository

import (
	"context"

	"catering_orders/internal/models"

	"gorm.io/gorm"
)

type CompanyRepository interface {
	WithTx(tx *gorm.DB) CompanyRepository
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	UpdatePricingPolicy(ctx context.Context, id uint, policy models.PricingPolicy) error
	CreateConfiguration(ctx context.Context, config *models.CompanyConfiguration) error
	GetConfiguration(ctx context.Context, companyID uint) (*models.CompanyConfiguration, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) WithTx(tx *gorm.DB) CompanyRepository {
	return &companyRepository{db: tx}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Omit("Wallet", "Config").Create(company).Error
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdatePricingPolicy writes every policy column, zero values included.
func (r *companyRepository) UpdatePricingPolicy(ctx context.Context, id uint, policy models.PricingPolicy) error {
	result := r.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", id).Updates(map[string]interface{}{
		"calculation_mode": policy.CalculationMode,
		"average_price":    policy.AveragePrice,
		"discount_type":    policy.DiscountType,
		"discount_value":   policy.DiscountValue,
		"rounding_rule":    policy.RoundingRule,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *companyRepository) CreateConfiguration(ctx context.Context, config *models.CompanyConfiguration) error {
	return r.db.WithContext(ctx).Create(config).Error
}

func (r *companyRepository) GetConfiguration(ctx context.Context, companyID uint) (*models.CompanyConfiguration, error) {
	var config models.CompanyConfiguration
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}
