package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catering_orders/internal/models"
	"catering_orders/internal/repository"
	"catering_orders/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PolicyCache stores pricing policies by company. Get returns (nil, nil) on
// a miss.
type PolicyCache interface {
	GetPricingPolicy(ctx context.Context, companyID uint) (*models.PricingPolicy, error)
	SetPricingPolicy(ctx context.Context, companyID uint, policy *models.PricingPolicy, ttl time.Duration) error
	DeletePricingPolicy(ctx context.Context, companyID uint) error
}

type CreateCompanyInput struct {
	Name            string
	NationalID      string
	Address         string
	ContactPerson   string
	ContactPhone    string
	PaymentModel    string
	InvoiceSchedule string
	PricingPolicy   models.PricingPolicy
	InitialBalance  decimal.Decimal
}

type CompanyService interface {
	// CreateCompany creates the company with its wallet and configuration in
	// one transaction.
	CreateCompany(ctx context.Context, input CreateCompanyInput) (*models.Company, error)
	GetCompany(ctx context.Context, id uint) (*models.Company, error)
	UpdatePricingPolicy(ctx context.Context, companyID uint, policy models.PricingPolicy) (*models.Company, error)
	GetPricingPolicy(ctx context.Context, companyID uint) (*models.PricingPolicy, error)
}

type companyService struct {
	tx          TxRunner
	companyRepo repository.CompanyRepository
	walletRepo  repository.WalletRepository
	cache       PolicyCache
	cacheTTL    time.Duration
	log         *logger.Logger
}

func NewCompanyService(tx TxRunner, companyRepo repository.CompanyRepository, walletRepo repository.WalletRepository, cache PolicyCache, cacheTTL time.Duration, log *logger.Logger) CompanyService {
	if log == nil {
		log = logger.Nop()
	}
	return &companyService{
		tx:          tx,
		companyRepo: companyRepo,
		walletRepo:  walletRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

func (s *companyService) CreateCompany(ctx context.Context, input CreateCompanyInput) (*models.Company, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, validation("name", "is required")
	}
	if input.PaymentModel == "" {
		input.PaymentModel = string(models.PaymentOnline)
	}
	switch models.PaymentModel(input.PaymentModel) {
	case models.PaymentOnline, models.PaymentInvoice:
	default:
		return nil, validation("payment_model", "must be ONLINE or INVOICE")
	}
	if input.InvoiceSchedule == "" {
		input.InvoiceSchedule = string(models.InvoiceWeekly)
	}
	switch models.InvoiceSchedule(input.InvoiceSchedule) {
	case models.InvoiceWeekly, models.InvoiceBiweekly, models.InvoiceMonthly:
	default:
		return nil, validation("invoice_schedule", "must be WEEKLY, BIWEEKLY or MONTHLY")
	}
	policy, err := NormalizePricingPolicy(input.PricingPolicy)
	if err != nil {
		return nil, err
	}
	if input.InitialBalance.IsNegative() {
		return nil, validation("initial_balance", "cannot be negative")
	}

	company := &models.Company{
		Name:            strings.TrimSpace(input.Name),
		NationalID:      input.NationalID,
		Address:         input.Address,
		ContactPerson:   input.ContactPerson,
		ContactPhone:    input.ContactPhone,
		PaymentModel:    input.PaymentModel,
		InvoiceSchedule: input.InvoiceSchedule,
		Status:          string(models.CompanyDraft),
		PricingPolicy:   policy,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		companies := s.companyRepo.WithTx(tx)
		if err := companies.Create(ctx, company); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validation("name", "a company with this name already exists")
			}
			return fmt.Errorf("failed to create company: %w", err)
		}

		wallets := s.walletRepo.WithTx(tx)
		wallet := &models.Wallet{CompanyID: company.ID, Balance: input.InitialBalance}
		if err := wallets.Create(ctx, wallet); err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}
		if input.InitialBalance.IsPositive() {
			err := wallets.CreateTransaction(ctx, &models.Transaction{
				WalletID:        wallet.ID,
				TransactionType: string(models.TransactionDeposit),
				Amount:          input.InitialBalance,
				Description:     "Initial balance",
			})
			if err != nil {
				return fmt.Errorf("failed to record initial balance: %w", err)
			}
		}

		config := models.DefaultCompanyConfiguration(company.ID)
		if err := companies.CreateConfiguration(ctx, config); err != nil {
			return fmt.Errorf("failed to create company configuration: %w", err)
		}

		company.Wallet = wallet
		company.Config = config
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "company_created", fmt.Sprintf("company %q created", company.Name), map[string]interface{}{"company_id": company.ID})
	return company, nil
}

func (s *companyService) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "company")
	}
	return company, nil
}

func (s *companyService) UpdatePricingPolicy(ctx context.Context, companyID uint, policy models.PricingPolicy) (*models.Company, error) {
	normalized, err := NormalizePricingPolicy(policy)
	if err != nil {
		return nil, err
	}
	if err := s.companyRepo.UpdatePricingPolicy(ctx, companyID, normalized); err != nil {
		return nil, notFound(err, "company")
	}

	if s.cache != nil {
		if err := s.cache.DeletePricingPolicy(ctx, companyID); err != nil {
			s.log.Error(ctx, "pricing_policy_cache", "failed to invalidate cached policy", err)
		}
	}
	return s.GetCompany(ctx, companyID)
}

// GetPricingPolicy serves the policy from cache when possible. Cache failures
// fall through to the database.
func (s *companyService) GetPricingPolicy(ctx context.Context, companyID uint) (*models.PricingPolicy, error) {
	if s.cache != nil {
		cached, err := s.cache.GetPricingPolicy(ctx, companyID)
		if err != nil {
			s.log.Error(ctx, "pricing_policy_cache", "failed to read cached policy", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	company, err := s.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	policy := company.PricingPolicy

	if s.cache != nil {
		if err := s.cache.SetPricingPolicy(ctx, companyID, &policy, s.cacheTTL); err != nil {
			s.log.Error(ctx, "pricing_policy_cache", "failed to cache policy", err)
		}
	}
	return &policy, nil
}

// NormalizePricingPolicy fills empty enums with their defaults and rejects
// out-of-range values.
func NormalizePricingPolicy(p models.PricingPolicy) (models.PricingPolicy, error) {
	if p.CalculationMode == "" {
		p.CalculationMode = string(models.CalculationFluid)
	}
	if p.DiscountType == "" {
		p.DiscountType = string(models.CompanyDiscountNone)
	}
	if p.RoundingRule == "" {
		p.RoundingRule = string(models.RoundingNone)
	}

	switch models.CalculationMode(p.CalculationMode) {
	case models.CalculationFluid, models.CalculationAverage:
	default:
		return p, validation("calculation_mode", "must be FLUID or AVERAGE")
	}
	switch models.CompanyDiscountType(p.DiscountType) {
	case models.CompanyDiscountNone, models.CompanyDiscountPercentage, models.CompanyDiscountFixed:
	default:
		return p, validation("discount_type", "must be NONE, PERCENTAGE or FIXED")
	}
	switch models.RoundingRule(p.RoundingRule) {
	case models.RoundingNone, models.RoundingHundred, models.RoundingFiveHundred, models.RoundingThousand:
	default:
		return p, validation("rounding_rule", "must be NONE, HUNDRED, FIVE_HUNDRED or THOUSAND")
	}

	if p.AveragePrice.IsNegative() {
		return p, validation("average_price", "cannot be negative")
	}
	if p.DiscountValue.IsNegative() {
		return p, validation("discount_value", "cannot be negative")
	}
	if models.CompanyDiscountType(p.DiscountType) == models.CompanyDiscountPercentage && p.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return p, validation("discount_value", "percentage cannot exceed 100")
	}
	return p, nil
}
