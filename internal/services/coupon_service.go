package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catering_orders/internal/models"
	"catering_orders/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon rejection reasons, in the order the checks run.
const (
	ReasonCodeNotFound       = "code not found"
	ReasonInactive           = "inactive"
	ReasonNotYetStarted      = "not yet started"
	ReasonExpired            = "expired"
	ReasonUsageCapReached    = "usage cap reached"
	ReasonPersonalCapReached = "personal usage cap reached"
	ReasonOrderTooSmall      = "order too small"
)

type CouponValidation struct {
	Code *models.DiscountCode
	// DiscountAmount is the discount on the supplied subtotal, zero when no
	// subtotal was given.
	DiscountAmount decimal.Decimal
}

// CouponService validates and redeems discount codes. Every method accepts
// the caller's transaction; a nil tx runs against the base connection.
type CouponService interface {
	Validate(ctx context.Context, tx *gorm.DB, code string, userID uint, subtotal decimal.NullDecimal) (*CouponValidation, error)
	Redeem(ctx context.Context, tx *gorm.DB, code *models.DiscountCode, userID, orderID uint) (*models.DiscountCodeUsage, error)
	Release(ctx context.Context, tx *gorm.DB, orderID uint) error
}

type couponService struct {
	discountRepo repository.DiscountRepository
	now          func() time.Time
}

func NewCouponService(discountRepo repository.DiscountRepository, now func() time.Time) CouponService {
	if now == nil {
		now = time.Now
	}
	return &couponService{discountRepo: discountRepo, now: now}
}

func (s *couponService) repo(tx *gorm.DB) repository.DiscountRepository {
	if tx == nil {
		return s.discountRepo
	}
	return s.discountRepo.WithTx(tx)
}

func (s *couponService) Validate(ctx context.Context, tx *gorm.DB, code string, userID uint, subtotal decimal.NullDecimal) (*CouponValidation, error) {
	repo := s.repo(tx)
	reject := func(reason string) error {
		return &InvalidCouponError{Code: code, Reason: reason}
	}

	discount, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reject(ReasonCodeNotFound)
		}
		return nil, fmt.Errorf("failed to load discount code: %w", err)
	}

	now := s.now()
	if !discount.IsActive {
		return nil, reject(ReasonInactive)
	}
	if now.Before(discount.StartDate) {
		return nil, reject(ReasonNotYetStarted)
	}
	if discount.EndDate != nil && now.After(*discount.EndDate) {
		return nil, reject(ReasonExpired)
	}
	if discount.MaxUsageCount != nil && discount.UsageCount >= *discount.MaxUsageCount {
		return nil, reject(ReasonUsageCapReached)
	}

	used, err := repo.CountUserUsages(ctx, discount.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count discount usages: %w", err)
	}
	if used >= int64(discount.MaxUsagePerUser) {
		return nil, reject(ReasonPersonalCapReached)
	}

	result := &CouponValidation{Code: discount, DiscountAmount: decimal.Zero}
	if subtotal.Valid {
		if discount.MinOrderAmount.Valid && subtotal.Decimal.LessThan(discount.MinOrderAmount.Decimal) {
			return nil, reject(ReasonOrderTooSmall)
		}
		result.DiscountAmount = discount.CalculateDiscountAmount(subtotal.Decimal)
	}
	return result, nil
}

// Redeem consumes one use of the code for the order. The global cap is
// enforced by a conditional update, so concurrent redemptions can never
// overshoot it.
func (s *couponService) Redeem(ctx context.Context, tx *gorm.DB, code *models.DiscountCode, userID, orderID uint) (*models.DiscountCodeUsage, error) {
	repo := s.repo(tx)

	ok, err := repo.IncrementUsage(ctx, code.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment discount usage: %w", err)
	}
	if !ok {
		return nil, &InvalidCouponError{Code: code.Code, Reason: ReasonUsageCapReached}
	}

	usage := &models.DiscountCodeUsage{
		DiscountCodeID: code.ID,
		UserID:         userID,
		OrderID:        orderID,
	}
	if err := repo.CreateUsage(ctx, usage); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &InvalidCouponError{Code: code.Code, Reason: ReasonPersonalCapReached}
		}
		return nil, fmt.Errorf("failed to record discount usage: %w", err)
	}
	usage.DiscountCode = code
	return usage, nil
}

// Release gives back the use held by a canceled order. Orders without a
// coupon are a no-op.
func (s *couponService) Release(ctx context.Context, tx *gorm.DB, orderID uint) error {
	repo := s.repo(tx)

	usage, err := repo.GetUsageByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load discount usage: %w", err)
	}
	if err := repo.DeleteUsage(ctx, usage.ID); err != nil {
		return fmt.Errorf("failed to delete discount usage: %w", err)
	}
	if err := repo.DecrementUsage(ctx, usage.DiscountCodeID); err != nil {
		return fmt.Errorf("failed to decrement discount usage: %w", err)
	}
	return nil
}
