package services

import (
	"errors"
	"fmt"

	"catering_orders/internal/reservation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError rejects a request before any state changes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InsufficientFundsError reports a budget too small for the charge.
type InsufficientFundsError struct {
	Budget   decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient budget: have %s, need %s", e.Budget.StringFixed(0), e.Required.StringFixed(0))
}

// InvalidCouponError names the first coupon check that failed.
type InvalidCouponError struct {
	Code   string
	Reason string
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("discount code %q: %s", e.Code, e.Reason)
}

// ConsistencyError marks data that breaks an invariant the system relies on,
// such as an ONLINE company without a wallet.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation in %s: %v", e.Op, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

func validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// notFound maps gorm's missing-row error to ErrNotFound and wraps anything
// else with the operation name.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

// windowError turns a reservation window rejection into a validation error.
func windowError(err error) error {
	if errors.Is(err, reservation.ErrTooClose) {
		return validation("daily_menu", reservation.ErrTooClose.Error())
	}
	return err
}
