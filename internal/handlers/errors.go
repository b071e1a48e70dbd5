package handlers

import (
	"errors"
	"net/http"

	"catering_orders/internal/services"
	"catering_orders/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps domain errors to HTTP responses of the form
// {"field": ..., "message": ...}.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var (
		validationErr *services.ValidationError
		couponErr     *services.InvalidCouponError
		fundsErr      *services.InsufficientFundsError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"field": validationErr.Field, "message": validationErr.Message})
	case errors.As(err, &couponErr):
		c.JSON(http.StatusBadRequest, gin.H{"field": "discount_code", "message": couponErr.Reason})
	case errors.As(err, &fundsErr):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"field":    "budget",
			"message":  "insufficient budget",
			"budget":   fundsErr.Budget,
			"required": fundsErr.Required,
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"field": "", "message": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"field": "", "message": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"field": "", "message": "forbidden"})
	default:
		log.Error(c.Request.Context(), "request_failed", c.Request.Method+" "+c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"field": "", "message": "internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"field": "", "message": message})
}

// respondBindError reports binding failures: rule violations name the
// offending field, anything else is a malformed body.
func respondBindError(c *gin.Context, err error) {
	var bindErrs validator.ValidationErrors
	if errors.As(err, &bindErrs) {
		fe := bindErrs[0]
		c.JSON(http.StatusBadRequest, gin.H{"field": fe.Field(), "message": "failed on " + fe.Tag()})
		return
	}
	badRequest(c, "Invalid request format")
}
