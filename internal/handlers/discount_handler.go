package handlers

import (
	"net/http"

	"catering_orders/internal/services"
	"catering_orders/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DiscountHandler struct {
	couponService services.CouponService
	log           *logger.Logger
}

func NewDiscountHandler(couponService services.CouponService, log *logger.Logger) *DiscountHandler {
	return &DiscountHandler{couponService: couponService, log: log}
}

// Validate previews a discount code for the caller. Without a subtotal the
// minimum order check is skipped.
func (h *DiscountHandler) Validate(c *gin.Context) {
	var req struct {
		Code     string              `json:"code" binding:"required,couponcode"`
		Subtotal decimal.NullDecimal `json:"subtotal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.couponService.Validate(c.Request.Context(), nil, req.Code, currentUserID(c), req.Subtotal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	code := result.Code
	c.JSON(http.StatusOK, gin.H{
		"valid":               true,
		"code":                code.Code,
		"discount_type":       code.DiscountType,
		"value":               code.Value,
		"max_discount_amount": code.MaxDiscountAmount,
		"min_order_amount":    code.MinOrderAmount,
		"discount_amount":     result.DiscountAmount,
	})
}
