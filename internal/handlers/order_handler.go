package handlers

import (
	"net/http"

	"catering_orders/internal/models"
	"catering_orders/internal/services"
	"catering_orders/pkg/logger"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
	log          *logger.Logger
}

func NewOrderHandler(orderService services.OrderService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, log: log}
}

type orderRequest struct {
	DailyMenuID    uint   `json:"daily_menu_id"`
	FoodItemID     uint   `json:"food_item_id" binding:"required"`
	SideDishIDs    []uint `json:"side_dish_ids"`
	Quantity       int    `json:"quantity"`
	DiscountCode   string `json:"discount_code" binding:"omitempty,couponcode"`
	CouponOptional bool   `json:"coupon_optional"`
}

func orderResponse(order *models.Order, couponRejected string) gin.H {
	sideIDs := make([]uint, 0, len(order.SideDishes))
	for _, side := range order.SideDishes {
		sideIDs = append(sideIDs, side.ID)
	}

	resp := gin.H{
		"id":                      order.ID,
		"user_id":                 order.UserID,
		"daily_menu_id":           order.DailyMenuID,
		"food_item_id":            order.FoodItemID,
		"side_dish_ids":           sideIDs,
		"quantity":                order.Quantity,
		"status":                  order.Status,
		"settlement_state":        order.SettlementState,
		"base_price":              order.BasePrice,
		"company_discount_amount": order.CompanyDiscountAmount,
		"coupon_discount_amount":  order.CouponDiscountAmount,
		"final_price":             order.FinalPrice,
		"created_at":              order.CreatedAt,
		"updated_at":              order.UpdatedAt,
	}
	if order.DailyMenu != nil {
		resp["delivery_date"] = order.DailyMenu.Date.Format("2006-01-02")
	}
	if order.DiscountUsage != nil && order.DiscountUsage.DiscountCode != nil {
		resp["discount_code"] = order.DiscountUsage.DiscountCode.Code
	}
	if couponRejected != "" {
		resp["coupon_rejected"] = couponRejected
	}
	return resp
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	items := make([]gin.H, 0, len(orders))
	for i := range orders {
		items = append(items, orderResponse(&orders[i], ""))
	}
	c.JSON(http.StatusOK, gin.H{"orders": items})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, ""))
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.DailyMenuID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"field": "daily_menu_id", "message": "failed on required"})
		return
	}

	result, err := h.orderService.PlaceOrder(c.Request.Context(), services.PlaceOrderInput{
		UserID:         currentUserID(c),
		DailyMenuID:    req.DailyMenuID,
		FoodItemID:     req.FoodItemID,
		SideDishIDs:    req.SideDishIDs,
		Quantity:       req.Quantity,
		DiscountCode:   req.DiscountCode,
		CouponOptional: req.CouponOptional,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, orderResponse(result.Order, result.CouponRejected))
}

func (h *OrderHandler) ModifyOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.orderService.ModifyOrder(c.Request.Context(), services.ModifyOrderInput{
		UserID:         currentUserID(c),
		OrderID:        id,
		DailyMenuID:    req.DailyMenuID,
		FoodItemID:     req.FoodItemID,
		SideDishIDs:    req.SideDishIDs,
		Quantity:       req.Quantity,
		DiscountCode:   req.DiscountCode,
		CouponOptional: req.CouponOptional,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(result.Order, result.CouponRejected))
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.CancelOrder(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, ""))
}

func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=CONFIRMED PREPARING DELIVERED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.AdvanceStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, ""))
}
