package handlers

import (
	"net/http"

	"catering_orders/internal/services"
	"catering_orders/pkg/logger"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	menuService services.MenuService
	log         *logger.Logger
}

func NewMenuHandler(menuService services.MenuService, log *logger.Logger) *MenuHandler {
	return &MenuHandler{menuService: menuService, log: log}
}

func (h *MenuHandler) GetPrices(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	menu, err := h.menuService.PricedMenu(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}
