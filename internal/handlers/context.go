package handlers

import (
	"net/http"
	"strconv"

	"catering_orders/internal/middleware"
	"catering_orders/internal/models"

	"github.com/gin-gonic/gin"
)

func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserID)
}

func currentRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(middleware.ContextRole))
}

// idParam parses a positive numeric path parameter, writing a 400 on failure.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"field": name, "message": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
