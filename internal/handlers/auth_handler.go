package handlers

import (
	"net/http"

	"catering_orders/internal/services"
	"catering_orders/pkg/auth"
	"catering_orders/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService services.UserService
	tokens      *auth.TokenManager
	log         *logger.Logger
}

func NewAuthHandler(userService services.UserService, tokens *auth.TokenManager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens, log: log}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, expiresAt, err := h.tokens.Generate(user.ID, user.Username, user.Role, user.CompanyID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
