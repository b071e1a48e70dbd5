package handlers

import (
	"net/http"

	"catering_orders/internal/middleware"
	"catering_orders/internal/models"
	"catering_orders/pkg/auth"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth      *AuthHandler
	Orders    *OrderHandler
	Wallets   *WalletHandler
	Companies *CompanyHandler
	Discounts *DiscountHandler
	Menus     *MenuHandler
}

func SetupRoutes(router *gin.Engine, h Handlers, tokens *auth.TokenManager) {
	superAdmin := string(models.SuperAdmin)
	companyAdmin := string(models.CompanyAdmin)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.Authentication(tokens))
	{
		authed.GET("/me", h.Auth.Me)

		authed.GET("/orders", h.Orders.ListOrders)
		authed.GET("/orders/:id", h.Orders.GetOrder)
		authed.POST("/orders", h.Orders.PlaceOrder)
		authed.PUT("/orders/:id", h.Orders.ModifyOrder)
		authed.DELETE("/orders/:id", h.Orders.CancelOrder)

		authed.GET("/daily-menus/:id/prices", h.Menus.GetPrices)
		authed.POST("/discount-codes/validate", h.Discounts.Validate)

		authed.GET("/wallet", middleware.RequireRoles(companyAdmin), h.Wallets.GetWallet)
		authed.POST("/wallet/deposit", middleware.RequireRoles(companyAdmin), h.Wallets.Deposit)
	}

	admin := authed.Group("/admin")
	{
		admin.POST("/companies", middleware.RequireRoles(superAdmin), h.Companies.CreateCompany)
		admin.PUT("/companies/:id/pricing", middleware.RequireRoles(superAdmin, companyAdmin), h.Companies.UpdatePricingPolicy)
		admin.POST("/companies/:id/deposit", middleware.RequireRoles(superAdmin), h.Wallets.DepositToCompany)
		admin.POST("/employees/:user_id/allocate_budget", middleware.RequireRoles(superAdmin, companyAdmin), h.Wallets.AllocateBudget)
		admin.POST("/employees/:user_id/reclaim_budget", middleware.RequireRoles(superAdmin, companyAdmin), h.Wallets.ReclaimBudget)
		admin.PATCH("/orders/:id/status", middleware.RequireRoles(superAdmin), h.Orders.AdvanceStatus)
	}
}
