package handlers

import (
	"context"
	"net/http"
	"strconv"

	"catering_orders/internal/models"
	"catering_orders/internal/services"
	"catering_orders/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	walletService services.WalletService
	userService   services.UserService
	log           *logger.Logger
}

func NewWalletHandler(walletService services.WalletService, userService services.UserService, log *logger.Logger) *WalletHandler {
	return &WalletHandler{walletService: walletService, userService: userService, log: log}
}

type amountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// callerCompany returns the company of the authenticated user.
func (h *WalletHandler) callerCompany(c *gin.Context) (*models.User, uint, bool) {
	caller, err := h.userService.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return nil, 0, false
	}
	if caller.CompanyID == nil {
		c.JSON(http.StatusForbidden, gin.H{"field": "", "message": "user does not belong to a company"})
		return nil, 0, false
	}
	return caller, *caller.CompanyID, true
}

func (h *WalletHandler) GetWallet(c *gin.Context) {
	_, companyID, ok := h.callerCompany(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	view, err := h.walletService.GetWallet(c.Request.Context(), companyID, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Deposit credits the caller's own company wallet.
func (h *WalletHandler) Deposit(c *gin.Context) {
	caller, companyID, ok := h.callerCompany(c)
	if !ok {
		return
	}
	h.deposit(c, companyID, caller.ID)
}

// DepositToCompany lets a super admin credit any company wallet.
func (h *WalletHandler) DepositToCompany(c *gin.Context) {
	companyID, ok := idParam(c, "id")
	if !ok {
		return
	}
	h.deposit(c, companyID, currentUserID(c))
}

func (h *WalletHandler) deposit(c *gin.Context, companyID, actorID uint) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	wallet, err := h.walletService.Deposit(c.Request.Context(), companyID, actorID, req.Amount, req.Description)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

func (h *WalletHandler) AllocateBudget(c *gin.Context) {
	h.moveBudget(c, h.walletService.AllocateBudget)
}

func (h *WalletHandler) ReclaimBudget(c *gin.Context) {
	h.moveBudget(c, h.walletService.ReclaimBudget)
}

type budgetMove func(ctx context.Context, companyID, userID uint, amount decimal.Decimal) (*models.User, error)

// moveBudget resolves the employee's company and checks that a company admin
// only touches their own employees.
func (h *WalletHandler) moveBudget(c *gin.Context, move budgetMove) {
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	employee, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if employee.CompanyID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"field": "user_id", "message": "user does not belong to a company"})
		return
	}

	if currentRole(c) != models.SuperAdmin {
		caller, err := h.userService.GetUserByID(ctx, currentUserID(c))
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		if caller.CompanyID == nil || *caller.CompanyID != *employee.CompanyID {
			respondError(c, h.log, services.ErrForbidden)
			return
		}
	}

	updated, err := move(ctx, *employee.CompanyID, employee.ID, req.Amount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": updated.ID, "budget": updated.Budget})
}
