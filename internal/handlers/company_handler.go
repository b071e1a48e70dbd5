package handlers

import (
	"net/http"

	"catering_orders/internal/models"
	"catering_orders/internal/services"
	"catering_orders/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CompanyHandler struct {
	companyService services.CompanyService
	userService    services.UserService
	log            *logger.Logger
}

func NewCompanyHandler(companyService services.CompanyService, userService services.UserService, log *logger.Logger) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, userService: userService, log: log}
}

func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req struct {
		Name            string               `json:"name" binding:"required"`
		NationalID      string               `json:"national_id"`
		Address         string               `json:"address"`
		ContactPerson   string               `json:"contact_person"`
		ContactPhone    string               `json:"contact_phone"`
		PaymentModel    string               `json:"payment_model" binding:"omitempty,oneof=ONLINE INVOICE"`
		InvoiceSchedule string               `json:"invoice_schedule"`
		PricingPolicy   models.PricingPolicy `json:"pricing_policy"`
		InitialBalance  decimal.Decimal      `json:"initial_balance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), services.CreateCompanyInput{
		Name:            req.Name,
		NationalID:      req.NationalID,
		Address:         req.Address,
		ContactPerson:   req.ContactPerson,
		ContactPhone:    req.ContactPhone,
		PaymentModel:    req.PaymentModel,
		InvoiceSchedule: req.InvoiceSchedule,
		PricingPolicy:   req.PricingPolicy,
		InitialBalance:  req.InitialBalance,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company, "wallet": company.Wallet})
}

// UpdatePricingPolicy is open to the super admin and to the admin of the
// company itself.
func (h *CompanyHandler) UpdatePricingPolicy(c *gin.Context) {
	companyID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var policy models.PricingPolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if currentRole(c) != models.SuperAdmin {
		caller, err := h.userService.GetUserByID(ctx, currentUserID(c))
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		if caller.CompanyID == nil || *caller.CompanyID != companyID {
			respondError(c, h.log, services.ErrForbidden)
			return
		}
	}

	company, err := h.companyService.UpdatePricingPolicy(ctx, companyID, policy)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company_id": company.ID, "pricing_policy": company.PricingPolicy})
}
