package handlers

import (
	"net/http"

	"github.com/fitcore/membership-api/internal/middleware"
	"github.com/fitcore/membership-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// CreateContractRequest is the body for POST /contracts
type CreateContractRequest struct {
	ClientID          string  `json:"client_id" binding:"required"`
	SaleID            *string `json:"sale_id"`
	StartDate         string  `json:"start_date" binding:"required"`
	EndDate           *string `json:"end_date"`
	Status            string  `json:"status"`
	AllowSuspension   bool    `json:"allow_suspension"`
	SuspensionMaxDays int     `json:"suspension_max_days"`
}

// @Summary Create Contract
// @Description Create a new membership contract for a client
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body CreateContractRequest true "Contract Data"
// @Success 201 {object} models.ContractResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), services.CreateContractInput{
		TenantID:          middleware.GetTenantID(c),
		BranchID:          middleware.GetBranchID(c),
		ActorID:           middleware.GetUserID(c),
		ClientID:          req.ClientID,
		SaleID:            req.SaleID,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            req.Status,
		AllowSuspension:   req.AllowSuspension,
		SuspensionMaxDays: req.SuspensionMaxDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": contract.ToResponse()})
}

// @Summary Get Contract
// @Description Get a contract by ID, including its suspensions
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path string true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	contract, err := h.contractService.FindByID(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetBranchID(c), c.Param("contract_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// CancelContractRequest is the body for POST /contracts/:contract_id/cancel
type CancelContractRequest struct {
	Reason        string `json:"reason"`
	RefundRevenue bool   `json:"refund_revenue"`
	Schedule      bool   `json:"schedule"`
	CancelDate    string `json:"cancel_date"` // YYYY-MM-DD; required when schedule is true
}

// @Summary Cancel Contract
// @Description Cancel a contract now, or schedule the cancellation for a future date
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path string true "Contract ID"
// @Param request body CancelContractRequest true "Cancellation Data"
// @Success 200 {object} services.CancelContractResult
// @Failure 400,404,422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	var req CancelContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contractService.Cancel(c.Request.Context(), services.CancelContractInput{
		TenantID:      middleware.GetTenantID(c),
		BranchID:      middleware.GetBranchID(c),
		ActorID:       middleware.GetUserID(c),
		ContractID:    c.Param("contract_id"),
		Reason:        req.Reason,
		RefundRevenue: req.RefundRevenue,
		Schedule:      req.Schedule,
		CancelDate:    req.CancelDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
