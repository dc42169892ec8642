package handlers

import (
	"net/http"

	"github.com/fitcore/membership-api/internal/middleware"
	"github.com/fitcore/membership-api/internal/services"
	"github.com/gin-gonic/gin"
)

type SuspensionHandler struct {
	suspensionService *services.SuspensionService
}

func NewSuspensionHandler(suspensionService *services.SuspensionService) *SuspensionHandler {
	return &SuspensionHandler{suspensionService: suspensionService}
}

// ScheduleSuspensionRequest is the body for POST /contracts/:contract_id/suspensions
type ScheduleSuspensionRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

// @Summary Schedule Suspension
// @Description Place a vacation hold on a contract. Holds starting today or earlier take effect immediately.
// @Tags Suspensions
// @Accept json
// @Produce json
// @Param contract_id path string true "Contract ID"
// @Param request body ScheduleSuspensionRequest true "Suspension Data"
// @Success 201 {object} models.SuspensionResponse
// @Failure 400,404,422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/suspensions [post]
func (h *SuspensionHandler) Schedule(c *gin.Context) {
	var req ScheduleSuspensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.suspensionService.ScheduleSuspension(c.Request.Context(), services.ScheduleSuspensionInput{
		TenantID:   middleware.GetTenantID(c),
		BranchID:   middleware.GetBranchID(c),
		ActorID:    middleware.GetUserID(c),
		ContractID: c.Param("contract_id"),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"suspension": result.Suspension.ToResponse()}
	if result.NewEndDate != nil {
		resp["new_contract_end_date"] = *result.NewEndDate
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Stop Suspension
// @Description Cancel a scheduled hold or stop an active one early, giving unused days back
// @Tags Suspensions
// @Accept json
// @Produce json
// @Param contract_id path string true "Contract ID"
// @Param suspension_id path string true "Suspension ID"
// @Success 200 {object} services.StopSuspensionResult
// @Failure 404,422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/suspensions/{suspension_id}/stop [post]
func (h *SuspensionHandler) Stop(c *gin.Context) {
	result, err := h.suspensionService.StopSuspension(c.Request.Context(), services.StopSuspensionInput{
		TenantID:     middleware.GetTenantID(c),
		BranchID:     middleware.GetBranchID(c),
		ActorID:      middleware.GetUserID(c),
		ContractID:   c.Param("contract_id"),
		SuspensionID: c.Param("suspension_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary List Suspensions
// @Description List all suspensions of a contract, newest first
// @Tags Suspensions
// @Accept json
// @Produce json
// @Param contract_id path string true "Contract ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/suspensions [get]
func (h *SuspensionHandler) Index(c *gin.Context) {
	suspensions, err := h.suspensionService.ListByContract(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetBranchID(c), c.Param("contract_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(suspensions))
	for _, s := range suspensions {
		responses = append(responses, s.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"suspensions": responses})
}
