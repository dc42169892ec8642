package handlers

import (
	"net/http"

	"github.com/fitcore/membership-api/internal/services"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// Trigger runs one reconciliation job immediately
// @Summary Trigger a reconciliation job
// @Description Run one of the daily reconciliation jobs now (activate_suspensions, complete_suspensions, execute_cancellations)
// @Tags Jobs
// @Produce json
// @Param job_name path string true "Job name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /jobs/{job_name}/trigger [post]
func (h *JobHandler) Trigger(c *gin.Context) {
	name := c.Param("job_name")
	processed, err := h.jobService.Trigger(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": name, "processed": processed})
}
