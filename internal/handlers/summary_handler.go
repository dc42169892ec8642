package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fitcore/membership-api/internal/middleware"
	"github.com/fitcore/membership-api/internal/services"
	"github.com/fitcore/membership-api/pkg/dates"
	"github.com/gin-gonic/gin"
)

type SummaryHandler struct {
	summaryService *services.SummaryService
	exportService  *services.ExportService
}

func NewSummaryHandler(summaryService *services.SummaryService, exportService *services.ExportService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, exportService: exportService}
}

// @Summary List Daily Summaries
// @Description Get the daily counter documents for the current branch in a date range
// @Tags Summaries
// @Accept json
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD), defaults to 30 days ago"
// @Param to query string false "End date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /summaries/daily [get]
func (h *SummaryHandler) Daily(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	summaries, err := h.summaryService.ListDaily(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetBranchID(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries, "from": from, "to": to})
}

// @Summary List Monthly Summaries
// @Description Get the monthly counter documents for the current branch in one year
// @Tags Summaries
// @Accept json
// @Produce json
// @Param year query string false "Year (YYYY), defaults to the current year"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /summaries/monthly [get]
func (h *SummaryHandler) Monthly(c *gin.Context) {
	year := c.DefaultQuery("year", time.Now().UTC().Format("2006"))
	if len(year) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be YYYY"})
		return
	}

	summaries, err := h.summaryService.ListMonthly(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetBranchID(c), year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries, "year": year})
}

// @Summary Export Daily Summaries
// @Description Download the daily counter documents as XLSX or CSV
// @Tags Summaries
// @Produce application/octet-stream
// @Param format query string false "Export format: xlsx or csv" default(xlsx)
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /summaries/export [get]
func (h *SummaryHandler) Export(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	tenantID := middleware.GetTenantID(c)
	branchID := middleware.GetBranchID(c)

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)

	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		data, filename, err = h.exportService.ExportDailyCSV(c.Request.Context(), tenantID, branchID, from, to)
		contentType = "text/csv"
	case "xlsx":
		data, filename, err = h.exportService.ExportDailyXLSX(c.Request.Context(), tenantID, branchID, from, to)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or csv"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *SummaryHandler) dateRange(c *gin.Context) (string, string, bool) {
	now := time.Now().UTC()
	from := c.DefaultQuery("from", now.AddDate(0, 0, -30).Format(dates.Layout))
	to := c.DefaultQuery("to", now.Format(dates.Layout))

	if !dates.Valid(from) || !dates.Valid(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be YYYY-MM-DD"})
		return "", "", false
	}
	if dates.Before(to, from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not precede from"})
		return "", "", false
	}
	return from, to, true
}
