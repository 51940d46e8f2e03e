package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsboard/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/reports/consumption.xlsx", h.ConsumptionReport)
}

func (h *ReportHandler) ConsumptionReport(c *gin.Context) {
	from, to := h.reportService.DefaultRange()
	now := to

	var err error
	if v := c.Query("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a YYYY-MM-DD date"})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be a YYYY-MM-DD date"})
			return
		}
		// inclusive end date
		to = to.AddDate(0, 0, 1)
	}

	buf, err := h.reportService.ConsumptionXLSX(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	filename := fmt.Sprintf("consumption-%s.xlsx", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
