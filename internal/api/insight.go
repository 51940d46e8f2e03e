package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsboard/backend/internal/service"
)

type InsightHandler struct {
	insightService *service.InsightService
}

func NewInsightHandler(insightService *service.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func (h *InsightHandler) RegisterRoutes(router *gin.RouterGroup) {
	insights := router.Group("/insights")
	{
		insights.GET("/consumption", h.Consumption)
		insights.GET("/top-items", h.TopItems)
		insights.GET("/waste", h.Waste)
		insights.GET("/summary", h.Summary)
	}
}

// window parses the ?days= query, defaulting to 30 days.
func window(c *gin.Context) time.Duration {
	days := 30
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

func (h *InsightHandler) Consumption(c *gin.Context) {
	totals, err := h.insightService.Consumption(c.Request.Context(), window(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute consumption insight"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": totals})
}

func (h *InsightHandler) TopItems(c *gin.Context) {
	n := 5
	if v := c.Query("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}

	items, err := h.insightService.TopItems(c.Request.Context(), window(c), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute top items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InsightHandler) Waste(c *gin.Context) {
	shares, err := h.insightService.Waste(c.Request.Context(), window(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute waste insight"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reasons": shares})
}

func (h *InsightHandler) Summary(c *gin.Context) {
	summary, err := h.insightService.Summary(c.Request.Context(), window(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
