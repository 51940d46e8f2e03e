package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opsboard/backend/internal/service"
	"github.com/opsboard/backend/internal/types"
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/staff-activity", h.ListActivity)
}

func (h *ActivityHandler) ListActivity(c *gin.Context) {
	filter := types.ActivityFilter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
	}
	if v := c.Query("actor"); v != "" {
		actorID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid actor id"})
			return
		}
		filter.ActorID = &actorID
	}
	if v := c.Query("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}

	activities, total, err := h.activityService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch staff activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"total":      total,
	})
}
