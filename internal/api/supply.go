package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/service"
	"github.com/opsboard/backend/internal/types"
)

type SupplyHandler struct {
	supplyService *service.SupplyService
	validate      *validator.Validate
	defaultWindow time.Duration
}

func NewSupplyHandler(supplyService *service.SupplyService, expiryWindowDays int) *SupplyHandler {
	if expiryWindowDays <= 0 {
		expiryWindowDays = 7
	}
	return &SupplyHandler{
		supplyService: supplyService,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		defaultWindow: time.Duration(expiryWindowDays) * 24 * time.Hour,
	}
}

func (h *SupplyHandler) RegisterRoutes(router *gin.RouterGroup) {
	supplies := router.Group("/food-supply")
	{
		supplies.GET("", h.ListSupplies)
		supplies.GET("/expiring", h.ListExpiring)
		supplies.GET("/:id", h.GetSupply)
		supplies.POST("", h.CreateSupply)
		supplies.PUT("/:id", h.UpdateSupply)
		supplies.DELETE("/:id", h.DeleteSupply)
		supplies.POST("/:id/refill", h.Refill)
		supplies.POST("/:id/waste", h.RecordWaste)
		supplies.POST("/:id/barcode", h.IssueBarcode)
		supplies.POST("/import", h.ImportXLSX)
	}
}

func (h *SupplyHandler) ListSupplies(c *gin.Context) {
	filter := service.SupplyFilter{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		LowStock: c.Query("low_stock") == "true",
	}
	if v := c.Query("vendor_id"); v != "" {
		vendorID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor id"})
			return
		}
		filter.VendorID = &vendorID
	}

	supplies, err := h.supplyService.ListSupplies(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch supplies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"supplies": supplies})
}

func (h *SupplyHandler) GetSupply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supply id"})
		return
	}

	supply, err := h.supplyService.GetSupply(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supply not found"})
		return
	}

	c.JSON(http.StatusOK, supply)
}

func (h *SupplyHandler) CreateSupply(c *gin.Context) {
	var supply model.FoodSupply
	if err := c.ShouldBindJSON(&supply); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if supply.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	created, err := h.supplyService.CreateSupply(c.Request.Context(), &supply)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create supply"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *SupplyHandler) UpdateSupply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supply id"})
		return
	}

	var supply model.FoodSupply
	if err := c.ShouldBindJSON(&supply); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.supplyService.UpdateSupply(c.Request.Context(), id, &supply)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supply not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supply"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *SupplyHandler) DeleteSupply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supply id"})
		return
	}

	if err := h.supplyService.DeleteSupply(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supply not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete supply"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supply deleted successfully",
		"id":      id,
	})
}

func (h *SupplyHandler) Refill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supply id"})
		return
	}

	var req types.RefillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	supply, err := h.supplyService.Refill(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supply not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refill supply"})
		return
	}

	c.JSON(http.StatusOK, supply)
}

func (h *SupplyHandler) RecordWaste(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supply id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req types.WasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	record, err := h.supplyService.RecordWaste(c.Request.Context(), id, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Supply not found"})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record waste"})
		}
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *SupplyHandler) IssueBarcode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supply id"})
		return
	}

	supply, err := h.supplyService.IssueBarcode(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supply not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue barcode"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      supply.ID,
		"barcode": supply.Barcode,
	})
}

func (h *SupplyHandler) ListExpiring(c *gin.Context) {
	window := h.defaultWindow
	if v := c.Query("within"); v != "" {
		// Accept both "7" and "7d".
		v = strings.TrimSuffix(v, "d")
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "within must be a positive number of days"})
			return
		}
		window = time.Duration(days) * 24 * time.Hour
	}

	supplies, err := h.supplyService.ListExpiring(c.Request.Context(), window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expiring supplies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"supplies": supplies})
}

func (h *SupplyHandler) ImportXLSX(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	created, updated, err := h.supplyService.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"created": created,
		"updated": updated,
	})
}
