package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/service"
	"github.com/opsboard/backend/internal/types"
)

type VendorHandler struct {
	vendorService *service.VendorService
	validate      *validator.Validate
}

func NewVendorHandler(vendorService *service.VendorService) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	vendors := router.Group("/vendors")
	{
		vendors.GET("", h.ListVendors)
		vendors.GET("/:id", h.GetVendor)
		vendors.POST("", h.CreateVendor)
		vendors.PUT("/:id", h.UpdateVendor)
		vendors.DELETE("/:id", h.DeleteVendor)
	}
}

func (h *VendorHandler) ListVendors(c *gin.Context) {
	vendors, err := h.vendorService.ListVendors(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vendors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

func (h *VendorHandler) GetVendor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor id"})
		return
	}

	vendor, err := h.vendorService.GetVendor(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req types.VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vendor"})
		return
	}

	c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor id"})
		return
	}

	var req types.VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vendor"})
		return
	}

	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor id"})
		return
	}

	if err := h.vendorService.DeleteVendor(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vendor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vendor deleted successfully",
		"id":      id,
	})
}
