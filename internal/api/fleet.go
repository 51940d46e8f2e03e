package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/service"
	"github.com/opsboard/backend/internal/types"
)

type FleetHandler struct {
	fleetService *service.FleetService
}

func NewFleetHandler(fleetService *service.FleetService) *FleetHandler {
	return &FleetHandler{fleetService: fleetService}
}

func (h *FleetHandler) RegisterRoutes(router *gin.RouterGroup) {
	vehicles := router.Group("/vehicles")
	{
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.POST("", h.CreateVehicle)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.DELETE("/:id", h.DeleteVehicle)
		vehicles.POST("/:id/rentals", h.StartRental)
	}

	rentals := router.Group("/rentals")
	{
		rentals.GET("", h.ListRentals)
		rentals.PUT("/:id/return", h.ReturnRental)
	}
}

func (h *FleetHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.fleetService.ListVehicles(c.Request.Context(), c.Query("status"), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

func (h *FleetHandler) GetVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	vehicle, err := h.fleetService.GetVehicle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

func (h *FleetHandler) CreateVehicle(c *gin.Context) {
	var vehicle model.Vehicle
	if err := c.ShouldBindJSON(&vehicle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if vehicle.Name == "" || vehicle.PlateNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and plate_number are required"})
		return
	}

	created, err := h.fleetService.CreateVehicle(c.Request.Context(), &vehicle)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *FleetHandler) UpdateVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	var vehicle model.Vehicle
	if err := c.ShouldBindJSON(&vehicle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.fleetService.UpdateVehicle(c.Request.Context(), id, &vehicle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *FleetHandler) DeleteVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	if err := h.fleetService.DeleteVehicle(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vehicle deleted successfully",
		"id":      id,
	})
}

func (h *FleetHandler) StartRental(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	var req types.StartRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rental, err := h.fleetService.StartRental(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		case errors.Is(err, service.ErrVehicleUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start rental"})
		}
		return
	}

	c.JSON(http.StatusCreated, rental)
}

func (h *FleetHandler) ReturnRental(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rental id"})
		return
	}

	var req types.ReturnRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rental, err := h.fleetService.ReturnRental(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Rental not found"})
		case errors.Is(err, service.ErrRentalAlreadyClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to return rental"})
		}
		return
	}

	c.JSON(http.StatusOK, rental)
}

func (h *FleetHandler) ListRentals(c *gin.Context) {
	rentals, err := h.fleetService.ListRentals(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rentals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rentals": rentals})
}
