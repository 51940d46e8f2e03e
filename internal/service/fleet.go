package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/types"
)

var (
	ErrVehicleUnavailable  = errors.New("vehicle is not available")
	ErrRentalAlreadyClosed = errors.New("rental already returned")
)

// FleetService handles vehicle and rental operations.
type FleetService struct {
	db     *gorm.DB
	clock  Clock
	logger *zap.Logger
}

func NewFleetService(db *gorm.DB, clock Clock, logger *zap.Logger) *FleetService {
	if clock == nil {
		clock = systemClock{}
	}
	return &FleetService{db: db, clock: clock, logger: logger}
}

// CreateVehicle stores a new vehicle.
func (s *FleetService) CreateVehicle(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	if vehicle.Status == "" {
		vehicle.Status = model.VehicleAvailable
	}
	if err := s.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// GetVehicle retrieves a vehicle by ID.
func (s *FleetService) GetVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle applies changes to a vehicle.
func (s *FleetService) UpdateVehicle(ctx context.Context, id uuid.UUID, vehicle *model.Vehicle) (*model.Vehicle, error) {
	if _, err := s.GetVehicle(ctx, id); err != nil {
		return nil, err
	}
	vehicle.ID = id
	if err := s.db.WithContext(ctx).Model(&model.Vehicle{}).Where("id = ?", id).Updates(vehicle).Error; err != nil {
		return nil, err
	}
	return s.GetVehicle(ctx, id)
}

// DeleteVehicle removes a vehicle.
func (s *FleetService) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetVehicle(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&model.Vehicle{}, "id = ?", id).Error
}

// ListVehicles lists vehicles, optionally by status or search term.
func (s *FleetService) ListVehicles(ctx context.Context, status, search string) ([]model.Vehicle, error) {
	query := s.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(plate_number) LIKE ?", like, like)
	}

	var vehicles []model.Vehicle
	if err := query.Order("name").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// StartRental checks a vehicle out. The vehicle must be available.
func (s *FleetService) StartRental(ctx context.Context, vehicleID uuid.UUID, req *types.StartRentalRequest) (*model.VehicleRental, error) {
	vehicle, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != model.VehicleAvailable {
		return nil, ErrVehicleUnavailable
	}

	rental := model.VehicleRental{
		ID:              uuid.New(),
		VehicleID:       vehicle.ID,
		RenterName:      req.RenterName,
		RenterContact:   req.RenterContact,
		StartAt:         s.clock.Now(),
		DueAt:           req.DueAt,
		StartOdometerKm: vehicle.OdometerKm,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rental).Error; err != nil {
			return err
		}
		return tx.Model(&model.Vehicle{}).Where("id = ?", vehicle.ID).
			Update("status", model.VehicleRented).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rental started",
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("rental_id", rental.ID.String()))
	return &rental, nil
}

// ReturnRental closes a rental, capturing odometer and computing the price
// from whole rental days at the vehicle's daily rate.
func (s *FleetService) ReturnRental(ctx context.Context, rentalID uuid.UUID, req *types.ReturnRentalRequest) (*model.VehicleRental, error) {
	var rental model.VehicleRental
	if err := s.db.WithContext(ctx).First(&rental, "id = ?", rentalID).Error; err != nil {
		return nil, err
	}
	if rental.ReturnedAt != nil {
		return nil, ErrRentalAlreadyClosed
	}

	vehicle, err := s.GetVehicle(ctx, rental.VehicleID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	days := math.Ceil(now.Sub(rental.StartAt).Hours() / 24)
	if days < 1 {
		days = 1
	}

	rental.ReturnedAt = &now
	rental.EndOdometerKm = req.EndOdometerKm
	rental.TotalPrice = days * vehicle.DailyRate

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&rental).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"status": model.VehicleAvailable}
		if req.EndOdometerKm > vehicle.OdometerKm {
			updates["odometer_km"] = req.EndOdometerKm
		}
		return tx.Model(&model.Vehicle{}).Where("id = ?", vehicle.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rental returned",
		zap.String("rental_id", rental.ID.String()),
		zap.Float64("total_price", rental.TotalPrice))
	return &rental, nil
}

// ListRentals lists rentals, optionally narrowed to active or overdue ones.
func (s *FleetService) ListRentals(ctx context.Context, status string) ([]model.VehicleRental, error) {
	query := s.db.WithContext(ctx)
	switch status {
	case "active":
		query = query.Where("returned_at IS NULL")
	case "overdue":
		query = query.Where("returned_at IS NULL AND due_at < ?", s.clock.Now())
	case "closed":
		query = query.Where("returned_at IS NOT NULL")
	}

	var rentals []model.VehicleRental
	if err := query.Order("start_at DESC").Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}
