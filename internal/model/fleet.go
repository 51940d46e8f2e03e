package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle statuses.
const (
	VehicleAvailable   = "available"
	VehicleRented      = "rented"
	VehicleMaintenance = "maintenance"
)

type Vehicle struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Model       string         `gorm:"size:100" json:"model"`
	PlateNumber string         `gorm:"size:20;uniqueIndex" json:"plate_number"`
	Category    string         `gorm:"size:50" json:"category"`
	Status      string         `gorm:"size:20;not null;default:'available';index" json:"status"`
	DailyRate   float64        `gorm:"type:float" json:"daily_rate"`
	OdometerKm  float64        `gorm:"type:float" json:"odometer_km"`
	PhotoURL    string         `gorm:"size:255" json:"photo_url"`
}

// VehicleRental tracks one rental from checkout to return.
type VehicleRental struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	VehicleID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	RenterName      string     `gorm:"size:255;not null" json:"renter_name"`
	RenterContact   string     `gorm:"size:255" json:"renter_contact"`
	StartAt         time.Time  `gorm:"not null" json:"start_at"`
	DueAt           time.Time  `gorm:"not null" json:"due_at"`
	ReturnedAt      *time.Time `json:"returned_at,omitempty"`
	StartOdometerKm float64    `gorm:"type:float" json:"start_odometer_km"`
	EndOdometerKm   float64    `gorm:"type:float" json:"end_odometer_km"`
	TotalPrice      float64    `gorm:"type:float" json:"total_price"`
}

// Active reports whether the rental is still out.
func (r *VehicleRental) Active() bool {
	return r.ReturnedAt == nil
}

// Overdue reports whether the rental is out past its due time at t.
func (r *VehicleRental) Overdue(t time.Time) bool {
	return r.ReturnedAt == nil && r.DueAt.Before(t)
}
