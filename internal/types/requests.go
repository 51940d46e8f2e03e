package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	JobTitle string `json:"job_title"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the body for PUT /profile.
type UpdateProfileRequest struct {
	Username string `json:"username"`
	JobTitle string `json:"job_title"`
	PhotoURL string `json:"photo_url"`
}

// UseRecipeRequest is the body for POST /recipes/:id/use.
type UseRecipeRequest struct {
	Servings float64 `json:"servings" validate:"required,gt=0"`
	Force    bool    `json:"force"`
}

// RefillRequest is the body for POST /food-supply/:id/refill.
type RefillRequest struct {
	Quantity       float64    `json:"quantity" validate:"required,gt=0"`
	PricePerUnit   *float64   `json:"price_per_unit,omitempty" validate:"omitempty,gte=0"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

// WasteRequest is the body for POST /food-supply/:id/waste.
type WasteRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Reason   string  `json:"reason" validate:"required,oneof=expired spoiled damaged overproduction spillage other"`
	Detail   string  `json:"detail" validate:"max=500"`
}

// StartRentalRequest is the body for POST /vehicles/:id/rentals.
type StartRentalRequest struct {
	RenterName    string    `json:"renter_name" binding:"required"`
	RenterContact string    `json:"renter_contact"`
	DueAt         time.Time `json:"due_at" binding:"required"`
}

// ReturnRentalRequest is the body for PUT /rentals/:id/return.
type ReturnRentalRequest struct {
	EndOdometerKm float64 `json:"end_odometer_km" binding:"gte=0"`
}

// VendorRequest is the body for vendor create/update.
type VendorRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Category    string `json:"category" validate:"max=50"`
	ContactName string `json:"contact_name" validate:"max=255"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=50"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

// ActivityFilter narrows staff-activity listings.
type ActivityFilter struct {
	ActorID *uuid.UUID
	Action  string
	Entity  string
	Page    int
	Limit   int
}
