package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FoodSupply is a stock record for one kitchen ingredient.
type FoodSupply struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Name           string         `gorm:"size:255;not null;index" json:"name"`
	Category       string         `gorm:"size:50;index" json:"category"`
	Quantity       float64        `gorm:"not null;default:0" json:"quantity"`
	Unit           string         `gorm:"size:20" json:"unit"`
	PricePerUnit   float64        `gorm:"type:float" json:"price_per_unit"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	MinThreshold   float64        `gorm:"type:float" json:"min_threshold"`
	Barcode        string         `gorm:"size:64;uniqueIndex:,where:barcode <> ''" json:"barcode,omitempty"`
	VendorID       *uuid.UUID     `gorm:"type:uuid;index" json:"vendor_id,omitempty"`
}

// Expired reports whether the supply's expiration date has passed at t.
func (s *FoodSupply) Expired(t time.Time) bool {
	return s.ExpirationDate != nil && s.ExpirationDate.Before(t)
}

// Consumption record kinds.
const (
	ConsumptionUsed   = "used"
	ConsumptionWasted = "wasted"
)

// ConsumptionRecord is an append-only entry of supply leaving stock, either
// used in a recipe or discarded as waste. Supply name and category are
// denormalized so history survives supply deletion and aggregations stay
// single-pass.
type ConsumptionRecord struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	FoodSupplyID uuid.UUID  `gorm:"type:uuid;not null;index" json:"food_supply_id"`
	SupplyName   string     `gorm:"size:255;not null" json:"supply_name"`
	Category     string     `gorm:"size:50" json:"category"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	Unit         string     `gorm:"size:20" json:"unit"`
	CostValue    float64    `gorm:"type:float" json:"cost_value"`
	Kind         string     `gorm:"size:10;not null;index" json:"kind"`
	Reason       string     `gorm:"size:50" json:"reason,omitempty"`
	RecipeID     *uuid.UUID `gorm:"type:uuid;index" json:"recipe_id,omitempty"`
	ActorID      uuid.UUID  `gorm:"type:uuid" json:"actor_id"`
}
