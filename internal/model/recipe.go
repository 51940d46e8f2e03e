package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Ingredient is one entry in a recipe's ordered ingredient list. Exactly one
// of FoodSupplyID and SubrecipeID is set: a food reference draws from supply
// stock, a subrecipe reference scales the nested recipe by Quantity.
type Ingredient struct {
	FoodSupplyID *uuid.UUID `json:"food_supply_id,omitempty"`
	SubrecipeID  *uuid.UUID `json:"subrecipe_id,omitempty"`
	Name         string     `json:"name"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit,omitempty"`
}

// IsSubrecipe reports whether the ingredient references a nested recipe.
func (i Ingredient) IsSubrecipe() bool {
	return i.SubrecipeID != nil
}

// IngredientList stores a recipe's ingredients as a JSONB array.
type IngredientList []Ingredient

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}

type Recipe struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	Name            string           `gorm:"size:255;not null" json:"name"`
	Description     string           `gorm:"type:text" json:"description"`
	Category        string           `gorm:"size:50" json:"category"`
	Servings        int              `gorm:"not null;default:1" json:"servings"`
	PrepTimeMinutes int              `json:"prep_time_minutes"`
	Ingredients     IngredientList   `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions    JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	IsSubrecipe     bool             `gorm:"index" json:"is_subrecipe"`
	TotalCost       float64          `gorm:"type:float" json:"total_cost"`
	CostPerServing  float64          `gorm:"type:float" json:"cost_per_serving"`
	ImageURL        string           `gorm:"size:255" json:"image_url"`
	Embedding       pgvector.Vector  `gorm:"type:vector(3)" json:"-"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null" json:"user_id"`
}
