package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vendor struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Category    string         `gorm:"size:50;index" json:"category"`
	ContactName string         `gorm:"size:255" json:"contact_name"`
	Email       string         `gorm:"size:255" json:"email"`
	Phone       string         `gorm:"size:50" json:"phone"`
	Address     string         `gorm:"type:text" json:"address"`
	Notes       string         `gorm:"type:text" json:"notes"`
}
