package model

import (
	"time"

	"github.com/google/uuid"
)

// StaffActivity is an append-only audit entry for a staff action. Records are
// never updated or deleted.
type StaffActivity struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"actor_id"`
	ActorName string    `gorm:"size:255" json:"actor_name"`
	Action    string    `gorm:"size:50;not null;index" json:"action"`
	Entity    string    `gorm:"size:50;index" json:"entity"`
	EntityID  string    `gorm:"size:64" json:"entity_id,omitempty"`
	Method    string    `gorm:"size:10" json:"method"`
	Path      string    `gorm:"size:255" json:"path"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
}

func (StaffActivity) TableName() string {
	return "staff_activities"
}
