package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog records a mutating admin action for the audit trail
type ActivityLog struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    uint           `gorm:"not null;index" json:"actor_id"`
	Action     string         `gorm:"size:50;not null" json:"action"` // create_application, set_reminder, ...
	EntityType string         `gorm:"size:30;not null" json:"entity_type"`
	EntityID   uint           `gorm:"not null" json:"entity_id"`
	Details    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"details"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_logs"
}
