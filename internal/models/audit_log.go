package models

import "time"

// AuditLog is one change to a settings, contacts or branch record.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	// UserID is the caller; 0 when a management route ran without the JWT guard.
	UserID uint `gorm:"index" json:"userId"`

	// global_settings, contacts or branch
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   uint   `json:"entityId"`

	Description string `gorm:"size:255" json:"description"`

	// JSON snapshots; "null" before the first write of a singleton.
	BeforeData string `gorm:"type:text" json:"beforeData"`
	AfterData  string `gorm:"type:text" json:"afterData"`
}
