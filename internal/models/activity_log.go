package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog records one mutating action taken through the back office.
// Every field except RolledBackAt/RolledBackBy is write-once: entries are
// appended, optionally flagged as rolled back, and only bulk-retired by age.
type ActivityLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       *uint          `gorm:"index" json:"userId"`
	ActionType   string         `gorm:"size:100;not null" json:"actionType"`
	TargetEntity string         `gorm:"size:100" json:"targetEntity"`
	TargetID     string         `gorm:"size:100" json:"targetId"`
	OldValue     datatypes.JSON `gorm:"type:json" json:"oldValue"`
	NewValue     datatypes.JSON `gorm:"type:json" json:"newValue"`
	IPAddress    string         `gorm:"size:45" json:"ipAddress"`
	UserAgent    string         `gorm:"size:512" json:"userAgent"`
	Module       string         `gorm:"size:64;index" json:"module"`
	Rollbackable bool           `gorm:"column:is_rollbackable;not null;default:true" json:"isRollbackable"`
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`
	RolledBackAt *time.Time     `json:"rolledBackAt"`
	RolledBackBy *uint          `json:"rolledBackBy"`
}

// RolledBack reports whether the entry has reached its terminal state.
func (l ActivityLog) RolledBack() bool {
	return l.RolledBackAt != nil
}
