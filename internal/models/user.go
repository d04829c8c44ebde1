package models

import "time"

// User represents a back-office operator. Activity log entries reference
// users loosely; deleting a user never cascades into the audit trail.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OpenID       string    `gorm:"size:64;uniqueIndex;not null" json:"openId"`
	Name         string    `json:"name"`
	Email        string    `gorm:"size:320" json:"email"`
	Role         string    `gorm:"size:32;not null;default:guest" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}
