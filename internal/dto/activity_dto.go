package dto

import (
	"encoding/json"
	"time"

	"github.com/orbicityhub/cityhub-api/internal/models"
)

// ActivityLogCreateRequest captures one mutating action for the audit trail.
// Snapshots are opaque JSON; by convention callers tag them as
// {"entityType": ..., "payload": ...} so the owning module can re-apply them.
type ActivityLogCreateRequest struct {
	UserID       *uint           `json:"userId"`
	ActionType   string          `json:"actionType" validate:"required,min=1,max=100"`
	TargetEntity string          `json:"targetEntity" validate:"omitempty,max=100"`
	TargetID     string          `json:"targetId" validate:"omitempty,max=100"`
	OldValue     json.RawMessage `json:"oldValue"`
	NewValue     json.RawMessage `json:"newValue"`
	IPAddress    string          `json:"ipAddress" validate:"omitempty,max=45"`
	UserAgent    string          `json:"userAgent" validate:"omitempty,max=512"`
	Module       string          `json:"module" validate:"omitempty,max=64"`
	Rollbackable *bool           `json:"isRollbackable"`
}

// ActivityLogCreateResponse returns the generated identifier.
type ActivityLogCreateResponse struct {
	ID uint `json:"id"`
}

// ActivityLogListRequest defines the listing filters. Date strings are ISO
// timestamps or dates; bounds are inclusive.
type ActivityLogListRequest struct {
	Page       int
	Limit      int
	UserID     *uint
	ActionType string
	Module     string
	StartDate  string
	EndDate    string
}

// ActivityLogResponse serializes one audit trail entry.
type ActivityLogResponse struct {
	ID           uint            `json:"id"`
	UserID       *uint           `json:"userId"`
	ActionType   string          `json:"actionType"`
	TargetEntity string          `json:"targetEntity,omitempty"`
	TargetID     string          `json:"targetId,omitempty"`
	OldValue     json.RawMessage `json:"oldValue,omitempty"`
	NewValue     json.RawMessage `json:"newValue,omitempty"`
	IPAddress    string          `json:"ipAddress,omitempty"`
	UserAgent    string          `json:"userAgent,omitempty"`
	Module       string          `json:"module,omitempty"`
	Rollbackable bool            `json:"isRollbackable"`
	CreatedAt    time.Time       `json:"createdAt"`
	RolledBackAt *time.Time      `json:"rolledBackAt,omitempty"`
	RolledBackBy *uint           `json:"rolledBackBy,omitempty"`
}

// ActivityLogListResponse wraps one page of entries, newest first.
type ActivityLogListResponse struct {
	Logs       []ActivityLogResponse `json:"logs"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"totalPages"`
}

// NewActivityLogResponse converts a model into its wire form.
func NewActivityLogResponse(entry models.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:           entry.ID,
		UserID:       entry.UserID,
		ActionType:   entry.ActionType,
		TargetEntity: entry.TargetEntity,
		TargetID:     entry.TargetID,
		OldValue:     json.RawMessage(entry.OldValue),
		NewValue:     json.RawMessage(entry.NewValue),
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Module:       entry.Module,
		Rollbackable: entry.Rollbackable,
		CreatedAt:    entry.CreatedAt,
		RolledBackAt: entry.RolledBackAt,
		RolledBackBy: entry.RolledBackBy,
	}
}

// RollbackRequest identifies who is undoing the action. The entry id comes
// from the URL path.
type RollbackRequest struct {
	UserID uint `json:"userId" validate:"required,gt=0"`
}

// RollbackResponse carries the outcome plus, on success, the prior snapshot
// the caller must re-apply; the engine never writes entities back itself.
type RollbackResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	OldValue     json.RawMessage `json:"oldValue,omitempty"`
	TargetEntity string          `json:"targetEntity,omitempty"`
	TargetID     string          `json:"targetId,omitempty"`
}

// CleanupResponse reports how many entries the retention sweep removed.
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// FilterValuesResponse lists distinct values for the filter dropdowns.
type FilterValuesResponse struct {
	Values []string `json:"values"`
}
