package service

import "errors"

// Rollback precondition failures. Each carries the exact user-facing message
// so the UI can explain why the action was refused.
var (
	ErrLogNotFound           = errors.New("activity log not found")
	ErrNotRollbackable       = errors.New("this action cannot be rolled back")
	ErrAlreadyRolledBack     = errors.New("this action has already been rolled back")
	ErrRollbackWindowExpired = errors.New("rollback window (15 minutes) has expired")
)
