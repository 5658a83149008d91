package domain

import (
	"context"
	"time"
)

// Operation audit statuses.
const (
	AuditStatusSuccess  = "SUCCESS"
	AuditStatusRejected = "REJECTED"
	AuditStatusError    = "ERROR"
)

// Audited operations.
const (
	ActionAddColumn    = "ADD_COLUMN"
	ActionModifyColumn = "MODIFY_COLUMN"
	ActionDropColumn   = "DROP_COLUMN"
	ActionInsertRows   = "INSERT_ROWS"
	ActionUpdateRows   = "UPDATE_ROWS"
	ActionDeleteRows   = "DELETE_ROWS"
)

// AuditEntry records one engine operation: who ran it, against what, and
// how it ended.
type AuditEntry struct {
	ID            string    `json:"id"`
	PrincipalName string    `json:"principal"`
	Action        string    `json:"action"`
	Database      string    `json:"database"`
	Table         string    `json:"table"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	RequestID     string    `json:"request_id,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditFilter holds filter parameters for querying the operation audit log.
type AuditFilter struct {
	Action *string
	Status *string
	Table  *string
	Page   PageRequest
}

// AuditRepository persists operation audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}

// AuditPage is a page of operation audit entries, newest first.
type AuditPage struct {
	Entries    []AuditEntry
	Pagination Pagination
}
