// Package auditutil records mutating operations in the operation audit log.
package auditutil

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"flexidb/internal/domain"
)

// Record appends an audit entry for action on database.table. The status is
// derived from err: nil is SUCCESS, a caller-side rejection (validation, not
// found, conflict or policy) is REJECTED, anything else is ERROR. Failures to
// write the entry are logged and otherwise ignored.
func Record(ctx context.Context, audit domain.AuditRepository, logger *slog.Logger,
	action, database, table string, start time.Time, message string, err error) {
	if audit == nil {
		return
	}
	status := Status(err)
	if err != nil {
		message = err.Error()
	}
	entry := &domain.AuditEntry{
		PrincipalName: domain.PrincipalName(ctx),
		Action:        action,
		Database:      database,
		Table:         table,
		Status:        status,
		Message:       message,
		RequestID:     domain.RequestIDFromContext(ctx),
		DurationMs:    time.Since(start).Milliseconds(),
	}
	// The operation's own context may already be cancelled.
	if werr := audit.Insert(context.WithoutCancel(ctx), entry); werr != nil && logger != nil {
		logger.Warn("audit insert failed", "action", action, "table", table, "error", werr)
	}
}

// Status classifies an operation outcome.
func Status(err error) string {
	if err == nil {
		return domain.AuditStatusSuccess
	}
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		policy     *domain.PolicyError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &notFound),
		errors.As(err, &conflict), errors.As(err, &policy):
		return domain.AuditStatusRejected
	default:
		return domain.AuditStatusError
	}
}
