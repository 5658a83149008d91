// Package governance implements the operation audit log read service.
package governance

import (
	"context"
	"strings"

	"flexidb/internal/domain"
)

// AuditService provides audit log operations.
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns a filtered, paginated list of audit log entries, newest first.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error) {
	if !filter.Page.Valid() {
		return nil, domain.ErrValidation("Invalid pagination parameters.")
	}
	if filter.Status != nil {
		status := strings.ToUpper(*filter.Status)
		switch status {
		case domain.AuditStatusSuccess, domain.AuditStatusRejected, domain.AuditStatusError:
			filter.Status = &status
		default:
			return nil, domain.ErrValidation("Invalid status filter.")
		}
	}
	if filter.Action != nil {
		action := strings.ToUpper(*filter.Action)
		filter.Action = &action
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to list audit logs.")
	}
	return &domain.AuditPage{Entries: entries, Pagination: domain.NewPagination(filter.Page, total)}, nil
}
