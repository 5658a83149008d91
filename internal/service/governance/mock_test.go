package governance

import (
	"context"
	"fmt"

	"flexidb/internal/domain"
)

// errTest is a sentinel error for test scenarios.
var errTest = fmt.Errorf("test error")

func strPtr(s string) *string { return &s }

type mockAuditRepo struct {
	InsertFn func(ctx context.Context, e *domain.AuditEntry) error
	ListFn   func(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)
}

func (m *mockAuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if m.InsertFn == nil {
		panic("unexpected call to mockAuditRepo.Insert")
	}
	return m.InsertFn(ctx, e)
}

func (m *mockAuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	if m.ListFn == nil {
		panic("unexpected call to mockAuditRepo.List")
	}
	return m.ListFn(ctx, filter)
}
