package auditutil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexidb/internal/domain"
)

type captureRepo struct {
	entries []*domain.AuditEntry
	err     error
}

func (c *captureRepo) Insert(_ context.Context, e *domain.AuditEntry) error {
	c.entries = append(c.entries, e)
	return c.err
}

func (c *captureRepo) List(context.Context, domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	panic("unexpected call to captureRepo.List")
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, domain.AuditStatusSuccess},
		{domain.ErrValidation("bad"), domain.AuditStatusRejected},
		{domain.ErrNotFound("missing"), domain.AuditStatusRejected},
		{domain.ErrConflict("exists"), domain.AuditStatusRejected},
		{fmt.Errorf("wrapped: %w", domain.ErrPolicy("refused")), domain.AuditStatusRejected},
		{domain.ErrStore(errors.New("io"), "Failed."), domain.AuditStatusError},
		{errors.New("plain"), domain.AuditStatusError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), "%v", tt.err)
	}
}

func TestRecord_Success(t *testing.T) {
	repo := &captureRepo{}
	ctx := domain.WithPrincipal(context.Background(), domain.ContextPrincipal{Name: "alice", Source: "jwt"})
	ctx = domain.WithRequestID(ctx, "req-9")

	Record(ctx, repo, nil, domain.ActionAddColumn, "shop", "orders", time.Now(), "Column added.", nil)

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Equal(t, "alice", e.PrincipalName)
	assert.Equal(t, domain.ActionAddColumn, e.Action)
	assert.Equal(t, "shop", e.Database)
	assert.Equal(t, "orders", e.Table)
	assert.Equal(t, domain.AuditStatusSuccess, e.Status)
	assert.Equal(t, "Column added.", e.Message)
	assert.Equal(t, "req-9", e.RequestID)
	assert.GreaterOrEqual(t, e.DurationMs, int64(0))
}

func TestRecord_ErrorUsesErrorText(t *testing.T) {
	repo := &captureRepo{err: errors.New("disk full")}

	Record(context.Background(), repo, nil, domain.ActionDeleteRows, "shop", "orders", time.Now(),
		"ignored", domain.ErrPolicy("Aborted: Trying to delete 5 rows, limit is 2."))

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Equal(t, domain.AnonymousPrincipal, e.PrincipalName)
	assert.Equal(t, domain.AuditStatusRejected, e.Status)
	assert.Equal(t, "Aborted: Trying to delete 5 rows, limit is 2.", e.Message)
}

func TestRecord_NilRepo(t *testing.T) {
	assert.NotPanics(t, func() {
		Record(context.Background(), nil, nil, domain.ActionInsertRows, "", "t", time.Now(), "", nil)
	})
}
