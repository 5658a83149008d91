package schema

import (
	"context"
	"errors"

	"flexidb/internal/domain"
)

type mockBackupStore struct {
	putFn func(ctx context.Context, name string, definition []byte) (*domain.BackupArtifact, error)
}

func (m *mockBackupStore) Put(ctx context.Context, name string, definition []byte) (*domain.BackupArtifact, error) {
	if m.putFn == nil {
		panic("unexpected call to mockBackupStore.Put")
	}
	return m.putFn(ctx, name, definition)
}

func (m *mockBackupStore) Backend() string { return "mock" }

func failingBackups() *mockBackupStore {
	return &mockBackupStore{putFn: func(context.Context, string, []byte) (*domain.BackupArtifact, error) {
		return nil, errors.New("bucket unavailable")
	}}
}
