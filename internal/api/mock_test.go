package api

import (
	"context"

	"flexidb/internal/domain"
)

type mockSchemaService struct {
	AddColumnFn    func(ctx context.Context, req domain.AddColumnRequest) error
	ModifyColumnFn func(ctx context.Context, req domain.ModifyColumnRequest) error
	DropColumnFn   func(ctx context.Context, req domain.DropColumnRequest) (*domain.DropColumnResult, error)
	GetColumnsFn   func(ctx context.Context, req domain.GetColumnsRequest) (*domain.ColumnsResult, error)
	HistoryFn      func(ctx context.Context, req domain.ColumnHistoryRequest) (*domain.HistoryPage, error)
}

func (m *mockSchemaService) AddColumn(ctx context.Context, req domain.AddColumnRequest) error {
	if m.AddColumnFn == nil {
		panic("unexpected call to mockSchemaService.AddColumn")
	}
	return m.AddColumnFn(ctx, req)
}

func (m *mockSchemaService) ModifyColumn(ctx context.Context, req domain.ModifyColumnRequest) error {
	if m.ModifyColumnFn == nil {
		panic("unexpected call to mockSchemaService.ModifyColumn")
	}
	return m.ModifyColumnFn(ctx, req)
}

func (m *mockSchemaService) DropColumn(ctx context.Context, req domain.DropColumnRequest) (*domain.DropColumnResult, error) {
	if m.DropColumnFn == nil {
		panic("unexpected call to mockSchemaService.DropColumn")
	}
	return m.DropColumnFn(ctx, req)
}

func (m *mockSchemaService) GetColumns(ctx context.Context, req domain.GetColumnsRequest) (*domain.ColumnsResult, error) {
	if m.GetColumnsFn == nil {
		panic("unexpected call to mockSchemaService.GetColumns")
	}
	return m.GetColumnsFn(ctx, req)
}

func (m *mockSchemaService) History(ctx context.Context, req domain.ColumnHistoryRequest) (*domain.HistoryPage, error) {
	if m.HistoryFn == nil {
		panic("unexpected call to mockSchemaService.History")
	}
	return m.HistoryFn(ctx, req)
}

type mockRowService struct {
	InsertRowsFn func(ctx context.Context, req domain.InsertRowsRequest) (*domain.InsertResult, error)
	GetRowsFn    func(ctx context.Context, req domain.GetRowsRequest) (*domain.RowsPage, error)
	UpdateRowsFn func(ctx context.Context, req domain.UpdateRowsRequest) (*domain.UpdateResult, error)
	DeleteRowsFn func(ctx context.Context, req domain.DeleteRowsRequest) (*domain.DeleteResult, error)
}

func (m *mockRowService) InsertRows(ctx context.Context, req domain.InsertRowsRequest) (*domain.InsertResult, error) {
	if m.InsertRowsFn == nil {
		panic("unexpected call to mockRowService.InsertRows")
	}
	return m.InsertRowsFn(ctx, req)
}

func (m *mockRowService) GetRows(ctx context.Context, req domain.GetRowsRequest) (*domain.RowsPage, error) {
	if m.GetRowsFn == nil {
		panic("unexpected call to mockRowService.GetRows")
	}
	return m.GetRowsFn(ctx, req)
}

func (m *mockRowService) UpdateRows(ctx context.Context, req domain.UpdateRowsRequest) (*domain.UpdateResult, error) {
	if m.UpdateRowsFn == nil {
		panic("unexpected call to mockRowService.UpdateRows")
	}
	return m.UpdateRowsFn(ctx, req)
}

func (m *mockRowService) DeleteRows(ctx context.Context, req domain.DeleteRowsRequest) (*domain.DeleteResult, error) {
	if m.DeleteRowsFn == nil {
		panic("unexpected call to mockRowService.DeleteRows")
	}
	return m.DeleteRowsFn(ctx, req)
}

type mockAuditService struct {
	ListFn func(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error)
}

func (m *mockAuditService) List(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error) {
	if m.ListFn == nil {
		panic("unexpected call to mockAuditService.List")
	}
	return m.ListFn(ctx, filter)
}
