package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexidb/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestCreateColumn(t *testing.T) {
	t.Run("defaults and loose flags", func(t *testing.T) {
		var got domain.AddColumnRequest
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			AddColumnFn: func(_ context.Context, req domain.AddColumnRequest) error {
				got = req
				return nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/create",
			`{"table":"users","column_name":"age","column_type":"INT","default":0,"unique":"1","comment":"years"}`)

		require.Equal(t, http.StatusCreated, resp.code, resp.raw)
		assert.Equal(t, `{"status":true,"message":"Column `+"`age`"+` added successfully to `+"`users`"+`."}`, resp.raw)
		assert.Equal(t, "users", got.Table)
		assert.Equal(t, "age", got.Column)
		assert.Equal(t, "INT", got.Type)
		assert.True(t, got.Nullable)
		assert.True(t, got.Unique)
		assert.False(t, got.Index)
		assert.False(t, got.AutoIncrement)
		assert.Equal(t, strPtr("0"), got.Default)
		assert.Equal(t, "years", got.Comment)
		assert.Empty(t, got.Database)
	})

	t.Run("null default means none", func(t *testing.T) {
		var got domain.AddColumnRequest
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			AddColumnFn: func(_ context.Context, req domain.AddColumnRequest) error {
				got = req
				return nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/create",
			`{"database":"shop","table":"users","column_name":"nick","column_type":"VARCHAR(20)","default":null,"is_nullable":false}`)

		require.Equal(t, http.StatusCreated, resp.code, resp.raw)
		assert.Nil(t, got.Default)
		assert.False(t, got.Nullable)
		assert.Equal(t, "shop", got.Database)
	})

	t.Run("invalid flag", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/create",
			`{"table":"users","column_name":"age","column_type":"INT","unique":"maybe"}`)

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Invalid value for `unique`.", resp.body["message"])
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/create", `{"table":`)

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Invalid JSON input.", resp.body["message"])
	})

	t.Run("body must be an object", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/create", `["users"]`)

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Invalid JSON input.", resp.body["message"])
	})

	t.Run("conflict", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			AddColumnFn: func(_ context.Context, _ domain.AddColumnRequest) error {
				return domain.ErrConflict("Column `age` already exists in `users`.")
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/create",
			`{"table":"users","column_name":"age","column_type":"INT"}`)

		assert.Equal(t, http.StatusConflict, resp.code)
		assert.Equal(t, false, resp.body["status"])
		assert.Equal(t, "Column `age` already exists in `users`.", resp.body["message"])
	})
}

func TestUpdateColumn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got domain.ModifyColumnRequest
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			ModifyColumnFn: func(_ context.Context, req domain.ModifyColumnRequest) error {
				got = req
				return nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/update",
			`{"table":"users","column_name":"name","new_type":"TEXT","new_name":"full_name","is_nullable":0,"unique":true,"default":"n/a"}`)

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, "Column structure and uniqueness updated successfully.", resp.body["message"])
		assert.Equal(t, "full_name", got.NewName)
		assert.Equal(t, "TEXT", got.NewType)
		assert.False(t, got.Nullable)
		assert.True(t, got.Unique)
		assert.Equal(t, strPtr("n/a"), got.Default)
	})

	t.Run("unsafe conversion", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			ModifyColumnFn: func(_ context.Context, _ domain.ModifyColumnRequest) error {
				return domain.ErrPolicy("Unsafe type conversion from `text` to `int`.")
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/update",
			`{"table":"users","column_name":"name","new_type":"INT"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.code)
		assert.Equal(t, "Unsafe type conversion from `text` to `int`.", resp.body["message"])
	})
}

func TestDeleteColumn(t *testing.T) {
	t.Run("returns backup", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			DropColumnFn: func(_ context.Context, req domain.DropColumnRequest) (*domain.DropColumnResult, error) {
				assert.Equal(t, "users", req.Table)
				assert.Equal(t, "notes", req.Column)
				return &domain.DropColumnResult{
					Table:  "users",
					Column: "notes",
					Backup: &domain.BackupArtifact{Name: "shop/users_structure_backup_20260314_092653.sql", Location: "/backups", Size: 120},
				}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/delete", `{"table":"users","column_name":"notes"}`)

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, "Column `notes` deleted successfully.", resp.body["message"])
		backup, ok := resp.body["backup"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "shop/users_structure_backup_20260314_092653.sql", backup["name"])
	})

	t.Run("foreign key refusal", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			DropColumnFn: func(_ context.Context, _ domain.DropColumnRequest) (*domain.DropColumnResult, error) {
				return nil, domain.ErrPolicy("Column `id` is part of a foreign key.")
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/columns/delete", `{"table":"users","column_name":"id"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.code)
	})
}

func TestGetColumns(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			GetColumnsFn: func(_ context.Context, req domain.GetColumnsRequest) (*domain.ColumnsResult, error) {
				assert.Equal(t, "shop", req.Database)
				return &domain.ColumnsResult{
					Database: "shop",
					Table:    req.Table,
					Columns: []domain.ColumnDescriptor{
						{Name: "id", Type: "int", Key: "PRI"},
						{Name: "name", Type: "varchar(50)", Nullable: true},
					},
				}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/get?table=users&database=shop", "")

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, "Columns retrieved successfully.", resp.body["message"])
		assert.Equal(t, "users", resp.body["table"])
		cols, ok := resp.body["columns"].([]any)
		require.True(t, ok)
		require.Len(t, cols, 2)
		assert.Equal(t, "id", cols[0].(map[string]any)["name"])
	})

	t.Run("missing table", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			GetColumnsFn: func(_ context.Context, _ domain.GetColumnsRequest) (*domain.ColumnsResult, error) {
				return nil, domain.ErrNotFound("Table `ghost` does not exist in database `shop`.")
			},
		}})

		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/get?table=ghost", "")

		assert.Equal(t, http.StatusNotFound, resp.code)
		assert.Equal(t, "Table `ghost` does not exist in database `shop`.", resp.body["message"])
	})
}

func TestColumnHistory(t *testing.T) {
	t.Run("pagination forwarded", func(t *testing.T) {
		var got domain.ColumnHistoryRequest
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			HistoryFn: func(_ context.Context, req domain.ColumnHistoryRequest) (*domain.HistoryPage, error) {
				got = req
				return &domain.HistoryPage{
					Records: []domain.ColumnChangeRecord{{
						ID: 7, Table: "users", Column: "age", Action: domain.ActionAdd,
						ChangedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
					}},
					Pagination: domain.NewPagination(req.Page, 11),
				}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/history?table=users&page=2&limit=5", "")

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, domain.PageRequest{Page: 2, Limit: 5}, got.Page)
		history, ok := resp.body["history"].([]any)
		require.True(t, ok)
		assert.Len(t, history, 1)
		pagination := resp.body["pagination"].(map[string]any)
		assert.InDelta(t, 3, pagination["total_pages"], 0)
	})

	t.Run("empty history is a list", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			HistoryFn: func(_ context.Context, req domain.ColumnHistoryRequest) (*domain.HistoryPage, error) {
				return &domain.HistoryPage{Pagination: domain.NewPagination(req.Page, 0)}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/history?table=users", "")

		require.Equal(t, http.StatusOK, resp.code)
		assert.Equal(t, []any{}, resp.body["history"])
	})

	t.Run("non-numeric page", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/history?table=users&page=abc", "")

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Invalid pagination parameters.", resp.body["message"])
	})
}
