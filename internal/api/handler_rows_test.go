package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexidb/internal/domain"
)

func TestCreateRows(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		var got domain.InsertRowsRequest
		srv := newTestServer(t, testServices{rows: &mockRowService{
			InsertRowsFn: func(_ context.Context, req domain.InsertRowsRequest) (*domain.InsertResult, error) {
				got = req
				return &domain.InsertResult{Inserted: len(req.Rows)}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/create",
			`{"table":"products","data":{"sku":"F-6","qty":12345678901234}}`)

		require.Equal(t, http.StatusCreated, resp.code, resp.raw)
		assert.Equal(t, `{"status":true,"message":"Row(s) inserted successfully.","inserted":1}`, resp.raw)
		require.Len(t, got.Rows, 1)
		assert.Equal(t, "F-6", got.Rows[0]["sku"])
		assert.Equal(t, json.Number("12345678901234"), got.Rows[0]["qty"])
	})

	t.Run("list of objects", func(t *testing.T) {
		var got domain.InsertRowsRequest
		srv := newTestServer(t, testServices{rows: &mockRowService{
			InsertRowsFn: func(_ context.Context, req domain.InsertRowsRequest) (*domain.InsertResult, error) {
				got = req
				return &domain.InsertResult{Inserted: len(req.Rows)}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/create",
			`{"table":"products","database":"inventory","data":[{"sku":"F-6"},{"sku":"G-7"}]}`)

		require.Equal(t, http.StatusCreated, resp.code, resp.raw)
		assert.Len(t, got.Rows, 2)
		assert.Equal(t, "inventory", got.Database)
		assert.InDelta(t, 2, resp.body["inserted"], 0)
	})

	t.Run("bad data shapes", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		for body, want := range map[string]string{
			`{"table":"products","data":"sku"}`:         "Data must be a non-empty array.",
			`{"table":"products","data":[]}`:            "Data must be a non-empty array.",
			`{"table":"products","data":{}}`:            "Data must be a non-empty array.",
			`{"table":"products","data":[{"a":1},"b"]}`: "Row 2 must be a non-empty object.",
		} {
			resp := doRequest(t, srv, http.MethodPost, "/v1/rows/create", body)
			assert.Equal(t, http.StatusBadRequest, resp.code, body)
			assert.Equal(t, want, resp.body["message"], body)
		}
	})

	t.Run("validation from service", func(t *testing.T) {
		srv := newTestServer(t, testServices{rows: &mockRowService{
			InsertRowsFn: func(_ context.Context, _ domain.InsertRowsRequest) (*domain.InsertResult, error) {
				return nil, domain.ErrValidation("Column `sku` exceeds max length of 8.")
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/create",
			`{"table":"products","data":{"sku":"TOO-LONG-SKU"}}`)

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Column `sku` exceeds max length of 8.", resp.body["message"])
	})
}

func orderedRow(kv ...any) *domain.Row {
	row := domain.NewRow(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		row.Set(kv[i].(string), kv[i+1])
	}
	return row
}

func TestGetRows(t *testing.T) {
	t.Run("query string with condition", func(t *testing.T) {
		var got domain.GetRowsRequest
		srv := newTestServer(t, testServices{rows: &mockRowService{
			GetRowsFn: func(_ context.Context, req domain.GetRowsRequest) (*domain.RowsPage, error) {
				got = req
				return &domain.RowsPage{
					Rows:       []*domain.Row{orderedRow("sku", "B-2", "id", int64(2))},
					Pagination: domain.NewPagination(req.Page, 1),
				}, nil
			},
		}})

		q := url.Values{}
		q.Set("table", "products")
		q.Set("condition", `{"qty":0}`)
		q.Set("page", "1")
		q.Set("limit", "10")
		resp := doRequest(t, srv, http.MethodGet, "/v1/rows/get?"+q.Encode(), "")

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, domain.PageRequest{Page: 1, Limit: 10}, got.Page)
		assert.Equal(t, map[string]any{"qty": json.Number("0")}, got.Condition)
		assert.Contains(t, resp.raw, `"data":[{"sku":"B-2","id":2}]`)
		assert.Contains(t, resp.raw, `"pagination":{"current_page":1,"limit":10,"total_rows":1,"total_pages":1}`)
	})

	t.Run("defaults", func(t *testing.T) {
		var got domain.GetRowsRequest
		srv := newTestServer(t, testServices{rows: &mockRowService{
			GetRowsFn: func(_ context.Context, req domain.GetRowsRequest) (*domain.RowsPage, error) {
				got = req
				return &domain.RowsPage{Rows: []*domain.Row{}, Pagination: domain.NewPagination(req.Page, 0)}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodGet, "/v1/rows/get?table=products&column=sku", "")

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, domain.PageRequest{Page: 1, Limit: domain.DefaultPageLimit}, got.Page)
		assert.Equal(t, "sku", got.Column)
		assert.Nil(t, got.Condition)
		assert.Equal(t, []any{}, resp.body["data"])
	})

	t.Run("invalid condition", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodGet, "/v1/rows/get?table=products&condition=%5B1%5D", "")

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Invalid condition: expected a JSON object.", resp.body["message"])
	})

	t.Run("post body", func(t *testing.T) {
		var got domain.GetRowsRequest
		srv := newTestServer(t, testServices{rows: &mockRowService{
			GetRowsFn: func(_ context.Context, req domain.GetRowsRequest) (*domain.RowsPage, error) {
				got = req
				return &domain.RowsPage{Rows: []*domain.Row{}, Pagination: domain.NewPagination(req.Page, 0)}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/get",
			`{"table":"products","condition":{"sku":"A-1","name":null},"page":"3","limit":2}`)

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, domain.PageRequest{Page: 3, Limit: 2}, got.Page)
		assert.Equal(t, map[string]any{"sku": "A-1", "name": nil}, got.Condition)
	})

	t.Run("post condition as string", func(t *testing.T) {
		var got domain.GetRowsRequest
		srv := newTestServer(t, testServices{rows: &mockRowService{
			GetRowsFn: func(_ context.Context, req domain.GetRowsRequest) (*domain.RowsPage, error) {
				got = req
				return &domain.RowsPage{Rows: []*domain.Row{}, Pagination: domain.NewPagination(req.Page, 0)}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/get",
			`{"table":"products","condition":"{\"sku\":\"A-1\"}"}`)

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, map[string]any{"sku": "A-1"}, got.Condition)
	})

	t.Run("post invalid page", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/get", `{"table":"products","page":1.5}`)

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Invalid pagination parameters.", resp.body["message"])
	})
}

func TestUpdateRows(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got domain.UpdateRowsRequest
		srv := newTestServer(t, testServices{rows: &mockRowService{
			UpdateRowsFn: func(_ context.Context, req domain.UpdateRowsRequest) (*domain.UpdateResult, error) {
				got = req
				return &domain.UpdateResult{Affected: 1}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/update",
			`{"table":"products","data":{"qty":7},"where":{"sku":"A-1"}}`)

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t, "Record updated successfully.", resp.body["message"])
		assert.InDelta(t, 1, resp.body["affected_rows"], 0)
		assert.Equal(t, map[string]any{"qty": json.Number("7")}, got.Data)
		assert.Equal(t, map[string]any{"sku": "A-1"}, got.Where)
	})

	t.Run("not found", func(t *testing.T) {
		srv := newTestServer(t, testServices{rows: &mockRowService{
			UpdateRowsFn: func(_ context.Context, _ domain.UpdateRowsRequest) (*domain.UpdateResult, error) {
				return nil, domain.ErrNotFound("Record to update not found.")
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/update",
			`{"table":"products","data":{"qty":7},"where":{"sku":"Z-9"}}`)

		assert.Equal(t, http.StatusNotFound, resp.code)
		assert.Equal(t, "Record to update not found.", resp.body["message"])
	})

	t.Run("where must be an object", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/update",
			`{"table":"products","data":{"qty":7},"where":[1]}`)

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Where must be an object.", resp.body["message"])
	})
}

func TestDeleteRows(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got domain.DeleteRowsRequest
		srv := newTestServer(t, testServices{rows: &mockRowService{
			DeleteRowsFn: func(_ context.Context, req domain.DeleteRowsRequest) (*domain.DeleteResult, error) {
				got = req
				return &domain.DeleteResult{Table: "products", LogTable: "deleted_products", DeletedCount: 2}, nil
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/delete",
			`{"table":"products","column":"sku","values":["A-1","B-2"],"limit":"10"}`)

		require.Equal(t, http.StatusOK, resp.code, resp.raw)
		assert.Equal(t,
			`{"status":true,"message":"Successfully deleted and logged 2 row(s).","table":"products","log_table":"deleted_products","deleted_count":2}`,
			resp.raw)
		assert.Equal(t, []any{"A-1", "B-2"}, got.Values)
		require.NotNil(t, got.Limit)
		assert.Equal(t, 10, *got.Limit)
	})

	t.Run("values must be a list", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/delete",
			`{"table":"products","column":"sku","values":"A-1"}`)

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Values must be a non-empty array.", resp.body["message"])
	})

	t.Run("invalid limit", func(t *testing.T) {
		srv := newTestServer(t, testServices{})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/delete",
			`{"table":"products","column":"sku","values":["A-1"],"limit":"lots"}`)

		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, "Invalid limit.", resp.body["message"])
	})

	t.Run("mismatch is a policy failure", func(t *testing.T) {
		srv := newTestServer(t, testServices{rows: &mockRowService{
			DeleteRowsFn: func(_ context.Context, _ domain.DeleteRowsRequest) (*domain.DeleteResult, error) {
				return nil, domain.ErrPolicy("Mismatch after deletion. Aborting to prevent data loss.")
			},
		}})

		resp := doRequest(t, srv, http.MethodPost, "/v1/rows/delete",
			`{"table":"products","column":"sku","values":["A-1"]}`)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.code)
		assert.Equal(t, "Mismatch after deletion. Aborting to prevent data loss.", resp.body["message"])
	})
}

func TestListAuditLogs(t *testing.T) {
	var got domain.AuditFilter
	srv := newTestServer(t, testServices{audit: &mockAuditService{
		ListFn: func(_ context.Context, filter domain.AuditFilter) (*domain.AuditPage, error) {
			got = filter
			return &domain.AuditPage{
				Entries: []domain.AuditEntry{{
					ID: "a-1", PrincipalName: "anonymous", Action: domain.ActionDeleteRows,
					Table: "products", Status: domain.AuditStatusSuccess,
				}},
				Pagination: domain.NewPagination(filter.Page, 1),
			}, nil
		},
	}})

	resp := doRequest(t, srv, http.MethodGet, "/v1/audit-logs?action=DELETE_ROWS&status=SUCCESS&limit=5", "")

	require.Equal(t, http.StatusOK, resp.code, resp.raw)
	assert.Equal(t, strPtr("DELETE_ROWS"), got.Action)
	assert.Equal(t, strPtr("SUCCESS"), got.Status)
	assert.Nil(t, got.Table)
	assert.Equal(t, domain.PageRequest{Page: 1, Limit: 5}, got.Page)
	logs, ok := resp.body["audit_logs"].([]any)
	require.True(t, ok)
	require.Len(t, logs, 1)
	assert.Equal(t, "a-1", logs[0].(map[string]any)["id"])
}
