package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexidb/internal/domain"
)

type testServices struct {
	schema *mockSchemaService
	rows   *mockRowService
	audit  *mockAuditService
	redact bool
}

func newTestServer(t *testing.T, svc testServices) *httptest.Server {
	t.Helper()
	if svc.schema == nil {
		svc.schema = &mockSchemaService{}
	}
	if svc.rows == nil {
		svc.rows = &mockRowService{}
	}
	if svc.audit == nil {
		svc.audit = &mockAuditService{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	doc, err := LoadOpenAPI(context.Background())
	require.NoError(t, err)

	h := NewHandler(svc.schema, svc.rows, svc.audit, logger, svc.redact)
	srv := httptest.NewServer(NewRouter(context.Background(), h, doc, RouterConfig{Logger: logger}))
	t.Cleanup(srv.Close)
	return srv
}

type response struct {
	code int
	raw  string
	body map[string]any
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, body string) response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := response{code: resp.StatusCode, raw: string(raw)}
	if len(bytes.TrimSpace(raw)) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func TestEnvelope_OrderedMembers(t *testing.T) {
	body, err := json.Marshal(envelope{
		status:  true,
		message: "done",
		extra:   []field{{"zeta", 1}, {"alpha", []string{"a"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"status":true,"message":"done","zeta":1,"alpha":["a"]}`, string(body))
}

func TestHTTPStatusFromDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.ErrValidation("bad"), http.StatusBadRequest},
		{"not found", domain.ErrNotFound("missing"), http.StatusNotFound},
		{"conflict", domain.ErrConflict("exists"), http.StatusConflict},
		{"policy", domain.ErrPolicy("unsafe"), http.StatusUnprocessableEntity},
		{"store", domain.ErrStore(assert.AnError, "Failed."), http.StatusInternalServerError},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatusFromDomainError(tt.err))
		})
	}
}

func TestRouter_SystemEndpoints(t *testing.T) {
	srv := newTestServer(t, testServices{})

	t.Run("healthz", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, resp.code)
		assert.Equal(t, true, resp.body["status"])
	})

	t.Run("openapi", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodGet, "/openapi.json", "")
		require.Equal(t, http.StatusOK, resp.code)
		paths, ok := resp.body["paths"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, paths, "/v1/rows/delete")
	})

	t.Run("unknown route", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodGet, "/v1/nope", "")
		assert.Equal(t, http.StatusNotFound, resp.code)
		assert.Equal(t, false, resp.body["status"])
		assert.Equal(t, "Endpoint not found.", resp.body["message"])
	})

	t.Run("wrong method", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/create", "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.code)
		assert.Equal(t, "Method not allowed.", resp.body["message"])
	})
}

func TestRouter_RequestIDHeader(t *testing.T) {
	srv := newTestServer(t, testServices{})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "trace-123")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "trace-123", resp.Header.Get("X-Request-ID"))
}

func TestWriteError_StoreErrorDetail(t *testing.T) {
	failing := func() *mockSchemaService {
		return &mockSchemaService{
			GetColumnsFn: func(_ context.Context, _ domain.GetColumnsRequest) (*domain.ColumnsResult, error) {
				return nil, domain.ErrStore(assert.AnError, "Database connection failed.")
			},
		}
	}

	t.Run("detail shown", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: failing()})
		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/get?table=users", "")
		assert.Equal(t, http.StatusInternalServerError, resp.code)
		assert.Equal(t, "Database connection failed.", resp.body["message"])
		assert.Equal(t, assert.AnError.Error(), resp.body["error"])
	})

	t.Run("detail redacted", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: failing(), redact: true})
		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/get?table=users", "")
		assert.Equal(t, http.StatusInternalServerError, resp.code)
		assert.Equal(t, "Database connection failed.", resp.body["message"])
		assert.NotContains(t, resp.body, "error")
	})

	t.Run("validation has no detail", func(t *testing.T) {
		srv := newTestServer(t, testServices{schema: &mockSchemaService{
			GetColumnsFn: func(_ context.Context, _ domain.GetColumnsRequest) (*domain.ColumnsResult, error) {
				return nil, domain.ErrValidation("Invalid table name.")
			},
		}})
		resp := doRequest(t, srv, http.MethodGet, "/v1/columns/get?table=bad-name", "")
		assert.Equal(t, http.StatusBadRequest, resp.code)
		assert.Equal(t, `{"status":false,"message":"Invalid table name."}`, resp.raw)
	})
}

func TestLoadOpenAPI_DocumentsEveryRoute(t *testing.T) {
	doc, err := LoadOpenAPI(context.Background())
	require.NoError(t, err)

	routes := map[string][]string{
		"/healthz":            {http.MethodGet},
		"/v1/columns/create":  {http.MethodPost},
		"/v1/columns/update":  {http.MethodPost},
		"/v1/columns/delete":  {http.MethodPost},
		"/v1/columns/get":     {http.MethodGet},
		"/v1/columns/history": {http.MethodGet},
		"/v1/rows/create":     {http.MethodPost},
		"/v1/rows/get":        {http.MethodGet, http.MethodPost},
		"/v1/rows/update":     {http.MethodPost},
		"/v1/rows/delete":     {http.MethodPost},
		"/v1/audit-logs":      {http.MethodGet},
	}
	for path, methods := range routes {
		item := doc.Paths.Find(path)
		require.NotNil(t, item, path)
		for _, m := range methods {
			assert.NotNil(t, item.GetOperation(m), "%s %s", m, path)
		}
	}
}
