// Package ui renders read-only HTML pages over the column change history
// and the operation audit log.
package ui

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	gomponents "maragu.dev/gomponents"

	"flexidb/internal/domain"
)

// SchemaReader is the schema surface the pages read.
type SchemaReader interface {
	GetColumns(ctx context.Context, req domain.GetColumnsRequest) (*domain.ColumnsResult, error)
	History(ctx context.Context, req domain.ColumnHistoryRequest) (*domain.HistoryPage, error)
}

// AuditLister lists operation audit entries.
type AuditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error)
}

type Handler struct {
	Schema SchemaReader
	Audit  AuditLister
}

func NewHandler(schema SchemaReader, audit AuditLister) *Handler {
	return &Handler{Schema: schema, Audit: audit}
}

// Routes returns the UI router, meant to be mounted at /ui.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/history", http.StatusSeeOther)
	})
	r.Get("/history", h.History)
	r.Get("/audit", h.AuditLog)
	return r
}

// pageFromRequest reads page/limit, clamping bad values instead of failing.
func pageFromRequest(r *http.Request, defaultLimit int) domain.PageRequest {
	p := domain.PageRequest{Page: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, domain.MaxPageLimit)
	}
	return p
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func principalFromContext(ctx context.Context) domain.ContextPrincipal {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.ContextPrincipal{Name: domain.AnonymousPrincipal, Source: "anonymous"}
	}
	return p
}
