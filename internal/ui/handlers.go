package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"flexidb/internal/domain"
)

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := historyPageData{
		Database: strings.TrimSpace(q.Get("database")),
		Table:    strings.TrimSpace(q.Get("table")),
	}
	principal := principalFromContext(r.Context())
	if data.Table == "" {
		renderHTML(w, http.StatusOK, historyPage(principal, data))
		return
	}

	cols, err := h.Schema.GetColumns(r.Context(), domain.GetColumnsRequest{Database: data.Database, Table: data.Table})
	if err != nil {
		var notFound *domain.NotFoundError
		// Dropped tables keep their history.
		if !errors.As(err, &notFound) {
			h.renderServiceError(w, err)
			return
		}
	}
	data.Columns = cols

	history, err := h.Schema.History(r.Context(), domain.ColumnHistoryRequest{
		Database: data.Database,
		Table:    data.Table,
		Page:     pageFromRequest(r, domain.DefaultPageLimit),
	})
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	data.History = history
	renderHTML(w, http.StatusOK, historyPage(principal, data))
}

func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{Page: pageFromRequest(r, 50)}
	kept := url.Values{}
	for key, dest := range map[string]**string{"action": &filter.Action, "status": &filter.Status, "table": &filter.Table} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			*dest = &v
			kept.Set(key, v)
		}
	}

	page, err := h.Audit.List(r.Context(), filter)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, auditPage(principalFromContext(r.Context()), kept, page))
}

func (h *Handler) renderServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	} else if errors.As(err, &validation) {
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	}

	renderHTML(w, status, errorPage(title, message))
}
