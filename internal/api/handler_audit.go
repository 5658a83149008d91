package api

import (
	"net/http"

	"flexidb/internal/domain"
)

// ListAuditLogs handles GET /v1/audit-logs.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	var action, status, table *string
	var page, limit *int
	if err := bindQuery(r,
		queryParam{"action", &action},
		queryParam{"status", &status},
		queryParam{"table", &table},
		queryParam{"page", &page},
		queryParam{"limit", &limit},
	); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.audit.List(r.Context(), domain.AuditFilter{
		Action: action,
		Status: status,
		Table:  table,
		Page:   domain.NewPageRequest(page, limit),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries := res.Entries
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeOK(w, http.StatusOK, "Audit logs retrieved successfully.",
		field{"audit_logs", entries},
		field{"pagination", res.Pagination})
}
