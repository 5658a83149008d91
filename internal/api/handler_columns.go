package api

import (
	"fmt"
	"net/http"

	"flexidb/internal/domain"
)

// CreateColumn handles POST /v1/columns/create.
func (h *Handler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req := domain.AddColumnRequest{
		Database: body.text("database"),
		Table:    body.text("table"),
		Column:   body.text("column_name"),
		Type:     body.text("column_type"),
		Default:  body.optionalText("default"),
		Comment:  body.text("comment"),
	}
	if req.Nullable, err = body.flag("is_nullable", true); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.AutoIncrement, err = body.flag("auto_increment", false); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Unique, err = body.flag("unique", false); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Index, err = body.flag("index", false); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.schema.AddColumn(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, fmt.Sprintf("Column `%s` added successfully to `%s`.", req.Column, req.Table))
}

// UpdateColumn handles POST /v1/columns/update.
func (h *Handler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req := domain.ModifyColumnRequest{
		Database: body.text("database"),
		Table:    body.text("table"),
		Column:   body.text("column_name"),
		NewType:  body.text("new_type"),
		NewName:  body.text("new_name"),
		Default:  body.optionalText("default"),
		Comment:  body.text("comment"),
	}
	if req.Nullable, err = body.flag("is_nullable", true); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Unique, err = body.flag("unique", false); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.schema.ModifyColumn(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Column structure and uniqueness updated successfully.")
}

// DeleteColumn handles POST /v1/columns/delete.
func (h *Handler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.schema.DropColumn(r.Context(), domain.DropColumnRequest{
		Database: body.text("database"),
		Table:    body.text("table"),
		Column:   body.text("column_name"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("Column `%s` deleted successfully.", res.Column),
		field{"backup", res.Backup})
}

// GetColumns handles GET /v1/columns/get.
func (h *Handler) GetColumns(w http.ResponseWriter, r *http.Request) {
	var table, database *string
	if err := bindQuery(r, queryParam{"table", &table}, queryParam{"database", &database}); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.schema.GetColumns(r.Context(), domain.GetColumnsRequest{
		Database: deref(database),
		Table:    deref(table),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Columns retrieved successfully.",
		field{"database", res.Database},
		field{"table", res.Table},
		field{"columns", res.Columns})
}

// ColumnHistory handles GET /v1/columns/history.
func (h *Handler) ColumnHistory(w http.ResponseWriter, r *http.Request) {
	var table, database *string
	var page, limit *int
	if err := bindQuery(r,
		queryParam{"table", &table},
		queryParam{"database", &database},
		queryParam{"page", &page},
		queryParam{"limit", &limit},
	); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.schema.History(r.Context(), domain.ColumnHistoryRequest{
		Database: deref(database),
		Table:    deref(table),
		Page:     domain.NewPageRequest(page, limit),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records := res.Records
	if records == nil {
		records = []domain.ColumnChangeRecord{}
	}
	writeOK(w, http.StatusOK, "History retrieved successfully.",
		field{"history", records},
		field{"pagination", res.Pagination})
}
