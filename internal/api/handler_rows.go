package api

import (
	"fmt"
	"net/http"

	"flexidb/internal/domain"
)

const invalidCondition = "Invalid condition: expected a JSON object."

// CreateRows handles POST /v1/rows/create. data is one object or a list.
func (h *Handler) CreateRows(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rows, err := body.rows("data")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.rows.InsertRows(r.Context(), domain.InsertRowsRequest{
		Database: body.text("database"),
		Table:    body.text("table"),
		Rows:     rows,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Row(s) inserted successfully.", field{"inserted", res.Inserted})
}

// GetRows handles GET /v1/rows/get. condition is a JSON object in the
// query string.
func (h *Handler) GetRows(w http.ResponseWriter, r *http.Request) {
	var table, database, column, condition *string
	var page, limit *int
	if err := bindQuery(r,
		queryParam{"table", &table},
		queryParam{"database", &database},
		queryParam{"column", &column},
		queryParam{"condition", &condition},
		queryParam{"page", &page},
		queryParam{"limit", &limit},
	); err != nil {
		h.writeError(w, r, err)
		return
	}
	var filter map[string]any
	if condition != nil {
		var err error
		filter, err = payload{"condition": *condition}.object("condition", invalidCondition)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	h.getRows(w, r, domain.GetRowsRequest{
		Database:  deref(database),
		Table:     deref(table),
		Column:    deref(column),
		Condition: filter,
		Page:      domain.NewPageRequest(page, limit),
	})
}

// QueryRows handles POST /v1/rows/get, the body form of GetRows.
func (h *Handler) QueryRows(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter, err := body.object("condition", invalidCondition)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := body.integer("page", "Invalid pagination parameters.")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := body.integer("limit", "Invalid pagination parameters.")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.getRows(w, r, domain.GetRowsRequest{
		Database:  body.text("database"),
		Table:     body.text("table"),
		Column:    body.text("column"),
		Condition: filter,
		Page:      domain.NewPageRequest(page, limit),
	})
}

func (h *Handler) getRows(w http.ResponseWriter, r *http.Request, req domain.GetRowsRequest) {
	res, err := h.rows.GetRows(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Data retrieved successfully.",
		field{"data", res.Rows},
		field{"pagination", res.Pagination})
}

// UpdateRows handles POST /v1/rows/update.
func (h *Handler) UpdateRows(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data, err := body.object("data", "Data to update must be an object.")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	where, err := body.object("where", "Where must be an object.")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.rows.UpdateRows(r.Context(), domain.UpdateRowsRequest{
		Database: body.text("database"),
		Table:    body.text("table"),
		Data:     data,
		Where:    where,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Record updated successfully.", field{"affected_rows", res.Affected})
}

// DeleteRows handles POST /v1/rows/delete.
func (h *Handler) DeleteRows(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	values, err := body.list("values", "Values must be a non-empty array.")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := body.integer("limit", "Invalid limit.")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.rows.DeleteRows(r.Context(), domain.DeleteRowsRequest{
		Database: body.text("database"),
		Table:    body.text("table"),
		Column:   body.text("column"),
		Values:   values,
		Limit:    limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("Successfully deleted and logged %d row(s).", res.DeletedCount),
		field{"table", res.Table},
		field{"log_table", res.LogTable},
		field{"deleted_count", res.DeletedCount})
}
