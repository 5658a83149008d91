package domain

import (
	"bytes"
	"encoding/json"
)

// Row is a single result row whose keys keep the order of the table's
// columns when encoded as JSON.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow returns an empty row with room for n columns.
func NewRow(n int) *Row {
	return &Row{keys: make([]string, 0, n), values: make(map[string]any, n)}
}

// Set appends or replaces a column value.
func (r *Row) Set(column string, v any) {
	if _, ok := r.values[column]; !ok {
		r.keys = append(r.keys, column)
	}
	r.values[column] = v
}

// Get returns the value of column.
func (r *Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in order.
func (r *Row) Columns() []string { return r.keys }

// Len returns the number of columns in the row.
func (r *Row) Len() int { return len(r.keys) }

// MarshalJSON encodes the row as an object in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
