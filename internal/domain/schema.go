package domain

import (
	"strings"
	"time"
)

// ColumnDescriptor describes one live column as reported by the store.
type ColumnDescriptor struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default"`
	Comment  string  `json:"comment"`
	Key      string  `json:"key"`
	Extra    string  `json:"extra"`
}

// HasDefault reports whether the column declares a default value.
func (c ColumnDescriptor) HasDefault() bool { return c.Default != nil }

// TableSchema is a fresh snapshot of a table's columns in declaration order.
type TableSchema struct {
	Table   string
	Columns []ColumnDescriptor
}

// Column returns the descriptor named name (case-insensitive, as in MySQL).
func (s *TableSchema) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// Has reports whether the table has a column named name.
func (s *TableSchema) Has(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// Names returns the column names in declaration order.
func (s *TableSchema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// ColumnDefinition is the requested shape of a column for add/modify.
type ColumnDefinition struct {
	Name          string
	Type          string
	Nullable      bool
	Default       *string
	AutoIncrement bool
	Unique        bool
	Index         bool
	Comment       string
}

// ChangeAction is the kind of structural change recorded in the history.
type ChangeAction string

// Column change actions.
const (
	ActionAdd    ChangeAction = "ADD"
	ActionModify ChangeAction = "MODIFY"
	ActionDrop   ChangeAction = "DROP"
	ActionRename ChangeAction = "RENAME"
)

// ColumnChangeRecord is one append-only entry of column_change_history.
type ColumnChangeRecord struct {
	ID          int64        `json:"id"`
	Database    string       `json:"db_name"`
	Table       string       `json:"table_name"`
	Column      string       `json:"column_name"`
	OldType     *string      `json:"old_type"`
	NewType     *string      `json:"new_type"`
	Action      ChangeAction `json:"action"`
	OldNullable *string      `json:"old_nullability"`
	NewNullable *string      `json:"new_nullability"`
	OldDefault  *string      `json:"old_default"`
	NewDefault  *string      `json:"new_default"`
	OldComment  *string      `json:"old_comment"`
	NewComment  *string      `json:"new_comment"`
	RenamedTo   *string      `json:"renamed_to"`
	ChangedAt   time.Time    `json:"changed_at"`
}

// Nullability renders a nullable flag the way the history table stores it.
func Nullability(nullable bool) string {
	if nullable {
		return "YES"
	}
	return "NO"
}

// DeletedRowRecord is one snapshot row of a deleted_<table> log.
type DeletedRowRecord struct {
	ID        int64     `json:"id"`
	Data      string    `json:"deleted_data"`
	DeletedAt time.Time `json:"deleted_at"`
}
