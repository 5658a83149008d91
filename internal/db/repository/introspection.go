package repository

import (
	"context"

	"flexidb/internal/db"
	"flexidb/internal/domain"
)

// Introspector fetches live table metadata through the handle's dialect.
// Nothing is cached: every call reflects the store at that moment.
type Introspector struct{}

// NewIntrospector returns an Introspector.
func NewIntrospector() *Introspector { return &Introspector{} }

// TableSchema returns the columns of table, or a NotFoundError naming the
// database when the table does not exist.
func (i *Introspector) TableSchema(ctx context.Context, h *db.Handle, table string) (*domain.TableSchema, error) {
	ok, err := h.Dialect.TableExists(ctx, h.Conn, table)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to check table existence.")
	}
	if !ok {
		return nil, domain.ErrNotFound("Table `%s` does not exist in database `%s`.", table, h.Database)
	}
	cols, err := h.Dialect.Columns(ctx, h.Conn, table)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to retrieve columns.")
	}
	return &domain.TableSchema{Table: table, Columns: cols}, nil
}

// ColumnInForeignKey reports whether column takes part in a foreign key.
func (i *Introspector) ColumnInForeignKey(ctx context.Context, h *db.Handle, table, column string) (bool, error) {
	ok, err := h.Dialect.ColumnInForeignKey(ctx, h.Conn, table, column)
	if err != nil {
		return false, domain.ErrStore(err, "Failed to check foreign key constraints.")
	}
	return ok, nil
}

// IndexExists reports whether table has an index named index.
func (i *Introspector) IndexExists(ctx context.Context, h *db.Handle, table, index string) (bool, error) {
	ok, err := h.Dialect.IndexExists(ctx, h.Conn, table, index)
	if err != nil {
		return false, domain.ErrStore(err, "Failed to check index existence.")
	}
	return ok, nil
}

// TableDefinition returns the DDL that recreates table.
func (i *Introspector) TableDefinition(ctx context.Context, h *db.Handle, table string) (string, error) {
	ddl, err := h.Dialect.TableDefinition(ctx, h.Conn, table)
	if err != nil {
		return "", domain.ErrStore(err, "Failed to read table definition.")
	}
	return ddl, nil
}
