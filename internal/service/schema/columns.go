package schema

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flexidb/internal/backup"
	"flexidb/internal/db"
	"flexidb/internal/db/dialect"
	"flexidb/internal/ddl"
	"flexidb/internal/domain"
)

// AddColumn adds a column to an existing table. The change record is
// written before the ALTER statement runs.
func (s *Service) AddColumn(ctx context.Context, req domain.AddColumnRequest) (err error) {
	start := time.Now()
	database := req.Database
	defer func() {
		s.record(ctx, domain.ActionAddColumn, database, req.Table, start,
			fmt.Sprintf("added column %s %s", req.Column, ddl.NormalizeColumnType(req.Type)), err)
	}()

	if err := required(field{"table", req.Table}, field{"column_name", req.Column}, field{"column_type", req.Type}); err != nil {
		return err
	}
	if err := validTable(req.Table); err != nil {
		return err
	}
	if err := validColumn(req.Column); err != nil {
		return err
	}
	if err := validType(req.Type); err != nil {
		return err
	}

	h, ts, err := s.schemaFor(ctx, req.Database, req.Table)
	if err != nil {
		return err
	}
	database = h.Database
	if ts.Has(req.Column) {
		return domain.ErrConflict("Column `%s` already exists in table `%s`.", req.Column, req.Table)
	}

	def := domain.ColumnDefinition{
		Name:          req.Column,
		Type:          ddl.NormalizeColumnType(req.Type),
		Nullable:      req.Nullable,
		Default:       req.Default,
		AutoIncrement: req.AutoIncrement,
		Unique:        req.Unique,
		Index:         req.Index,
		Comment:       req.Comment,
	}
	stmts, err := h.Dialect.AddColumn(req.Table, def)
	if err != nil {
		return err
	}

	if err := s.writeChange(ctx, h, &domain.ColumnChangeRecord{
		Database:    h.Database,
		Table:       req.Table,
		Column:      req.Column,
		Action:      domain.ActionAdd,
		NewType:     ptr(def.Type),
		NewNullable: ptr(domain.Nullability(def.Nullable)),
		NewDefault:  def.Default,
		NewComment:  ptr(def.Comment),
	}); err != nil {
		return err
	}

	if err := s.exec(ctx, h, stmts, "Failed to add column."); err != nil {
		return err
	}
	s.logger.Info("column added", "database", h.Database, "table", req.Table, "column", req.Column, "type", def.Type)
	return nil
}

// ModifyColumn changes a column's type, nullability, default and comment,
// optionally renaming it, then reconciles its unique index.
func (s *Service) ModifyColumn(ctx context.Context, req domain.ModifyColumnRequest) (err error) {
	start := time.Now()
	database := req.Database
	defer func() {
		s.record(ctx, domain.ActionModifyColumn, database, req.Table, start,
			fmt.Sprintf("modified column %s to %s", req.Column, ddl.NormalizeColumnType(req.NewType)), err)
	}()

	if err := required(field{"table", req.Table}, field{"column_name", req.Column}, field{"new_type", req.NewType}); err != nil {
		return err
	}
	newName := req.NewName
	if newName == "" {
		newName = req.Column
	}
	if err := validTable(req.Table); err != nil {
		return err
	}
	if err := validColumn(req.Column); err != nil {
		return err
	}
	if err := validColumn(newName); err != nil {
		return err
	}
	if err := validType(req.NewType); err != nil {
		return err
	}

	h, ts, err := s.schemaFor(ctx, req.Database, req.Table)
	if err != nil {
		return err
	}
	database = h.Database
	current, ok := ts.Column(req.Column)
	if !ok {
		return domain.ErrNotFound("Column `%s` does not exist in `%s`.", req.Column, req.Table)
	}
	renamed := !strings.EqualFold(newName, current.Name)
	if renamed && ts.Has(newName) {
		return domain.ErrConflict("Column `%s` already exists in table `%s`.", newName, req.Table)
	}

	newType := ddl.NormalizeColumnType(req.NewType)
	if !ddl.IsSafeTypeConversion(current.Type, newType) {
		return domain.ErrPolicy("Unsafe type conversion from `%s` to `%s`.", strings.ToUpper(current.Type), newType)
	}
	if ddl.TruncationRisk(current.Type, newType) {
		return domain.ErrPolicy("New type length may truncate existing data. Reduce size cautiously.")
	}

	def := domain.ColumnDefinition{
		Name:     newName,
		Type:     newType,
		Nullable: req.Nullable,
		Default:  req.Default,
		Unique:   req.Unique,
		Comment:  req.Comment,
	}
	stmts, err := h.Dialect.ModifyColumn(req.Table, current, def)
	if err != nil {
		return err
	}

	rec := &domain.ColumnChangeRecord{
		Database:    h.Database,
		Table:       req.Table,
		Column:      current.Name,
		Action:      domain.ActionModify,
		OldType:     ptr(current.Type),
		NewType:     ptr(newType),
		OldNullable: ptr(domain.Nullability(current.Nullable)),
		NewNullable: ptr(domain.Nullability(req.Nullable)),
		OldDefault:  current.Default,
		NewDefault:  req.Default,
		OldComment:  ptr(current.Comment),
		NewComment:  ptr(req.Comment),
	}
	if renamed {
		rec.RenamedTo = ptr(newName)
	}
	if err := s.writeChange(ctx, h, rec); err != nil {
		return err
	}

	if err := s.exec(ctx, h, stmts, "Failed to modify column."); err != nil {
		return err
	}
	if err := s.reconcileUnique(ctx, h, req.Table, current.Name, newName, req.Unique); err != nil {
		return err
	}
	s.logger.Info("column modified", "database", h.Database, "table", req.Table,
		"column", current.Name, "new_name", newName, "type", newType)
	return nil
}

// reconcileUnique brings uniq_<table>_<column> in line with want. The
// existing index is looked up under the old column name; on a rename it is
// dropped and, when still wanted, recreated under the new name.
func (s *Service) reconcileUnique(ctx context.Context, h *db.Handle, table, oldColumn, newColumn string, want bool) error {
	oldIndex := dialect.UniqueIndexName(table, oldColumn)
	newIndex := dialect.UniqueIndexName(table, newColumn)
	exists, err := s.introspect.IndexExists(ctx, h, table, oldIndex)
	if err != nil {
		return err
	}
	keep := exists && want && strings.EqualFold(oldIndex, newIndex)
	if exists && !keep {
		if err := s.exec(ctx, h, []string{h.Dialect.DropIndex(table, oldIndex)}, "Failed to drop unique constraint."); err != nil {
			return err
		}
	}
	if want && !keep {
		return s.exec(ctx, h, []string{h.Dialect.AddUniqueIndex(table, newIndex, newColumn)}, "Failed to add unique constraint.")
	}
	return nil
}

// DropColumn backs up the table definition and removes the column. Columns
// taking part in a foreign key, on either side, are refused.
func (s *Service) DropColumn(ctx context.Context, req domain.DropColumnRequest) (_ *domain.DropColumnResult, err error) {
	start := time.Now()
	database := req.Database
	defer func() {
		s.record(ctx, domain.ActionDropColumn, database, req.Table, start, "dropped column "+req.Column, err)
	}()

	if err := required(field{"table", req.Table}, field{"column_name", req.Column}); err != nil {
		return nil, err
	}
	if err := validTable(req.Table); err != nil {
		return nil, err
	}
	if err := validColumn(req.Column); err != nil {
		return nil, err
	}

	h, ts, err := s.schemaFor(ctx, req.Database, req.Table)
	if err != nil {
		return nil, err
	}
	database = h.Database
	current, ok := ts.Column(req.Column)
	if !ok {
		return nil, domain.ErrNotFound("Column `%s` does not exist in `%s`.", req.Column, req.Table)
	}

	inFK, err := s.introspect.ColumnInForeignKey(ctx, h, req.Table, current.Name)
	if err != nil {
		return nil, err
	}
	if inFK {
		return nil, domain.ErrPolicy("Cannot delete column `%s`: it's part of a foreign key constraint.", current.Name)
	}

	artifact, err := s.backupTable(ctx, h, req.Table)
	if err != nil {
		return nil, err
	}

	if err := s.writeChange(ctx, h, &domain.ColumnChangeRecord{
		Database:    h.Database,
		Table:       req.Table,
		Column:      current.Name,
		Action:      domain.ActionDrop,
		OldType:     ptr(current.Type),
		OldNullable: ptr(domain.Nullability(current.Nullable)),
		OldDefault:  current.Default,
		OldComment:  ptr(current.Comment),
	}); err != nil {
		return nil, err
	}

	if err := s.exec(ctx, h, []string{h.Dialect.DropColumn(req.Table, current.Name)}, "Failed to delete column."); err != nil {
		return nil, err
	}
	s.logger.Info("column dropped", "database", h.Database, "table", req.Table,
		"column", current.Name, "backup", artifact.Location)
	return &domain.DropColumnResult{Table: req.Table, Column: current.Name, Backup: artifact}, nil
}

func (s *Service) backupTable(ctx context.Context, h *db.Handle, table string) (*domain.BackupArtifact, error) {
	definition, err := s.introspect.TableDefinition(ctx, h, table)
	if err != nil {
		return nil, err
	}
	name := backup.ArtifactName(h.Database, table, s.now())
	artifact, err := s.backups.Put(ctx, name, []byte(definition))
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to back up table structure.")
	}
	if s.catalog != nil {
		if err := s.catalog.Record(ctx, h.Database, table, artifact); err != nil {
			s.logger.Warn("backup catalog insert failed", "table", table, "artifact", artifact.Name, "error", err)
		}
	}
	return artifact, nil
}

// GetColumns returns the live column descriptors of a table.
func (s *Service) GetColumns(ctx context.Context, req domain.GetColumnsRequest) (*domain.ColumnsResult, error) {
	if err := required(field{"table", req.Table}); err != nil {
		return nil, err
	}
	if err := validTable(req.Table); err != nil {
		return nil, err
	}
	h, ts, err := s.schemaFor(ctx, req.Database, req.Table)
	if err != nil {
		return nil, err
	}
	return &domain.ColumnsResult{Database: h.Database, Table: ts.Table, Columns: ts.Columns}, nil
}

// History returns a page of a table's column change records, newest first.
func (s *Service) History(ctx context.Context, req domain.ColumnHistoryRequest) (*domain.HistoryPage, error) {
	if err := required(field{"table", req.Table}); err != nil {
		return nil, err
	}
	if err := validTable(req.Table); err != nil {
		return nil, err
	}
	if !req.Page.Valid() {
		return nil, domain.ErrValidation("Invalid pagination parameters.")
	}
	h, err := s.resolver.Resolve(ctx, req.Database)
	if err != nil {
		return nil, err
	}
	records, total, err := s.history.List(ctx, h, req.Table, req.Page)
	if err != nil {
		return nil, err
	}
	return &domain.HistoryPage{Records: records, Pagination: domain.NewPagination(req.Page, total)}, nil
}
