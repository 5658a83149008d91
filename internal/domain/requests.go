package domain

// DefaultDeleteLimit is the batch limit applied when a delete request does
// not name one; it is also the largest limit accepted.
const DefaultDeleteLimit = 100

// AddColumnRequest asks for a new column on an existing table.
type AddColumnRequest struct {
	Database      string
	Table         string
	Column        string
	Type          string
	Nullable      bool
	Default       *string
	AutoIncrement bool
	Unique        bool
	Index         bool
	Comment       string
}

// ModifyColumnRequest asks for a type/nullability/default/comment change,
// optionally renaming the column and toggling its unique index.
type ModifyColumnRequest struct {
	Database string
	Table    string
	Column   string
	NewType  string
	NewName  string
	Nullable bool
	Default  *string
	Comment  string
	Unique   bool
}

// DropColumnRequest asks for a column to be removed.
type DropColumnRequest struct {
	Database string
	Table    string
	Column   string
}

// GetColumnsRequest asks for the live column list of a table.
type GetColumnsRequest struct {
	Database string
	Table    string
}

// ColumnHistoryRequest asks for a page of a table's column change history.
type ColumnHistoryRequest struct {
	Database string
	Table    string
	Page     PageRequest
}

// InsertRowsRequest carries one or more rows keyed by column name.
type InsertRowsRequest struct {
	Database string
	Table    string
	Rows     []map[string]any
}

// GetRowsRequest selects a page of rows, optionally a single column and
// optionally filtered by column equality.
type GetRowsRequest struct {
	Database  string
	Table     string
	Column    string
	Condition map[string]any
	Page      PageRequest
}

// UpdateRowsRequest sets Data on every row matching Where.
type UpdateRowsRequest struct {
	Database string
	Table    string
	Data     map[string]any
	Where    map[string]any
}

// DeleteRowsRequest deletes rows whose Column value is in Values.
type DeleteRowsRequest struct {
	Database string
	Table    string
	Column   string
	Values   []any
	Limit    *int
}

// EffectiveLimit returns the requested batch limit capped at
// DefaultDeleteLimit, or the default when none was given.
func (r DeleteRowsRequest) EffectiveLimit() int {
	if r.Limit == nil {
		return DefaultDeleteLimit
	}
	return min(*r.Limit, DefaultDeleteLimit)
}

// BackupArtifact describes a stored table definition backup.
type BackupArtifact struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	Size       int64  `json:"size"`
	BLAKE3     string `json:"blake3"`
	Compressed bool   `json:"compressed"`
}

// ColumnsResult is the live column list of a table.
type ColumnsResult struct {
	Database string
	Table    string
	Columns  []ColumnDescriptor
}

// DropColumnResult reports a dropped column and its table backup.
type DropColumnResult struct {
	Table  string
	Column string
	Backup *BackupArtifact
}

// HistoryPage is a page of column change records, newest first.
type HistoryPage struct {
	Records    []ColumnChangeRecord
	Pagination Pagination
}

// RowsPage is a page of rows with pagination metadata.
type RowsPage struct {
	Rows       []*Row
	Pagination Pagination
}

// InsertResult reports how many rows were inserted.
type InsertResult struct {
	Inserted int
}

// UpdateResult reports how many rows the UPDATE touched.
type UpdateResult struct {
	Affected int64
}

// DeleteResult reports a committed delete-with-audit.
type DeleteResult struct {
	Table        string
	LogTable     string
	DeletedCount int64
}
