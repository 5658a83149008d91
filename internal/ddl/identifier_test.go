package ddl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		// Valid cases
		{name: "simple", input: "users"},
		{name: "underscore_prefix", input: "_temp"},
		{name: "mixed_case", input: "MyTable"},
		{name: "with_digits", input: "table1"},
		{name: "max_length", input: strings.Repeat("a", 64)},

		// Invalid cases
		{name: "empty", input: "", wantErr: "name is required"},
		{name: "too_long", input: strings.Repeat("a", 65), wantErr: "at most 64 characters"},
		{name: "starts_with_digit", input: "1table", wantErr: "must match"},
		{name: "contains_space", input: "my table", wantErr: "must match"},
		{name: "contains_hyphen", input: "my-table", wantErr: "must match"},
		{name: "contains_dot", input: "db.users", wantErr: "must match"},
		{name: "contains_backtick", input: "us`ers", wantErr: "must match"},
		{name: "sql_injection", input: "users; DROP TABLE x", wantErr: "must match"},
		{name: "unicode_letter", input: "usérs", wantErr: "must match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.True(t, IsValidIdentifier(tt.input))
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.False(t, IsValidIdentifier(tt.input))
			}
		})
	}
}

func TestValidateColumnType(t *testing.T) {
	valid := []string{"INT", "int", "VARCHAR(255)", "text", "BIGINT(20)", "DATETIME"}
	for _, typ := range valid {
		t.Run("valid_"+typ, func(t *testing.T) {
			assert.True(t, IsValidColumnType(typ))
		})
	}

	invalid := []string{
		"",
		"DECIMAL(10,2)",
		"VARCHAR(255) NOT NULL",
		"INT; DROP TABLE users",
		"VARCHAR()",
		"VARCHAR(abc)",
		"INT UNSIGNED",
		"TEXT'",
		"ENUM('a')",
	}
	for _, typ := range invalid {
		t.Run("invalid_"+typ, func(t *testing.T) {
			assert.False(t, IsValidColumnType(typ))
		})
	}
}

func TestNormalizeColumnType(t *testing.T) {
	assert.Equal(t, "VARCHAR(20)", NormalizeColumnType(" varchar(20) "))
	assert.Equal(t, "INT", NormalizeColumnType("Int"))
}
