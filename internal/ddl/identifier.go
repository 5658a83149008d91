// Package ddl validates identifiers and column types and decides whether a
// column type change is safe to apply to a populated table.
package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// columnTypeRe accepts a bare type word with an optional single length
// parameter: INT, VARCHAR(255), TEXT. Anything with spaces, commas, quotes,
// semicolons or nested parentheses is rejected.
var columnTypeRe = regexp.MustCompile(`^[A-Za-z]+(\(\d+\))?$`)

// MaxIdentifierLen is the MySQL identifier limit, applied to every dialect.
const MaxIdentifierLen = 64

// IsValidIdentifier reports whether name may be embedded in a statement as a
// table, column or database name.
func IsValidIdentifier(name string) bool {
	return ValidateIdentifier(name) == nil
}

// ValidateIdentifier checks that name is a safe SQL identifier:
//   - Non-empty
//   - At most 64 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > MaxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", MaxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_]*")
	}
	return nil
}

// IsValidColumnType reports whether t is an acceptable column type string.
func IsValidColumnType(t string) bool {
	return ValidateColumnType(t) == nil
}

// ValidateColumnType checks that typeName is a word optionally followed by a
// parenthesised length, e.g. VARCHAR(255).
func ValidateColumnType(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("column type is required")
	}
	if !columnTypeRe.MatchString(typeName) {
		return fmt.Errorf("column type %q is not a recognized type pattern", typeName)
	}
	return nil
}

// NormalizeColumnType upper-cases a requested column type.
func NormalizeColumnType(typeName string) string {
	return strings.ToUpper(strings.TrimSpace(typeName))
}
