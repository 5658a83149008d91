package ddl

import (
	"regexp"
	"strconv"
	"strings"
)

// safeConversions lists the widening changes allowed on a populated column,
// keyed by the lower-cased base type.
var safeConversions = map[string][]string{
	"int":     {"bigint", "varchar", "text"},
	"bigint":  {"varchar", "text"},
	"float":   {"double", "decimal", "varchar"},
	"varchar": {"text"},
	"char":    {"varchar", "text"},
	"text":    {"longtext"},
	"date":    {"datetime", "timestamp"},
}

var (
	typeParamsRe  = regexp.MustCompile(`\(.*`)
	typeLengthRe  = regexp.MustCompile(`\((\d+)\)`)
	textualBaseRe = regexp.MustCompile(`char|text`)
)

// BaseType lower-cases t and drops everything from the first "(" on, so
// modifiers written after the parameters go with them.
//
//	"VARCHAR(255)" → "varchar"
//	"int(11) unsigned" → "int"
func BaseType(t string) string {
	base := typeParamsRe.ReplaceAllString(strings.ToLower(t), "")
	return strings.Join(strings.Fields(base), " ")
}

// IsSafeTypeConversion reports whether a column of type oldType can be
// changed to newType without losing data. Identical base types are always
// safe; otherwise the change must appear in the widening table.
func IsSafeTypeConversion(oldType, newType string) bool {
	oldBase := BaseType(oldType)
	newBase := BaseType(newType)
	if oldBase == newBase {
		return true
	}
	for _, allowed := range safeConversions[oldBase] {
		if allowed == newBase {
			return true
		}
	}
	return false
}

// TruncationRisk reports whether changing a textual column from oldType to
// newType shrinks its declared length.
func TruncationRisk(oldType, newType string) bool {
	oldBase := BaseType(oldType)
	newBase := BaseType(newType)
	if !textualBaseRe.MatchString(oldBase) || !textualBaseRe.MatchString(newBase) {
		return false
	}
	oldLen, ok := TypeLength(oldType)
	if !ok {
		return false
	}
	newLen, ok := TypeLength(newType)
	if !ok {
		return false
	}
	return newLen < oldLen
}

// TypeLength extracts the first parenthesised length of t.
func TypeLength(t string) (int, bool) {
	m := typeLengthRe.FindStringSubmatch(t)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
