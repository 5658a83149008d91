package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind is the storage class a Value binds as.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is a bound statement parameter whose kind is decided by the
// declared type of the column it targets.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
}

// Null is the SQL NULL value.
var Null = Value{Kind: KindNull}

// IntValue returns an integer Value.
func IntValue(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// FloatValue returns a float Value.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// TextValue returns a text Value.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// Arg returns the value in the form database/sql binds.
func (v Value) Arg() any {
	switch v.Kind {
	case KindInteger:
		return v.Int
	case KindFloat:
		return v.Float
	case KindText:
		return v.Text
	default:
		return nil
	}
}

// String renders the value as text, as it would be stored in a char column.
func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindText:
		return v.Text
	default:
		return ""
	}
}

var varcharLengthRe = regexp.MustCompile(`(?i)varchar\((\d+)\)`)

// KindForType maps a declared column type to the kind its values bind as.
func KindForType(columnType string) Kind {
	t := strings.ToLower(columnType)
	switch {
	case strings.Contains(t, "int"):
		return KindInteger
	case strings.Contains(t, "float"), strings.Contains(t, "double"), strings.Contains(t, "real"):
		return KindFloat
	default:
		return KindText
	}
}

// CoerceValue converts a decoded JSON value destined for column col into a
// Value, enforcing nullability, integer-ness and varchar length. Violations
// return a ValidationError naming the column.
func CoerceValue(col ColumnDescriptor, raw any) (Value, error) {
	if raw == nil {
		if !col.Nullable && !col.HasDefault() {
			return Value{}, ErrValidation("Column `%s` cannot be null.", col.Name)
		}
		return Null, nil
	}

	kind := KindForType(col.Type)
	if kind == KindInteger {
		v, ok := numericValue(raw)
		if !ok {
			return Value{}, ErrValidation("Column `%s` expects a numeric value.", col.Name)
		}
		return v, nil
	}

	text, err := textOf(raw)
	if err != nil {
		return Value{}, ErrValidation("Column `%s` has an unsupported value: %v", col.Name, err)
	}
	if m := varcharLengthRe.FindStringSubmatch(col.Type); m != nil {
		maxLen, _ := strconv.Atoi(m[1])
		if utf8.RuneCountInString(text) > maxLen {
			return Value{}, ErrValidation("Column `%s` exceeds max length of %d.", col.Name, maxLen)
		}
	}

	if kind == KindFloat {
		if v, ok := numericValue(raw); ok {
			if v.Kind == KindInteger {
				return FloatValue(float64(v.Int)), nil
			}
			return v, nil
		}
	}
	return TextValue(text), nil
}

// FilterValue converts a decoded JSON value used in an equality filter. It
// never rejects: a value that does not fit the column's kind binds as text
// and simply matches nothing.
func FilterValue(col ColumnDescriptor, raw any) Value {
	if raw == nil {
		return Null
	}
	switch KindForType(col.Type) {
	case KindInteger, KindFloat:
		if v, ok := numericValue(raw); ok {
			return v
		}
	}
	text, err := textOf(raw)
	if err != nil {
		return TextValue(fmt.Sprint(raw))
	}
	return TextValue(text)
}

// numericValue accepts JSON numbers and numeric strings.
func numericValue(raw any) (Value, bool) {
	var s string
	switch v := raw.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	case float64:
		return numberFromFloat(v), true
	case int:
		return IntValue(int64(v)), true
	case int64:
		return IntValue(v), true
	default:
		return Value{}, false
	}
	if s == "" {
		return Value{}, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, false
	}
	return numberFromFloat(f), true
}

func numberFromFloat(f float64) Value {
	if f == float64(int64(f)) {
		return IntValue(int64(f))
	}
	return FloatValue(f)
}

// textOf renders scalars as text and nested JSON as its encoding.
func textOf(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("type %T", raw)
	}
}
