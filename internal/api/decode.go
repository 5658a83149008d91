package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"flexidb/internal/domain"
)

const maxBodyBytes = 1 << 20

// payload is a decoded JSON request body. Numbers stay json.Number so that
// integer values survive untouched until they meet a column type.
type payload map[string]any

// decodeBody reads a JSON object from the request body.
func decodeBody(w http.ResponseWriter, r *http.Request) (payload, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.ErrValidation("Request body too large.")
		}
		return nil, domain.ErrValidation("Invalid JSON input.")
	}
	obj, err := decodeObject(body)
	if err != nil {
		return nil, domain.ErrValidation("Invalid JSON input.")
	}
	return payload(obj), nil
}

// decodeObject decodes data as a single JSON object.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("not an object")
	}
	return obj, nil
}

// text returns key as a string. Numbers are rendered as written; anything
// else reads as absent.
func (p payload) text(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// optionalText returns key as a string, or nil when absent or null.
func (p payload) optionalText(key string) *string {
	switch v := p[key].(type) {
	case string:
		return &v
	case json.Number:
		s := v.String()
		return &s
	case bool:
		s := "0"
		if v {
			s = "1"
		}
		return &s
	default:
		return nil
	}
}

// flag reads a loosely typed boolean: JSON booleans, numbers, and the usual
// string spellings. An absent or null key yields def.
func (p payload) flag(key string, def bool) (bool, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return false, domain.ErrValidation("Invalid value for `%s`.", key)
		}
		return f != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "", "0", "false", "no", "off":
			return false, nil
		}
	}
	return false, domain.ErrValidation("Invalid value for `%s`.", key)
}

// integer reads an optional integer; invalid values fail with message.
func (p payload) integer(key, message string) (*int, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var n int64
	var err error
	switch v := raw.(type) {
	case json.Number:
		n, err = v.Int64()
	case string:
		n, err = json.Number(strings.TrimSpace(v)).Int64()
	default:
		err = errors.New("not a number")
	}
	if err != nil {
		return nil, domain.ErrValidation("%s", message)
	}
	i := int(n)
	return &i, nil
}

// object reads an optional JSON object. A string holding a JSON object is
// accepted as well.
func (p payload) object(key, message string) (map[string]any, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		obj, err := decodeObject([]byte(v))
		if err != nil {
			return nil, domain.ErrValidation("%s", message)
		}
		return obj, nil
	default:
		return nil, domain.ErrValidation("%s", message)
	}
}

// rows reads data given as one object or a list of objects.
func (p payload) rows(key string) ([]map[string]any, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if len(v) == 0 {
			return nil, domain.ErrValidation("Data must be a non-empty array.")
		}
		return []map[string]any{v}, nil
	case []any:
		if len(v) == 0 {
			return nil, domain.ErrValidation("Data must be a non-empty array.")
		}
		out := make([]map[string]any, len(v))
		for i, item := range v {
			row, ok := item.(map[string]any)
			if !ok || len(row) == 0 {
				return nil, domain.ErrValidation("Row %d must be a non-empty object.", i+1)
			}
			out[i] = row
		}
		return out, nil
	default:
		return nil, domain.ErrValidation("Data must be a non-empty array.")
	}
}

// list reads an optional JSON array; a scalar is rejected with message.
func (p payload) list(key, message string) ([]any, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case []any:
		if len(v) == 0 {
			return nil, domain.ErrValidation("%s", message)
		}
		return v, nil
	default:
		return nil, domain.ErrValidation("%s", message)
	}
}

// queryParam names one optional query string parameter and where to bind it.
type queryParam struct {
	name string
	dest any
}

// bindQuery binds optional form-style query parameters.
func bindQuery(r *http.Request, params ...queryParam) error {
	q := r.URL.Query()
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			if p.name == "page" || p.name == "limit" {
				return domain.ErrValidation("Invalid pagination parameters.")
			}
			return domain.ErrValidation("Invalid query parameter `%s`.", p.name)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
