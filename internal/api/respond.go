package api

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// field is one extra member of a response envelope.
type field struct {
	key   string
	value any
}

// envelope is the {status, message, ...extra} body of every response. It
// marshals its members in order.
type envelope struct {
	status  bool
	message string
	extra   []field
}

func (e envelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"status":`)
	if e.status {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
	buf.WriteString(`,"message":`)
	msg, err := json.Marshal(e.message)
	if err != nil {
		return nil, err
	}
	buf.Write(msg)
	for _, f := range e.extra {
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeEnvelope writes an envelope with the given status code.
func writeEnvelope(w http.ResponseWriter, code int, ok bool, message string, extra ...field) {
	body, err := json.Marshal(envelope{status: ok, message: message, extra: extra})
	if err != nil {
		code = http.StatusInternalServerError
		body = []byte(`{"status":false,"message":"Failed to encode response."}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// writeOK writes a successful envelope.
func writeOK(w http.ResponseWriter, code int, message string, extra ...field) {
	writeEnvelope(w, code, true, message, extra...)
}
