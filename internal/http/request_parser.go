package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/thechaz2/budget-app/internal/core"
)

// Body holds the decoded JSON request body. An unreadable or malformed
// body decodes to an empty object, so handlers surface the problem as a
// missing-field validation error rather than a decode failure.
type Body struct {
	data map[string]any
}

// ParseBody reads and decodes the request body.
func ParseBody(r *http.Request) *Body {
	b := &Body{data: map[string]any{}}

	raw, err := io.ReadAll(r.Body)
	if err != nil || len(raw) == 0 {
		return b
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err == nil && data != nil {
		b.data = data
	}
	return b
}

// Has reports whether the key was present in the body at all.
func (b *Body) Has(key string) bool {
	_, ok := b.data[key]
	return ok
}

// Get returns the value under key rendered as a trimmed string. Absent
// keys and null values yield "".
func (b *Body) Get(key string) string {
	v, ok := b.data[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringValue(v))
}

// Amount returns the value under key as a float64, accepting JSON
// numbers and numeric strings.
func (b *Body) Amount(key string) (float64, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, core.ErrInvalidAmount
	}
	return core.ParseAmount(v)
}

// Bool returns the value under key as a boolean. Accepts JSON booleans
// and the strings "true"/"false"/"1"/"0"; anything else is false.
func (b *Body) Bool(key string) bool {
	switch v := b.data[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	default:
		return false
	}
}

// ID returns the value under key as a positive integer identifier.
func (b *Body) ID(key string) (int64, bool) {
	switch v := b.data[key].(type) {
	case float64:
		id := int64(v)
		return id, id > 0
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}

// stringValue converts a decoded JSON value to a string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
