package validation

import (
	"math"
	"strings"
	"time"
)

var deadlineLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// requiredString reads a non-blank string field.
func requiredString(payload map[string]any, field string, verr *Error) string {
	raw, ok := payload[field]
	if !ok || raw == nil {
		verr.add(field, "is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		verr.add(field, "must be a string")
		return ""
	}
	if strings.TrimSpace(s) == "" {
		verr.add(field, "is required")
		return ""
	}
	return s
}

// optionalString reads a string field; null and absence yield ok=false.
func optionalString(payload map[string]any, field string, verr *Error) (string, bool) {
	raw, ok := payload[field]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		verr.add(field, "must be a string")
		return "", false
	}
	return s, true
}

func optionalInt(payload map[string]any, field string, verr *Error) (int, bool) {
	raw, ok := payload[field]
	if !ok || raw == nil {
		return 0, false
	}

	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			verr.add(field, "must be an integer")
			return 0, false
		}
		n = int64(v)
	default:
		verr.add(field, "must be an integer")
		return 0, false
	}

	if n < math.MinInt32 || n > math.MaxInt32 {
		verr.add(field, "must be an integer")
		return 0, false
	}
	return int(n), true
}

func optionalBool(payload map[string]any, field string, verr *Error) (bool, bool) {
	raw, ok := payload[field]
	if !ok || raw == nil {
		return false, false
	}
	b, ok := raw.(bool)
	if !ok {
		verr.add(field, "must be a boolean")
		return false, false
	}
	return b, true
}

// deadline normalizes an ISO string, a time.Time or null to *time.Time.
// present reports whether the key was in the payload at all.
func deadline(payload map[string]any, field string, verr *Error) (value *time.Time, present bool) {
	raw, ok := payload[field]
	if !ok {
		return nil, false
	}

	switch v := raw.(type) {
	case nil:
		return nil, true
	case time.Time:
		t := v.UTC()
		return &t, true
	case *time.Time:
		if v == nil {
			return nil, true
		}
		t := v.UTC()
		return &t, true
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, true
		}
		for _, layout := range deadlineLayouts {
			t, err := time.Parse(layout, v)
			if err == nil {
				t = t.UTC()
				return &t, true
			}
		}
		verr.add(field, "must be an ISO 8601 date")
		return nil, true
	default:
		verr.add(field, "must be a date string or null")
		return nil, true
	}
}
