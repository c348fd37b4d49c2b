package validation

import (
	"strings"
)

// NonEmptyString checks a loosely typed value: it must be a string (type error
// otherwise) with at least one byte (value error otherwise). No trimming is
// applied.
func NonEmptyString(name string, v any) error {
	s, ok := v.(string)
	if !ok {
		return typeError(name, "%s must be a non-empty string", name)
	}
	if s == "" {
		return valueError(name, "%s must be a non-empty string", name)
	}
	return nil
}

// nonEmptyStringValue is NonEmptyString with both failure modes reported as
// value errors. Fields pulled out of a properties payload use it, since the
// payload itself already had the right type.
func nonEmptyStringValue(name string, v any) error {
	if s, ok := v.(string); ok && s != "" {
		return nil
	}
	return valueError(name, "%s must be a non-empty string", name)
}

// NonEmptyID checks a path identifier such as a user, order, session or
// content id. Identifiers are typed strings in Go, so only emptiness can fail.
func NonEmptyID(name, id string) error {
	if id == "" {
		return valueError(name, "%s must be a non-empty string", name)
	}
	return nil
}

// NonEmptyMapping checks a properties payload: nil is not a mapping (type
// error) and an empty mapping carries nothing to send (value error).
func NonEmptyMapping(name string, m map[string]any) error {
	if m == nil {
		return typeError(name, "%s must be a non-empty mapping", name)
	}
	if len(m) == 0 {
		return valueError(name, "%s must be a non-empty mapping", name)
	}
	return nil
}

// AsMapping converts a nested payload value into a mapping. It accepts the
// shapes produced by encoding/json and by hand-built Go literals.
func AsMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// AbuseTypes rejects the deprecated comma-joined form: each abuse type must
// be its own element.
func AbuseTypes(abuseTypes []string) error {
	for _, at := range abuseTypes {
		if strings.Contains(at, ",") {
			return valueError("abuse_types",
				"passing abuse_types as a comma-joined string is deprecated; pass each abuse type as a separate element (got %q)", at)
		}
		if at == "" {
			return valueError("abuse_types", "abuse_types must not contain empty values")
		}
	}
	return nil
}
