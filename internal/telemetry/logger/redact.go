package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// Key fragments that mark a configuration value as sensitive.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"api_key",
	"credential",
	"private",
	"auth",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive masks attribute values whose key looks sensitive and
// passwords embedded in URLs. Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if IsSensitiveValue(strVal) {
			return slog.String(a.Key, RedactString(strVal))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// RedactString masks the password of a URL with user info. Other values
// are returned unchanged.
func RedactString(value string) string {
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}
	if _, ok := u.User.Password(); !ok {
		return value
	}
	return u.Redacted()
}

// RedactMap returns a copy of m with sensitive values masked, recursing
// into nested maps and slices.
func RedactMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = redactValue(k, v)
	}
	return out
}

func redactValue(key string, v any) any {
	switch t := v.(type) {
	case map[string]any:
		return RedactMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = redactValue(key, e)
		}
		return out
	case string:
		if t != "" && IsSensitiveKey(key) {
			return redactedValue
		}
		return RedactString(t)
	default:
		if v != nil && IsSensitiveKey(key) {
			return redactedValue
		}
		return v
	}
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value is a URL carrying a password.
func IsSensitiveValue(value string) bool {
	if !strings.Contains(value, "@") || !strings.Contains(value, "://") {
		return false
	}
	return RedactString(value) != value
}
