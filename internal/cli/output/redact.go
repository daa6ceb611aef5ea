package output

import (
	"io"

	"github.com/yndnr/projconf/internal/telemetry/logger"
)

type redacted struct {
	next Formatter
}

// Redacted masks sensitive values in map shaped data before delegating to f.
func Redacted(f Formatter) Formatter {
	return &redacted{next: f}
}

func (r *redacted) Format(w io.Writer, data any) error {
	return r.next.Format(w, redactData(data))
}

func redactData(data any) any {
	switch v := data.(type) {
	case map[string]any:
		return logger.RedactMap(v)
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, m := range v {
			out[i] = logger.RedactMap(m)
		}
		return out
	case map[string]map[string]any:
		out := make(map[string]map[string]any, len(v))
		for k, m := range v {
			out[k] = logger.RedactMap(m)
		}
		return out
	default:
		return data
	}
}
