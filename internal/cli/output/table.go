package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/knadh/koanf/maps"
)

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table.
// Supports: Table, map[string]any, []map[string]any,
// map[string]map[string]any, []string, string and structs.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	var table *Table
	switch v := data.(type) {
	case *Table:
		table = v
	case Table:
		table = &v
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case []string:
		table = &Table{Headers: []string{"NAME"}}
		for _, s := range v {
			table.AddRow(s)
		}
	case map[string]any:
		table = &Table{Headers: []string{"KEY", "VALUE"}}
		for _, row := range flatRows(v) {
			table.AddRow(row...)
		}
	case []map[string]any:
		table = &Table{Headers: []string{"INDEX", "KEY", "VALUE"}}
		for i, m := range v {
			for _, row := range flatRows(m) {
				table.AddRow(append([]string{strconv.Itoa(i)}, row...)...)
			}
		}
	case map[string]map[string]any:
		table = &Table{Headers: []string{"LEVEL", "KEY", "VALUE"}}
		for _, id := range sortedKeys(v) {
			for _, row := range flatRows(v[id]) {
				table.AddRow(append([]string{id}, row...)...)
			}
		}
	default:
		t, err := structToTable(data)
		if err != nil {
			// Fallback to JSON for complex types
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(data)
		}
		table = t
	}

	return table.RenderWithOptions(w, f.NoHeaders)
}

// flatRows flattens m into dotted key/value pairs sorted by key.
func flatRows(m map[string]any) [][]string {
	flat, _ := maps.Flatten(m, nil, ".")
	rows := make([][]string, 0, len(flat))
	for _, k := range sortedKeys(flat) {
		rows = append(rows, []string{k, formatScalar(flat[k])})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// formatScalar formats a leaf value for display.
func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return `""`
		}
		return t
	case bool:
		return strconv.FormatBool(t)
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// structToTable converts a single struct to a field/value table.
func structToTable(data any) (*Table, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return &Table{}, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported type: %s", v.Kind())
	}

	table := &Table{
		Headers: []string{"FIELD", "VALUE"},
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}

		table.AddRow(name, formatScalar(v.Field(i).Interface()))
	}

	return table, nil
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		if _, err := io.WriteString(tw, strings.Join(t.Headers, "\t")+"\n"); err != nil {
			return err
		}
	}

	for _, row := range t.Rows {
		if _, err := io.WriteString(tw, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
