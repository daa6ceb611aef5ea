// Package output renders resolved configuration for the projconf CLI.
//
// Three formats are supported:
//
//   - table: nested maps are flattened to dotted KEY/VALUE rows, sorted by key
//   - json: indented JSON
//   - yaml: YAML via gopkg.in/yaml.v3
//
// Redacted wraps any Formatter and masks values whose keys look like
// credentials before they reach the writer.
package output
