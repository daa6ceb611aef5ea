// Package command defines the projconf CLI using urfave/cli/v2.
//
//   - root.go: the App, global flags and per-invocation environment
//   - resolve.go: read-only queries (configs, root, get, level, ...)
//   - watch.go: re-resolves and prints on every rc file change
//   - shell.go: interactive queries against one memoized configuration
//   - prefs.go: the CLI's own preferences file
//   - version.go: build information
//
// Every command follows the same pattern: build projconf.Options from the
// global flags, run one query, and hand the result to an output.Formatter.
package command
