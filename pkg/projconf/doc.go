// Package projconf resolves project configuration from a stack of rc
// files.
//
// A stack is built from, lowest precedence first: Options.Defaults, the
// user's rc files, the project's rc files from the outermost directory
// down to the working directory, environment overrides and
// Options.ExtendBy. A file that sets root: true marks the project root;
// files above it still contribute plain keys but not levels, libraries
// or modules.
//
// Four reserved keys have their own meaning:
//
//	root:     marks the project root
//	levels:   configuration scoped to directories, keyed by path or
//	          single-wildcard pattern
//	libs:     nested configurations of named libraries
//	modules:  opaque named configuration blocks
//
// Usage:
//
//	cfg := projconf.New(projconf.Options{Name: "myapp"})
//	merged, err := cfg.Get(ctx)
//	blocks, err := cfg.Level(ctx, "src/blocks")
//
// A Cache shares Config values between callers that use equal Options
// and drops them when a source file changes.
package projconf
