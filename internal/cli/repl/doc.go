// Package repl provides the interactive shell behind "projconf shell".
//
// The loop reads one line at a time, splits it into words (single and
// double quotes group words) and hands them to an Executor. Command names
// may be abbreviated to any unique prefix; ambiguous prefixes list the
// candidates. History is kept in memory and optionally persisted.
package repl
