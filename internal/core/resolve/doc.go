// Package resolve derives the namespaced views of a fragment stack.
//
// Components, leaves first:
//
//   - root.go: locates the root marker and the project root directory
//   - boundary.go: cuts the stack at the root marker
//   - level.go: normalises level identifiers, expands wildcards, merges levels
//   - namespace.go: library and module lookup
//
// Everything here is synchronous and pure except wildcard expansion, which
// goes through a Globber. Fragment order is precedence order throughout;
// results of concurrent globbing are folded in stack order, never in
// completion order.
package resolve
