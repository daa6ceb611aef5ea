// Package domain defines the core domain models for projconf.
//
// Domain models are pure value objects without any IO dependencies
// or framework coupling. This package contains:
//
//   - Fragment: one partial configuration and the file it came from
//   - Stack: the ordered list of fragments, lowest precedence first
//   - Errors: Domain-specific error definitions
//
// Fragments are immutable once built. Every accessor that exposes
// a map hands out a copy.
package domain
