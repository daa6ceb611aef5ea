// Package globber expands single-wildcard level patterns into the
// concrete directories they match.
//
// Two implementations share one contract:
//
//   - DirGlobber: the host filesystem
//   - BillyGlobber: any go-billy filesystem (osfs, memfs, chroot)
//
// Contract:
//
//   - Only direct children of the base directory are considered.
//   - Only directories match; files are ignored.
//   - Results are sorted names, not paths.
//   - A missing base directory yields an empty result, not an error.
//   - The base directory is a literal path; only the pattern is matched.
//   - Dot-directories match only patterns that start with '.'.
package globber
