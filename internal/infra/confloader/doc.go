// Package confloader loads configuration from disk and the environment.
//
// Loader is the single koanf pipeline (file and env providers, YAML
// parser). Two consumers drive it:
//
//   - FragmentLoader discovers rc files (home, project ancestors or one
//     explicit file) and turns each file, and the prefixed environment,
//     into a fragment for the resolver. Each home group and each project
//     directory contributes its first existing rc file only.
//   - The CLI unmarshals its own preferences into a typed struct.
//
// Watcher reports rc file changes through fsnotify so cached resolutions
// can be dropped.
//
// Fragment precedence (lowest to highest):
//
//  1. Defaults
//  2. Home rc files
//  3. Project rc files, outermost directory first
//  4. Environment variables
//  5. Runtime overrides (ExtendBy)
package confloader
