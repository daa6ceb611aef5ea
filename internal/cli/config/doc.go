// Package config provides the preferences of the projconf CLI.
//
//   - spec.go: CLIConfig struct (~/.projconf/cli.yaml)
//   - loader.go: loading, merging and saving
//
// Preferences are read from the YAML file, then PROJCONF_CLI_* environment
// variables, then explicit command-line flags. They only affect how the
// CLI runs and prints; the configuration it resolves comes from rc files.
package config
