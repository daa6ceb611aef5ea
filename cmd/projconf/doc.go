// Package main provides the entry point for projconf.
//
// projconf resolves a project's layered configuration: per-user rc files,
// every .projconfrc from the filesystem root down to the working
// directory, environment overrides and command-line values.
//
// Usage:
//
//	projconf get
//	projconf -C packages/web level .
//	projconf --set lint.strict=true get -q '$.lint'
//	projconf -o yaml levels
//	projconf watch --metrics-addr :9090
package main
