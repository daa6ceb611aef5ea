// Package shutdown coordinates graceful termination of long running
// projconf commands such as watch.
//
// Hooks registered with OnShutdown run in reverse registration order once
// SIGINT or SIGTERM arrives, or the context passed to Wait is canceled.
// Every hook runs even if an earlier one fails; failures are aggregated.
package shutdown
