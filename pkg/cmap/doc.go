// Package cmap provides concurrent maps for projconf.
//
//   - Map: a sharded map with per-shard RWMutex locking
//   - Index: a many-to-many index built on Map, used to find every cached
//     configuration that read a given rc file
//
// Usage:
//
//	idx := cmap.NewIndex[string, string]()
//	idx.Add("/repo/.projconfrc", fingerprint)
//	for _, fp := range idx.Take("/repo/.projconfrc") {
//		cache.Remove(fp)
//	}
//
// All operations are safe for concurrent use. Read operations (Get, Has,
// Range) take a shard read lock, writes take the shard lock.
package cmap
