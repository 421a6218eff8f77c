// Package configstore persists forecast project configurations as
// versioned YAML documents, one directory per environment, with a shared
// JSON history, an append-only audit log, role gating, and the hierarchy
// mapping used for rollups.
package configstore
