// Package files manages the upload store: persisting raw uploads under
// timestamped names, tracking the latest upload pointer, resolving which
// file a pipeline run should ingest, and sweeping stale uploads past the
// retention window.
package files
