// Package app assembles the forecast workbench backend: configuration,
// logging, the upload retention sweeper, pipeline and exploratory-analysis
// services, the versioned config store, and the chi HTTP router, with
// graceful startup and shutdown.
package app
