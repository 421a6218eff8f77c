// Package http contains the chi HTTP handlers for the workbench API:
// pipeline operations, exploratory analysis, configuration management,
// and health. Handlers translate between the wire and the services; all
// errors render as RFC 7807 problem documents.
package http
