// Package validation checks inbound files before they enter the pipeline:
// upload shape and size limits, and promotional-calendar structure and
// date consistency.
package validation
