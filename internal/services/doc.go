// Package services orchestrates the pipeline stages and analytics over
// the persisted dataset files. Services own the sequencing and file
// resolution; the stage algorithms live in internal/dataprocessing.
package services
