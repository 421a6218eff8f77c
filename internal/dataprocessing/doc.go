// Package dataprocessing implements the forecast-preparation pipeline
// core: schema standardization, row validation, continuous timeline
// construction, frequency aggregation, and the exploratory statistics
// computed over the persisted grain files.
//
// Every stage consumes and produces dataset.Table values and reports a
// summary record from pkg/contracts/domain. Stages that persist output
// write through internal/config.Paths so the on-disk layout stays in one
// place.
package dataprocessing
