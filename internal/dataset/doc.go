// Package dataset provides the tabular data model shared by every
// pipeline stage, with CSV and Excel codecs. Tables carry string cells
// keyed by header name; typed reads go through the Parse helpers so a
// column can mix nulls and values the way uploaded files do.
package dataset
