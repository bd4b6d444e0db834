// Package export reads and writes the pipeline's CSV files. The column
// set is fixed and the header row is always written, so an empty run
// still yields a parseable file. Enriched files carry two extra columns
// for the detail-page fields.
package export
