// Package exporter serializes enriched tables to the on-disk output
// formats: snappy-compressed parquet, UTF-8 CSV with a byte-order mark for
// spreadsheet compatibility, pretty-printed JSON records, and a shared
// sqlite database where same-named tables are replaced on re-run.
//
// Formats are written independently under per-format subdirectories of the
// processed-data root, one artifact per table identifier. A failed write is
// returned to the caller: it must abort the table's pipeline.
package exporter
