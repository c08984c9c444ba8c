package exporter

import (
	"fmt"
	"log/slog"

	"tradestats/internal/config"
	"tradestats/internal/frame"
)

// Format names accepted by Export.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatSQLite  = "sqlite"
)

// Exporter serializes enriched tables to the on-disk output formats. Each
// format is written independently; a failed write aborts the table's
// pipeline, so failures are returned rather than swallowed.
type Exporter struct {
	paths        *config.PathsConfig
	databaseName string
	logger       *slog.Logger
}

// New creates an exporter writing under the configured processed-data root.
func New(paths *config.PathsConfig, databaseName string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{paths: paths, databaseName: databaseName, logger: logger}
}

// Export writes the table in every requested format and returns the output
// path per format name.
func (e *Exporter) Export(f *frame.Frame, tableID string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case FormatParquet:
			path, err = e.ExportParquet(f, tableID)
		case FormatCSV:
			path, err = e.ExportCSV(f, tableID)
		case FormatJSON:
			path, err = e.ExportJSON(f, tableID)
		case FormatSQLite:
			path, err = e.ExportSQLite(f, tableID)
		default:
			err = fmt.Errorf("unknown export format %q", format)
		}
		if err != nil {
			return nil, fmt.Errorf("export %s for %s failed: %w", format, tableID, err)
		}
		paths[format] = path
		e.logger.Info("exported table",
			slog.String("table_id", tableID),
			slog.String("format", format),
			slog.String("path", path))
	}
	return paths, nil
}
