package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"tradestats/internal/frame"
)

// utf8BOM prefixes delimited-text exports so spreadsheet tools recognize
// the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV writes the table as UTF-8 CSV with a byte-order mark. Missing
// cells render as empty fields.
func (e *Exporter) ExportCSV(f *frame.Frame, tableID string) (string, error) {
	path := e.paths.CSVPath(tableID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(f.Names()); err != nil {
		return "", fmt.Errorf("failed to write headers: %w", err)
	}
	for r := 0; r < f.NumRows(); r++ {
		if err := writer.Write(f.Row(r)); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", r, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return path, nil
}
