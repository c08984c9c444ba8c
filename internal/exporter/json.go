package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tradestats/internal/frame"
)

// recordRow marshals one table row as a JSON object with fields in column
// order. encoding/json leaves non-ASCII text literal, which the exports
// rely on for the source-language labels.
type recordRow struct {
	frame *frame.Frame
	row   int
}

func (r recordRow) MarshalJSON() ([]byte, error) {
	out := []byte{'{'}
	for c := 0; c < r.frame.NumCols(); c++ {
		col := r.frame.ColumnAt(c)
		if c > 0 {
			out = append(out, ',')
		}
		key, err := json.Marshal(col.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, key...)
		out = append(out, ':')

		if col.IsMissing(r.row) {
			out = append(out, []byte("null")...)
			continue
		}
		var value []byte
		if col.Kind == frame.Number {
			value, err = json.Marshal(col.Nums[r.row])
		} else {
			value, err = json.Marshal(col.Text[r.row])
		}
		if err != nil {
			return nil, err
		}
		out = append(out, value...)
	}
	return append(out, '}'), nil
}

// ExportJSON writes the table as a pretty-printed array of record objects.
func (e *Exporter) ExportJSON(f *frame.Frame, tableID string) (string, error) {
	path := e.paths.JSONPath(tableID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	records := make([]recordRow, f.NumRows())
	for r := range records {
		records[r] = recordRow{frame: f, row: r}
	}

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}
	return path, nil
}
