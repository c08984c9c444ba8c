package exporter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"tradestats/internal/frame"
)

// ExportParquet writes the table as a snappy-compressed parquet file. Every
// column is optional so missing cells become nulls. The storage library
// orders fields by name, so the on-disk column order is lexicographic.
func (e *Exporter) ExportParquet(f *frame.Frame, tableID string) (string, error) {
	path := e.paths.ParquetPath(tableID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	schema := parquetSchema(f, tableID)
	writer := parquet.NewGenericWriter[map[string]any](file, schema, parquet.Compression(&parquet.Snappy))

	rows := make([]map[string]any, f.NumRows())
	for r := 0; r < f.NumRows(); r++ {
		row := make(map[string]any, f.NumCols())
		for c := 0; c < f.NumCols(); c++ {
			col := f.ColumnAt(c)
			if col.IsMissing(r) {
				continue
			}
			if col.Kind == frame.Number {
				row[col.Name] = col.Nums[r]
			} else {
				row[col.Name] = col.Text[r]
			}
		}
		rows[r] = row
	}

	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return "", fmt.Errorf("failed to write rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return path, nil
}

// ReadParquet loads a parquet artifact back into a frame. Used by the data
// server and by round-trip verification.
func ReadParquet(path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet footer: %w", err)
	}

	reader := parquet.NewGenericReader[map[string]any](file, pf.Schema())
	defer reader.Close()

	total := int(pf.NumRows())
	rows := make([]map[string]any, 0, total)
	buf := make([]map[string]any, 64)
	for {
		for i := range buf {
			buf[i] = make(map[string]any)
		}
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
		if len(rows) >= total {
			break
		}
	}

	return frameFromRows(pf.Schema(), rows)
}

func parquetSchema(f *frame.Frame, name string) *parquet.Schema {
	group := parquet.Group{}
	for i := 0; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		if col.Kind == frame.Number {
			group[col.Name] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
		} else {
			group[col.Name] = parquet.Optional(parquet.String())
		}
	}
	return parquet.NewSchema(name, group)
}

func frameFromRows(schema *parquet.Schema, rows []map[string]any) (*frame.Frame, error) {
	out, err := frame.New()
	if err != nil {
		return nil, err
	}

	for _, field := range schema.Fields() {
		name := field.Name()
		leaf := field
		isDouble := leaf.Type().Kind() == parquet.Double

		if isDouble {
			nums := make([]float64, len(rows))
			valid := make([]bool, len(rows))
			for r, row := range rows {
				v, ok := row[name]
				if !ok || v == nil {
					continue
				}
				switch value := v.(type) {
				case float64:
					nums[r] = value
					valid[r] = true
				case float32:
					nums[r] = float64(value)
					valid[r] = true
				case int64:
					nums[r] = float64(value)
					valid[r] = true
				}
			}
			if err := out.AddColumn(frame.NewNumberColumn(name, nums, valid)); err != nil {
				return nil, err
			}
			continue
		}

		text := make([]string, len(rows))
		valid := make([]bool, len(rows))
		for r, row := range rows {
			v, ok := row[name]
			if !ok || v == nil {
				continue
			}
			switch value := v.(type) {
			case string:
				text[r] = value
				valid[r] = true
			case []byte:
				text[r] = string(value)
				valid[r] = true
			}
		}
		col := frame.Column{Name: name, Kind: frame.Text, Text: text, Valid: valid}
		if err := out.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}
