package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tradestats/internal/config"
	"tradestats/internal/frame"
)

// ErrFileNotFound is returned when a table's source spreadsheet is missing
// on disk.
var ErrFileNotFound = errors.New("source file not found")

// Detection limits and fallbacks. The yearly spreadsheet releases drift in
// layout, so detection is best-effort with fixed fallback row indexes.
const (
	detectionRowLimit = 20
	metadataRowLimit  = 5
	fallbackHeaderRow = 3
	fallbackDataRow   = 5
)

// headerLabels are the known first-cell variants of the period header row.
var headerLabels = []string{"年(月)別", "年月別", "年月"}

// Metadata describes the provenance of a loaded table and the best-effort
// scrape of its title and unit annotations. Title and Unit are empty when
// the source sheet omits them.
type Metadata struct {
	TableID      string
	FilePath     string
	FileName     string
	SheetName    string
	Title        string
	Unit         string
	HeaderRow    int
	DataStartRow int
}

// Loader opens source spreadsheets and produces raw all-text frames.
type Loader struct {
	paths  *config.PathsConfig
	logger *slog.Logger
}

// New creates a loader. A nil logger falls back to the slog default.
func New(paths *config.PathsConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{paths: paths, logger: logger}
}

// LoadTable opens the spreadsheet mapped to tableID and returns the raw
// frame plus extracted metadata. Unknown identifiers and missing files are
// hard failures; everything else degrades with a warning.
func (l *Loader) LoadTable(tableID string) (*frame.Frame, *Metadata, error) {
	fileName, err := config.TableFile(tableID)
	if err != nil {
		return nil, nil, err
	}

	path := l.paths.SourcePath(fileName)
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets in %s", path)
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	headerRow, dataRow := l.detectRows(tableID, rows)

	meta := &Metadata{
		TableID:      tableID,
		FilePath:     path,
		FileName:     filepath.Base(path),
		SheetName:    sheetName,
		HeaderRow:    headerRow,
		DataStartRow: dataRow,
	}
	l.extractMetadata(rows, meta)

	raw, err := buildFrame(rows, headerRow)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", tableID, err)
	}

	l.logger.Info("loaded table",
		slog.String("table_id", tableID),
		slog.String("file", meta.FileName),
		slog.Int("rows", raw.NumRows()),
		slog.Int("columns", raw.NumCols()))

	return raw, meta, nil
}

// detectRows scans the first rows of the sheet for the header row (first
// cell matches a known period-header label) and the first data row (first
// cell contains a year marker with a numeric prefix). Detection failures
// fall back to fixed row indexes with a warning, never an error.
func (l *Loader) detectRows(tableID string, rows [][]string) (int, int) {
	headerRow, dataRow := -1, -1

	limit := len(rows)
	if limit > detectionRowLimit {
		limit = detectionRowLimit
	}

	for i := 0; i < limit; i++ {
		if len(rows[i]) == 0 {
			continue
		}
		cell := strings.TrimSpace(rows[i][0])
		if cell == "" {
			continue
		}

		if headerRow < 0 && isHeaderLabel(cell) {
			headerRow = i
		}

		if dataRow < 0 && strings.Contains(cell, "年") && leadingDigits(cell) >= 2 {
			dataRow = i
			break
		}
	}

	if headerRow < 0 {
		headerRow = fallbackHeaderRow
		l.logger.Warn("could not detect header row, using fallback",
			slog.String("table_id", tableID),
			slog.Int("row", fallbackHeaderRow))
	}
	if dataRow < 0 {
		dataRow = fallbackDataRow
		l.logger.Warn("could not detect data row, using fallback",
			slog.String("table_id", tableID),
			slog.Int("row", fallbackDataRow))
	}

	return headerRow, dataRow
}

// extractMetadata scrapes the title cell and the unit annotation from the
// leading rows. Absence of either is tolerated.
func (l *Loader) extractMetadata(rows [][]string, meta *Metadata) {
	if len(rows) > 0 && len(rows[0]) > 0 {
		meta.Title = strings.TrimSpace(rows[0][0])
	}

	limit := len(rows)
	if limit > metadataRowLimit {
		limit = metadataRowLimit
	}
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if strings.Contains(cell, "單位") {
				meta.Unit = strings.TrimSpace(cell)
				return
			}
		}
	}
}

// buildFrame turns the sheet rows below the header into an all-text frame.
// Fully-empty columns are dropped, rows empty in every non-first column are
// dropped, and blank header cells get positional placeholder names.
func buildFrame(rows [][]string, headerRow int) (*frame.Frame, error) {
	if headerRow >= len(rows) {
		return nil, fmt.Errorf("header row %d beyond sheet end (%d rows)", headerRow, len(rows))
	}

	headers := rows[headerRow]
	width := len(headers)
	dataRows := rows[headerRow+1:]
	for _, r := range dataRows {
		if len(r) > width {
			width = len(r)
		}
	}

	cellAt := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	// Keep only columns with at least one non-empty data cell.
	type rawColumn struct {
		header string
		cells  []string
	}
	var kept []rawColumn
	for c := 0; c < width; c++ {
		col := rawColumn{header: cellAt(headers, c)}
		empty := true
		for _, r := range dataRows {
			v := cellAt(r, c)
			col.cells = append(col.cells, v)
			if v != "" {
				empty = false
			}
		}
		if !empty {
			kept = append(kept, col)
		}
	}

	// Keep only rows with data in at least one non-first column.
	var keptRows []int
	for r := range dataRows {
		for c := 1; c < len(kept); c++ {
			if kept[c].cells[r] != "" {
				keptRows = append(keptRows, r)
				break
			}
		}
	}

	cols := make([]frame.Column, len(kept))
	for c := range kept {
		name := kept[c].header
		if name == "" {
			name = fmt.Sprintf("col_%d", c)
		}
		values := make([]string, len(keptRows))
		for i, r := range keptRows {
			values[i] = kept[c].cells[r]
		}
		cols[c] = frame.NewTextColumn(name, values)
	}

	return frame.New(cols...)
}

func isHeaderLabel(cell string) bool {
	for _, label := range headerLabels {
		if label == "年月" {
			if cell == label {
				return true
			}
			continue
		}
		if strings.Contains(cell, label) {
			return true
		}
	}
	return false
}

// leadingDigits counts the ASCII digits at the start of s.
func leadingDigits(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n++
	}
	return n
}
