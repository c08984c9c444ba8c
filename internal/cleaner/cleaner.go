package cleaner

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"tradestats/internal/config"
	"tradestats/internal/frame"
)

// missingTokens are the literal placeholders the source sheets use for
// absent values, replaced table-wide with the missing marker before type
// coercion. The third entry is a full-width space.
var missingTokens = []string{"-", "...", "　", ""}

// Cleaner standardizes raw tables: artifact rows out, missing tokens
// normalized, columns renamed to canonical names, numerics coerced, and the
// period column rewritten to its canonical text form. Cleaning never fails;
// every step degrades gracefully.
type Cleaner struct {
	mappings config.ColumnMappings
	logger   *slog.Logger
}

// New creates a cleaner with the given column-mapping resource.
func New(mappings config.ColumnMappings, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{mappings: mappings, logger: logger}
}

// Clean applies the full cleaning sequence. The order matters: filtering
// before missing-value normalization avoids substitution work on rows about
// to drop; renaming before coercion means coercion sees canonical names.
func (c *Cleaner) Clean(f *frame.Frame, tableID string) *frame.Frame {
	out := c.filterArtifactRows(f, tableID)
	c.normalizeMissing(out)
	c.renameColumns(out, tableID)
	c.coerceNumericColumns(out, tableID)
	c.normalizePeriodColumn(out)

	c.logger.Info("cleaned table",
		slog.String("table_id", tableID),
		slog.Int("rows", out.NumRows()),
		slog.Int("columns", out.NumCols()))
	return out
}

// filterArtifactRows drops sub-header, comparison and bare-month rows based
// on the first cell of each row.
func (c *Cleaner) filterArtifactRows(f *frame.Frame, tableID string) *frame.Frame {
	if f.NumCols() == 0 {
		return f.Clone()
	}
	first := f.ColumnAt(0)
	dropped := 0
	out := f.FilterRows(func(row int) bool {
		artifact, _ := isArtifactRow(firstCellText(first, row), first.IsMissing(row))
		if artifact {
			dropped++
		}
		return !artifact
	})
	if dropped > 0 {
		c.logger.Debug("removed artifact rows",
			slog.String("table_id", tableID),
			slog.Int("count", dropped))
	}
	return out
}

// normalizeMissing replaces the literal missing tokens in text columns with
// the missing marker.
func (c *Cleaner) normalizeMissing(f *frame.Frame) {
	for i := 0; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		if col.Kind != frame.Text {
			continue
		}
		for r := 0; r < col.Len(); r++ {
			if col.IsMissing(r) {
				continue
			}
			for _, token := range missingTokens {
				if col.Text[r] == token {
					col.SetMissing(r)
					break
				}
			}
		}
	}
}

// renameColumns applies the exact-match column mapping for the table.
// Columns without an entry are kept under their source label; positional
// placeholder columns (col_N) are left as-is.
func (c *Cleaner) renameColumns(f *frame.Frame, tableID string) {
	mapping := c.mappings.ForTable(tableID)
	if mapping == nil {
		c.logger.Warn("no column mappings for table, keeping source labels",
			slog.String("table_id", tableID))
		return
	}
	renamed := 0
	for i := 0; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		if newName, ok := mapping[col.Name]; ok {
			col.Name = newName
			renamed++
			continue
		}
		if !strings.HasPrefix(col.Name, "col_") {
			c.logger.Warn("unmapped column kept under source label",
				slog.String("table_id", tableID),
				slog.String("column", col.Name))
		}
	}
	c.logger.Debug("renamed columns",
		slog.String("table_id", tableID),
		slog.Int("count", renamed))
}

// coerceNumericColumns converts every column but the first (period) column
// to numeric storage. Cells that fail to parse become missing, not errors.
func (c *Cleaner) coerceNumericColumns(f *frame.Frame, tableID string) {
	for i := 1; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		if col.Kind == frame.Number {
			continue
		}
		nums := make([]float64, col.Len())
		valid := make([]bool, col.Len())
		failures := 0
		for r := 0; r < col.Len(); r++ {
			if col.IsMissing(r) {
				continue
			}
			v, err := parseNumber(col.Text[r])
			if err != nil {
				failures++
				continue
			}
			nums[r] = v
			valid[r] = true
		}
		if failures > 0 {
			c.logger.Warn("non-numeric cells coerced to missing",
				slog.String("table_id", tableID),
				slog.String("column", col.Name),
				slog.Int("count", failures))
		}
		if err := f.ReplaceColumn(i, frame.NewNumberColumn(col.Name, nums, valid)); err != nil {
			// Lengths are derived from the source column, so this cannot
			// happen; surface it loudly if it ever does.
			c.logger.Error("failed to replace coerced column", slog.String("error", err.Error()))
		}
	}
}

// normalizePeriodColumn rewrites the first column to canonical period form:
// a year-only token has its year marker stripped, a year-month token becomes
// year-MM, anything else passes through unchanged. The column stays text.
func (c *Cleaner) normalizePeriodColumn(f *frame.Frame) {
	if f.NumCols() == 0 {
		return
	}
	col := f.ColumnAt(0)
	if col.Kind != frame.Text {
		return
	}
	for r := 0; r < col.Len(); r++ {
		if col.IsMissing(r) {
			continue
		}
		col.Text[r] = NormalizePeriod(col.Text[r])
	}
}

// NormalizePeriod canonicalizes one period token: "104年" → "104",
// "114年8月" → "114-08". Tokens that fit neither shape (including cumulative
// ranges like "114年1-8月") are passed through unchanged.
func NormalizePeriod(token string) string {
	val := strings.TrimSpace(token)

	hasYear := strings.Contains(val, "年")
	hasMonth := strings.Contains(val, "月")

	if hasYear && !hasMonth {
		return strings.TrimSpace(strings.ReplaceAll(val, "年", ""))
	}

	if hasYear && hasMonth {
		parts := strings.Split(strings.ReplaceAll(val, "月", ""), "年")
		if len(parts) == 2 {
			year := strings.TrimSpace(parts[0])
			month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil {
				return fmt.Sprintf("%s-%02d", year, month)
			}
		}
		return val
	}

	return val
}

// parseNumber parses a cell as float64, tolerating thousands separators and
// embedded whitespace.
func parseNumber(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	return strconv.ParseFloat(cleaned, 64)
}

func firstCellText(col *frame.Column, row int) string {
	if col.IsMissing(row) {
		return ""
	}
	return col.CellString(row)
}
