package transformer

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"tradestats/internal/frame"
)

// unitFactors maps a declared source unit to the divisor that converts it
// to billions.
var unitFactors = map[string]float64{
	"million":  1_000,
	"thousand": 1_000_000,
}

// Transformer derives new columns from cleaned tables and enriches them with
// provenance metadata. All methods are pure over their inputs: derived
// columns are returned or appended, existing cells are only touched by the
// explicit unit conversion.
type Transformer struct {
	logger *slog.Logger
	now    func() time.Time
}

// New creates a transformer. A nil logger falls back to the slog default.
func New(logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{logger: logger, now: time.Now}
}

// GrowthRate computes (current - previous) / previous * 100 over a one-row
// lag in valueColumn. When groupBy names a column, the lag is taken within
// rows sharing the same group value. The first row of any series has no
// previous value and is missing; so is any row whose previous value is zero
// or missing. An absent input column yields an all-missing result.
func (t *Transformer) GrowthRate(f *frame.Frame, valueColumn, groupBy string) frame.Column {
	name := valueColumn + "_growth_rate_pct"
	col := f.Column(valueColumn)
	if col == nil || col.Kind != frame.Number {
		t.logger.Warn("growth rate input column not found", slog.String("column", valueColumn))
		return allMissingColumn(name, f.NumRows())
	}

	var groupCol *frame.Column
	if groupBy != "" {
		groupCol = f.Column(groupBy)
		if groupCol == nil {
			t.logger.Warn("growth rate group column not found", slog.String("column", groupBy))
		}
	}

	nums := make([]float64, col.Len())
	valid := make([]bool, col.Len())
	lastInGroup := make(map[string]int)
	prevRow := -1
	for r := 0; r < col.Len(); r++ {
		prev := prevRow
		if groupCol != nil {
			key := groupCol.CellString(r)
			if idx, ok := lastInGroup[key]; ok {
				prev = idx
			} else {
				prev = -1
			}
			lastInGroup[key] = r
		}
		prevRow = r

		if prev < 0 || col.IsMissing(r) || col.IsMissing(prev) {
			continue
		}
		prevVal := col.Nums[prev]
		if prevVal == 0 {
			continue
		}
		nums[r] = (col.Nums[r] - prevVal) / prevVal * 100
		valid[r] = true
	}
	return frame.NewNumberColumn(name, nums, valid)
}

// MarketShare computes value/total × 100 row-wise. Either input column
// absent yields an all-missing result column, never an error.
func (t *Transformer) MarketShare(f *frame.Frame, valueColumn, totalColumn string) frame.Column {
	name := valueColumn + "_share_pct"
	value := f.Column(valueColumn)
	total := f.Column(totalColumn)
	if value == nil || total == nil || value.Kind != frame.Number || total.Kind != frame.Number {
		t.logger.Warn("market share input columns not found",
			slog.String("value_column", valueColumn),
			slog.String("total_column", totalColumn))
		return allMissingColumn(name, f.NumRows())
	}

	nums := make([]float64, value.Len())
	valid := make([]bool, value.Len())
	for r := 0; r < value.Len(); r++ {
		if value.IsMissing(r) || total.IsMissing(r) || total.Nums[r] == 0 {
			continue
		}
		nums[r] = value.Nums[r] / total.Nums[r] * 100
		valid[r] = true
	}
	return frame.NewNumberColumn(name, nums, valid)
}

// CumulativeSum computes a running total of valueColumn. When resetColumn
// is non-empty the total restarts per distinct value of that column (e.g. a
// year marker). Missing inputs yield a missing cell and do not advance the
// total.
func (t *Transformer) CumulativeSum(f *frame.Frame, valueColumn, resetColumn string) frame.Column {
	name := valueColumn + "_cumsum"
	col := f.Column(valueColumn)
	if col == nil || col.Kind != frame.Number {
		t.logger.Warn("cumulative sum input column not found", slog.String("column", valueColumn))
		return allMissingColumn(name, f.NumRows())
	}

	var resetCol *frame.Column
	if resetColumn != "" {
		resetCol = f.Column(resetColumn)
	}

	nums := make([]float64, col.Len())
	valid := make([]bool, col.Len())
	totals := make(map[string]float64)
	for r := 0; r < col.Len(); r++ {
		key := ""
		if resetCol != nil {
			key = resetCol.CellString(r)
		}
		if col.IsMissing(r) {
			continue
		}
		totals[key] += col.Nums[r]
		nums[r] = totals[key]
		valid[r] = true
	}
	return frame.NewNumberColumn(name, nums, valid)
}

// EnrichOptions carries the optional provenance fields.
type EnrichOptions struct {
	SourceFile string
	DataMonth  string
}

// Enrich appends the provenance columns: source table identifier and
// processing date always, source file and data month when provided.
func (t *Transformer) Enrich(f *frame.Frame, tableID string, opts EnrichOptions) *frame.Frame {
	out := f.Clone()
	n := out.NumRows()

	addConstant := func(name, value string) {
		if err := out.AddColumn(frame.NewTextColumn(name, repeatString(value, n))); err != nil {
			t.logger.Error("failed to append metadata column", slog.String("error", err.Error()))
		}
	}

	addConstant("source_table", tableID)
	addConstant("processing_date", t.now().Format("2006-01-02"))
	if opts.SourceFile != "" {
		addConstant("source_file", opts.SourceFile)
	}
	if opts.DataMonth != "" {
		addConstant("data_month", opts.DataMonth)
	}

	t.logger.Debug("enriched table with metadata columns", slog.String("table_id", tableID))
	return out
}

// ConvertUnits divides the named columns by the factor for the declared
// source unit (thousand→billion: 1,000,000; million→billion: 1,000) and
// renames them to the _billion suffix. An unknown unit is a logged no-op.
func (t *Transformer) ConvertUnits(f *frame.Frame, columns []string, fromUnit string) {
	factor, ok := unitFactors[fromUnit]
	if !ok {
		t.logger.Warn("unknown source unit, conversion skipped", slog.String("unit", fromUnit))
		return
	}

	for _, name := range columns {
		col := f.Column(name)
		if col == nil || col.Kind != frame.Number {
			continue
		}
		for r := 0; r < col.Len(); r++ {
			if col.Valid[r] {
				col.Nums[r] /= factor
			}
		}
		newName := strings.ReplaceAll(name, "_million", "_billion")
		newName = strings.ReplaceAll(newName, "_thousand", "_billion")
		if newName != name {
			col.Name = newName
		}
	}
}

// QuarterlyAggregation maps the period column's year-month tokens to
// year-Qn tokens and sums the requested value columns per quarter. Tokens
// without a month component group under their own value. Quarters are
// emitted in sorted token order.
func (t *Transformer) QuarterlyAggregation(f *frame.Frame, dateColumn string, valueColumns []string) (*frame.Frame, error) {
	dateCol := f.Column(dateColumn)
	if dateCol == nil {
		return nil, fmt.Errorf("date column %q not found", dateColumn)
	}

	var cols []*frame.Column
	for _, name := range valueColumns {
		if c := f.Column(name); c != nil && c.Kind == frame.Number {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		t.logger.Warn("no valid value columns for quarterly aggregation")
		return f.Clone(), nil
	}

	type aggregate struct {
		sums []float64
	}
	groups := make(map[string]*aggregate)
	for r := 0; r < f.NumRows(); r++ {
		if dateCol.IsMissing(r) {
			continue
		}
		quarter := toQuarter(dateCol.CellString(r))
		g, ok := groups[quarter]
		if !ok {
			g = &aggregate{sums: make([]float64, len(cols))}
			groups[quarter] = g
		}
		for i, c := range cols {
			if v, ok := c.FloatAt(r); ok {
				g.sums[i] += v
			}
		}
	}

	quarters := make([]string, 0, len(groups))
	for q := range groups {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)

	out, err := frame.New(frame.NewTextColumn("quarter", quarters))
	if err != nil {
		return nil, err
	}
	for i, c := range cols {
		sums := make([]float64, len(quarters))
		for qi, q := range quarters {
			sums[qi] = groups[q].sums[i]
		}
		if err := out.AddColumn(frame.NewNumberColumn(c.Name, sums, nil)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// toQuarter rewrites "114-08" to "114-Q3"; tokens without a separator or
// with a non-numeric month pass through unchanged.
func toQuarter(token string) string {
	idx := strings.Index(token, "-")
	if idx < 0 {
		return token
	}
	month, err := strconv.Atoi(token[idx+1:])
	if err != nil {
		return token
	}
	return fmt.Sprintf("%s-Q%d", token[:idx], (month-1)/3+1)
}

func allMissingColumn(name string, n int) frame.Column {
	return frame.NewNumberColumn(name, make([]float64, n), make([]bool, n))
}

func repeatString(value string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = value
	}
	return out
}
