package validator

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"tradestats/internal/config"
	"tradestats/internal/frame"
)

// typeEquivalence maps an expected storage type to the actual types it
// accepts. Numeric widths are interchangeable for conformance purposes.
var typeEquivalence = map[string][]string{
	"float64": {"float64", "float32", "int64", "int32"},
	"int64":   {"int64", "int32"},
	"string":  {"object", "string"},
	"object":  {"object", "string"},
}

// Validator runs structural and business-rule checks over enriched tables.
// It never fails: every rule violation becomes an entry on the Result.
type Validator struct {
	logger *slog.Logger
}

// New creates a validator. A nil logger falls back to the slog default.
func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate runs the full rule set for a table. An empty table is an
// immediate error that short-circuits the remaining checks. Tables with a
// schema definition additionally receive the required-column and
// type-conformance checks.
func (v *Validator) Validate(f *frame.Frame, tableID string) *Result {
	result := &Result{
		TableID:     tableID,
		Passed:      true,
		RowCount:    f.NumRows(),
		ColumnCount: f.NumCols(),
	}

	if f.NumRows() == 0 {
		result.AddError("table is empty")
		return result
	}

	v.checkPeriodColumn(f, result)
	v.checkNegativeValues(f, result)
	v.checkExtremeGrowthRates(f, result)

	if _, ok := config.SchemaFor(tableID); ok {
		for _, msg := range v.CheckMissingValues(f, config.RequiredColumns(tableID)) {
			result.AddError(msg)
		}
		for _, msg := range v.CheckDataTypes(f, config.ExpectedTypes(tableID)) {
			result.AddError(msg)
		}
	}

	v.logger.Info("validated table",
		slog.String("table_id", tableID),
		slog.Bool("passed", result.Passed),
		slog.Int("errors", len(result.Errors)),
		slog.Int("warnings", len(result.Warnings)))
	return result
}

// checkPeriodColumn locates the period column (first column whose name
// contains a year marker) and validates the canonical token format: each
// value must be all-digit or contain a separator.
func (v *Validator) checkPeriodColumn(f *frame.Frame, result *Result) {
	var period *frame.Column
	for i := 0; i < f.NumCols(); i++ {
		if strings.Contains(strings.ToLower(f.ColumnAt(i).Name), "year") {
			period = f.ColumnAt(i)
			break
		}
	}
	if period == nil {
		result.AddWarning("no period column found")
		return
	}
	for _, msg := range v.CheckPeriodFormat(f, period.Name) {
		result.AddError(msg)
	}
}

// CheckPeriodFormat validates the period column's token format and returns
// one aggregate error with a count when any token fails.
func (v *Validator) CheckPeriodFormat(f *frame.Frame, column string) []string {
	col := f.Column(column)
	if col == nil {
		return []string{fmt.Sprintf("column %q not found", column)}
	}

	invalid := 0
	for r := 0; r < col.Len(); r++ {
		if col.IsMissing(r) {
			continue
		}
		token := col.CellString(r)
		if !allDigits(token) && !strings.Contains(token, "-") {
			invalid++
		}
	}
	if invalid > 0 {
		return []string{fmt.Sprintf("column %q: %d invalid period format values", column, invalid)}
	}
	return nil
}

// checkNegativeValues reports negative entries in value-named columns as
// warnings: negative trade values can be legitimate.
func (v *Validator) checkNegativeValues(f *frame.Frame, result *Result) {
	for i := 0; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		if col.Kind != frame.Number || !strings.Contains(strings.ToLower(col.Name), "value") {
			continue
		}
		negative := 0
		for r := 0; r < col.Len(); r++ {
			if value, ok := col.FloatAt(r); ok && value < 0 {
				negative++
			}
		}
		if negative > 0 {
			result.AddWarning(fmt.Sprintf("column %q: %d negative values (may be valid for deficits)", col.Name, negative))
		}
	}
}

// checkExtremeGrowthRates reports growth-rate values outside (-100, 1000]
// in growth/rate-named columns as warnings with counts.
func (v *Validator) checkExtremeGrowthRates(f *frame.Frame, result *Result) {
	for i := 0; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		name := strings.ToLower(col.Name)
		if col.Kind != frame.Number || (!strings.Contains(name, "growth") && !strings.Contains(name, "rate")) {
			continue
		}
		high, low := 0, 0
		for r := 0; r < col.Len(); r++ {
			value, ok := col.FloatAt(r)
			if !ok {
				continue
			}
			if value > 1000 {
				high++
			}
			if value < -100 {
				low++
			}
		}
		if high > 0 {
			result.AddWarning(fmt.Sprintf("column %q: %d values above 1000%%", col.Name, high))
		}
		if low > 0 {
			result.AddWarning(fmt.Sprintf("column %q: %d values below -100%%", col.Name, low))
		}
	}
}

// CheckValueRanges checks a column against explicit bounds and returns one
// error per violated bound. A nil bound skips that side.
func (v *Validator) CheckValueRanges(f *frame.Frame, column string, minVal, maxVal *float64) []string {
	col := f.Column(column)
	if col == nil {
		return []string{fmt.Sprintf("column %q not found", column)}
	}

	var errs []string
	if minVal != nil {
		below := 0
		for r := 0; r < col.Len(); r++ {
			if value, ok := col.FloatAt(r); ok && value < *minVal {
				below++
			}
		}
		if below > 0 {
			errs = append(errs, fmt.Sprintf("column %q: %d values below minimum (%g)", column, below, *minVal))
		}
	}
	if maxVal != nil {
		above := 0
		for r := 0; r < col.Len(); r++ {
			if value, ok := col.FloatAt(r); ok && value > *maxVal {
				above++
			}
		}
		if above > 0 {
			errs = append(errs, fmt.Sprintf("column %q: %d values above maximum (%g)", column, above, *maxVal))
		}
	}
	return errs
}

// CheckMissingValues reports one error per required column with any missing
// cells, with the count, plus an error per absent required column.
func (v *Validator) CheckMissingValues(f *frame.Frame, requiredColumns []string) []string {
	var errs []string
	for _, name := range requiredColumns {
		col := f.Column(name)
		if col == nil {
			errs = append(errs, fmt.Sprintf("required column %q not found", name))
			continue
		}
		missing := 0
		for r := 0; r < col.Len(); r++ {
			if col.IsMissing(r) {
				missing++
			}
		}
		if missing > 0 {
			errs = append(errs, fmt.Sprintf("column %q: %d missing values found", name, missing))
		}
	}
	return errs
}

// CheckDataTypes compares each column's storage type against the expected
// type's equivalence class and reports mismatches.
func (v *Validator) CheckDataTypes(f *frame.Frame, expectedTypes map[string]string) []string {
	names := make([]string, 0, len(expectedTypes))
	for name := range expectedTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	for _, name := range names {
		expected := expectedTypes[name]
		col := f.Column(name)
		if col == nil {
			errs = append(errs, fmt.Sprintf("column %q not found", name))
			continue
		}
		actual := col.Kind.String()
		if accepted, ok := typeEquivalence[expected]; ok {
			if !contains(accepted, actual) {
				errs = append(errs, fmt.Sprintf("column %q: expected %s, got %s", name, expected, actual))
			}
		} else if actual != expected {
			errs = append(errs, fmt.Sprintf("column %q: expected %s, got %s", name, expected, actual))
		}
	}
	return errs
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
