package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradestats/internal/frame"
)

func TestValidate_EmptyTableShortCircuits(t *testing.T) {
	v := New(nil)

	f, err := frame.New()
	require.NoError(t, err)

	result := v.Validate(f, "table01")
	assert.False(t, result.Passed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "empty")
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 0, result.RowCount)
}

func TestValidate_ExtremeGrowthRateIsWarningOnly(t *testing.T) {
	v := New(nil)

	f, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-07", "114-08"}),
		frame.NewNumberColumn("total_growth_rate_pct", []float64{5, 1500}, nil),
	)
	require.NoError(t, err)

	result := v.Validate(f, "table01")
	assert.True(t, result.Passed)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "total_growth_rate_pct")
	assert.Contains(t, result.Warnings[0], "above 1000%")
}

func TestValidate_NegativeValuesAreWarnings(t *testing.T) {
	v := New(nil)

	f, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-07", "114-08"}),
		frame.NewNumberColumn("trade_balance_value", []float64{10, -3}, nil),
	)
	require.NoError(t, err)

	result := v.Validate(f, "table01")
	assert.True(t, result.Passed)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "negative")
}

func TestValidate_NoPeriodColumnIsWarning(t *testing.T) {
	v := New(nil)

	f, err := frame.New(frame.NewNumberColumn("total", []float64{1}, nil))
	require.NoError(t, err)

	result := v.Validate(f, "table01")
	assert.True(t, result.Passed)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no period column")
}

func TestCheckPeriodFormat(t *testing.T) {
	v := New(nil)

	tests := []struct {
		name    string
		values  []string
		valid   []bool
		wantErr bool
	}{
		{"bare years", []string{"104", "113"}, nil, false},
		{"year-month tokens", []string{"114-07", "114-08"}, nil, false},
		{"mixed valid", []string{"104", "114-08"}, nil, false},
		{"raw source token", []string{"114年8月"}, nil, true},
		{"missing cells skipped", []string{"104", ""}, []bool{true, false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := frame.NewTextColumn("year_month", tt.values)
			if tt.valid != nil {
				col.Valid = tt.valid
			}
			f, err := frame.New(col)
			require.NoError(t, err)

			errs := v.CheckPeriodFormat(f, "year_month")
			if tt.wantErr {
				require.Len(t, errs, 1)
				assert.Contains(t, errs[0], "invalid period format")
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestCheckPeriodFormat_AggregatesOneErrorWithCount(t *testing.T) {
	v := New(nil)

	f, err := frame.New(frame.NewTextColumn("year_month", []string{"bad", "also bad", "104"}))
	require.NoError(t, err)

	errs := v.CheckPeriodFormat(f, "year_month")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "2 invalid")
}

func TestCheckValueRanges(t *testing.T) {
	v := New(nil)

	f, err := frame.New(frame.NewNumberColumn("share_pct", []float64{-5, 50, 120}, nil))
	require.NoError(t, err)

	minVal, maxVal := 0.0, 100.0

	errs := v.CheckValueRanges(f, "share_pct", &minVal, &maxVal)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "below minimum")
	assert.Contains(t, errs[1], "above maximum")

	assert.Empty(t, v.CheckValueRanges(f, "share_pct", nil, nil))

	errs = v.CheckValueRanges(f, "nope", &minVal, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not found")
}

func TestCheckMissingValues(t *testing.T) {
	v := New(nil)

	f, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-07", "114-08"}),
		frame.NewNumberColumn("total", []float64{10, 0}, []bool{true, false}),
	)
	require.NoError(t, err)

	errs := v.CheckMissingValues(f, []string{"year_month", "total", "absent"})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], `"total"`)
	assert.Contains(t, errs[0], "1 missing")
	assert.Contains(t, errs[1], `"absent"`)
	assert.Contains(t, errs[1], "not found")
}

func TestCheckDataTypes(t *testing.T) {
	v := New(nil)

	f, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-08"}),
		frame.NewNumberColumn("total", []float64{10}, nil),
	)
	require.NoError(t, err)

	tests := []struct {
		name     string
		expected map[string]string
		wantErrs int
	}{
		{"exact match", map[string]string{"year_month": "string", "total": "float64"}, 0},
		{"object accepts text storage", map[string]string{"year_month": "object"}, 0},
		{"numeric column is not text", map[string]string{"total": "string"}, 1},
		{"text column is not numeric", map[string]string{"year_month": "float64"}, 1},
		{"absent column", map[string]string{"nope": "float64"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.CheckDataTypes(f, tt.expected)
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}

func TestResult_ErrorForcesFailure(t *testing.T) {
	r := &Result{TableID: "table01", Passed: true}

	r.AddWarning("just a warning")
	assert.True(t, r.Passed)

	r.AddError("broken")
	assert.False(t, r.Passed)

	r.AddWarning("another warning")
	assert.False(t, r.Passed, "warnings never reset the pass flag")

	assert.Contains(t, r.Summary(), "table01")
}
