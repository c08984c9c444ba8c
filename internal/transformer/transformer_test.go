package transformer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradestats/internal/frame"
)

func fixedTransformer() *Transformer {
	tr := New(nil)
	tr.now = func() time.Time {
		return time.Date(2025, 8, 26, 10, 0, 0, 0, time.UTC)
	}
	return tr
}

func numbers(t *testing.T, col frame.Column) []any {
	t.Helper()
	out := make([]any, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			out[i] = nil
		} else {
			out[i] = col.Nums[i]
		}
	}
	return out
}

func TestGrowthRate(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(
		frame.NewNumberColumn("total", []float64{100, 110, 121}, nil),
	)
	require.NoError(t, err)

	col := tr.GrowthRate(f, "total", "")
	assert.Equal(t, "total_growth_rate_pct", col.Name)
	got := numbers(t, col)
	assert.Nil(t, got[0])
	assert.InDelta(t, 10.0, got[1].(float64), 1e-9)
	assert.InDelta(t, 10.0, got[2].(float64), 1e-9)
}

func TestGrowthRate_ZeroAndMissingPrevious(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(
		frame.NewNumberColumn("total", []float64{0, 50, 0, 75}, []bool{true, true, false, true}),
	)
	require.NoError(t, err)

	got := numbers(t, tr.GrowthRate(f, "total", ""))
	assert.Nil(t, got[0], "first row has no previous value")
	assert.Nil(t, got[1], "previous value zero")
	assert.Nil(t, got[2], "current value missing")
	assert.Nil(t, got[3], "previous value missing")
}

func TestGrowthRate_GroupedLag(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(
		frame.NewTextColumn("year", []string{"113", "114", "113", "114"}),
		frame.NewNumberColumn("total", []float64{100, 200, 150, 220}, nil),
	)
	require.NoError(t, err)

	got := numbers(t, tr.GrowthRate(f, "total", "year"))
	assert.Nil(t, got[0])
	assert.Nil(t, got[1])
	assert.InDelta(t, 50.0, got[2].(float64), 1e-9)
	assert.InDelta(t, 10.0, got[3].(float64), 1e-9)
}

func TestGrowthRate_AbsentColumn(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(frame.NewTextColumn("period", []string{"113", "114"}))
	require.NoError(t, err)

	col := tr.GrowthRate(f, "nope", "")
	assert.Equal(t, 2, col.Len())
	for i := 0; i < col.Len(); i++ {
		assert.True(t, col.IsMissing(i))
	}
}

func TestMarketShare(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(
		frame.NewNumberColumn("exports_to_us", []float64{30, 40, 10}, []bool{true, true, false}),
		frame.NewNumberColumn("total", []float64{120, 0, 100}, nil),
	)
	require.NoError(t, err)

	col := tr.MarketShare(f, "exports_to_us", "total")
	assert.Equal(t, "exports_to_us_share_pct", col.Name)
	got := numbers(t, col)
	assert.InDelta(t, 25.0, got[0].(float64), 1e-9)
	assert.Nil(t, got[1], "zero total")
	assert.Nil(t, got[2], "missing value")
}

func TestMarketShare_AbsentInputIsAllMissing(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(frame.NewNumberColumn("total", []float64{120}, nil))
	require.NoError(t, err)

	col := tr.MarketShare(f, "nope", "total")
	assert.Equal(t, 1, col.Len())
	assert.True(t, col.IsMissing(0))
}

func TestCumulativeSum(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(
		frame.NewTextColumn("year", []string{"113", "113", "114", "114"}),
		frame.NewNumberColumn("total", []float64{10, 20, 5, 7}, nil),
	)
	require.NoError(t, err)

	plain := numbers(t, tr.CumulativeSum(f, "total", ""))
	assert.Equal(t, []any{10.0, 30.0, 35.0, 42.0}, plain)

	byYear := numbers(t, tr.CumulativeSum(f, "total", "year"))
	assert.Equal(t, []any{10.0, 30.0, 5.0, 12.0}, byYear)
}

func TestCumulativeSum_MissingDoesNotAdvance(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(
		frame.NewNumberColumn("total", []float64{10, 0, 20}, []bool{true, false, true}),
	)
	require.NoError(t, err)

	got := numbers(t, tr.CumulativeSum(f, "total", ""))
	assert.Equal(t, 10.0, got[0])
	assert.Nil(t, got[1])
	assert.Equal(t, 30.0, got[2])
}

func TestEnrich(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(frame.NewTextColumn("year_month", []string{"114-07", "114-08"}))
	require.NoError(t, err)

	out := tr.Enrich(f, "table02", EnrichOptions{SourceFile: "Table2.xlsx", DataMonth: "114-08"})

	assert.Equal(t, []string{"year_month", "source_table", "processing_date", "source_file", "data_month"}, out.Names())
	assert.Equal(t, "table02", out.Column("source_table").Text[0])
	assert.Equal(t, "2025-08-26", out.Column("processing_date").Text[1])
	assert.Equal(t, "Table2.xlsx", out.Column("source_file").Text[0])
	assert.Equal(t, "114-08", out.Column("data_month").Text[1])

	// Optional fields omitted when empty.
	bare := tr.Enrich(f, "table02", EnrichOptions{})
	assert.Equal(t, []string{"year_month", "source_table", "processing_date"}, bare.Names())

	// Source frame untouched.
	assert.Equal(t, 1, f.NumCols())
}

func TestConvertUnits(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(
		frame.NewNumberColumn("total_usd_million", []float64{2_500}, nil),
		frame.NewNumberColumn("total_nt_thousand", []float64{3_000_000}, nil),
	)
	require.NoError(t, err)

	tr.ConvertUnits(f, []string{"total_usd_million"}, "million")
	tr.ConvertUnits(f, []string{"total_nt_thousand"}, "thousand")

	million := f.Column("total_usd_billion")
	require.NotNil(t, million)
	assert.InDelta(t, 2.5, million.Nums[0], 1e-9)

	thousand := f.Column("total_nt_billion")
	require.NotNil(t, thousand)
	assert.InDelta(t, 3.0, thousand.Nums[0], 1e-9)
}

func TestConvertUnits_UnknownUnitIsNoOp(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(frame.NewNumberColumn("total_usd_million", []float64{2_500}, nil))
	require.NoError(t, err)

	tr.ConvertUnits(f, []string{"total_usd_million"}, "furlongs")

	col := f.Column("total_usd_million")
	require.NotNil(t, col)
	assert.Equal(t, 2500.0, col.Nums[0])
}

func TestQuarterlyAggregation(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-01", "114-02", "114-04", "114-05", "113"}),
		frame.NewNumberColumn("total", []float64{10, 20, 5, 0, 99}, []bool{true, true, true, false, true}),
	)
	require.NoError(t, err)

	out, err := tr.QuarterlyAggregation(f, "year_month", []string{"total"})
	require.NoError(t, err)

	quarter := out.Column("quarter")
	require.NotNil(t, quarter)
	assert.Equal(t, []string{"113", "114-Q1", "114-Q2"}, quarter.Text)

	total := out.Column("total")
	require.NotNil(t, total)
	assert.Equal(t, []float64{99, 30, 5}, total.Nums)
}

func TestQuarterlyAggregation_MissingDateColumn(t *testing.T) {
	tr := fixedTransformer()

	f, err := frame.New(frame.NewNumberColumn("total", []float64{1}, nil))
	require.NoError(t, err)

	_, err = tr.QuarterlyAggregation(f, "year_month", []string{"total"})
	assert.Error(t, err)
}

func TestToQuarter(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"114-01", "114-Q1"},
		{"114-03", "114-Q1"},
		{"114-04", "114-Q2"},
		{"114-08", "114-Q3"},
		{"114-12", "114-Q4"},
		{"113", "113"},
		{"114-xx", "114-xx"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, toQuarter(tt.token))
		})
	}
}
