package exporter

import (
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"tradestats/internal/config"
	"tradestats/internal/frame"
)

func testExporter(t *testing.T) (*Exporter, *config.PathsConfig) {
	t.Helper()
	paths := &config.PathsConfig{
		DataDir:      t.TempDir(),
		ProcessedDir: t.TempDir(),
	}
	require.NoError(t, paths.EnsureOutputDirectories())
	return New(paths, "trade_stats.db", nil), paths
}

func testFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-07", "114-08", "114-09"}),
		frame.NewNumberColumn("total_export_value_usd_million", []float64{100.5, 0, 121}, []bool{true, false, true}),
		frame.NewTextColumn("source_table", []string{"table01", "table01", "table01"}),
	)
	require.NoError(t, err)
	return f
}

func TestExportCSV_WritesBOMAndRecords(t *testing.T) {
	e, paths := testExporter(t)

	path, err := e.ExportCSV(testFrame(t), "table01")
	require.NoError(t, err)
	assert.Equal(t, paths.CSVPath("table01"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	require.True(t, len(raw) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3], "UTF-8 BOM for spreadsheet tools")

	content := string(raw[3:])
	assert.Contains(t, content, "year_month,total_export_value_usd_million,source_table")
	assert.Contains(t, content, "114-07,100.5,table01")
	assert.Contains(t, content, "114-08,,table01", "missing cell renders empty")
}

func TestExportJSON_RecordOrientationAndLiteralNonASCII(t *testing.T) {
	e, _ := testExporter(t)

	f, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-08"}),
		frame.NewTextColumn("商品別", []string{"電子零組件"}),
		frame.NewNumberColumn("total", []float64{9}, []bool{false}),
	)
	require.NoError(t, err)

	path, err := e.ExportJSON(f, "table01")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(raw)
	assert.Contains(t, content, "電子零組件", "non-ASCII kept literal")
	assert.Contains(t, content, "\"total\": null")
	assert.Contains(t, content, "\n  ", "pretty-printed")

	var records []map[string]any
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "114-08", records[0]["year_month"])
	assert.Nil(t, records[0]["total"])
}

func TestParquetRoundTrip(t *testing.T) {
	e, paths := testExporter(t)
	f := testFrame(t)

	path, err := e.ExportParquet(f, "table01")
	require.NoError(t, err)
	assert.Equal(t, paths.ParquetPath("table01"), path)

	back, err := ReadParquet(path)
	require.NoError(t, err)

	// Column order on disk is the schema's own; compare by name.
	require.ElementsMatch(t, f.Names(), back.Names())
	require.Equal(t, f.NumRows(), back.NumRows())

	for _, name := range f.Names() {
		want := f.Column(name)
		got := back.Column(name)
		require.NotNil(t, got, name)
		assert.Equal(t, want.Kind, got.Kind, name)
		for r := 0; r < f.NumRows(); r++ {
			assert.Equal(t, want.IsMissing(r), got.IsMissing(r), "%s row %d", name, r)
			if want.IsMissing(r) {
				continue
			}
			assert.Equal(t, want.CellString(r), got.CellString(r), "%s row %d", name, r)
		}
	}
}

func TestExportSQLite_ReplacesTableOnRerun(t *testing.T) {
	e, paths := testExporter(t)

	path, err := e.ExportSQLite(testFrame(t), "table01")
	require.NoError(t, err)
	assert.Equal(t, paths.DatabasePath("trade_stats.db"), path)

	// Re-export a smaller frame under the same table name.
	smaller, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-09"}),
		frame.NewNumberColumn("total_export_value_usd_million", []float64{121}, nil),
	)
	require.NoError(t, err)

	_, err = e.ExportSQLite(smaller, "table01")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "table01"`).Scan(&count))
	assert.Equal(t, 1, count, "same-named table replaced, not appended")

	var period string
	require.NoError(t, db.QueryRow(`SELECT year_month FROM "table01"`).Scan(&period))
	assert.Equal(t, "114-09", period)
}

func TestExportSQLite_MissingCellsAreNULL(t *testing.T) {
	e, _ := testExporter(t)

	path, err := e.ExportSQLite(testFrame(t), "table01")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var nulls int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM "table01" WHERE total_export_value_usd_million IS NULL`).Scan(&nulls))
	assert.Equal(t, 1, nulls)
}

func TestExport_DispatchAndUnknownFormat(t *testing.T) {
	e, _ := testExporter(t)
	f := testFrame(t)

	outputs, err := e.Export(f, "table01", []string{FormatCSV, FormatJSON})
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.FileExists(t, outputs[FormatCSV])
	assert.FileExists(t, outputs[FormatJSON])

	_, err = e.Export(f, "table01", []string{"xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
}
