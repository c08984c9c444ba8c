package exporter

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"tradestats/internal/frame"
)

// ExportSQLite writes the table into the shared sqlite database under the
// relational-file directory. A same-named table from a previous run is
// replaced.
func (e *Exporter) ExportSQLite(f *frame.Frame, tableID string) (string, error) {
	path := e.paths.DatabasePath(e.databaseName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(tableID))); err != nil {
		return "", fmt.Errorf("failed to drop existing table: %w", err)
	}

	columns := make([]string, f.NumCols())
	placeholders := make([]string, f.NumCols())
	for c := 0; c < f.NumCols(); c++ {
		col := f.ColumnAt(c)
		sqlType := "TEXT"
		if col.Kind == frame.Number {
			sqlType = "REAL"
		}
		columns[c] = fmt.Sprintf("%s %s", quoteIdent(col.Name), sqlType)
		placeholders[c] = "?"
	}

	createStmt := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(tableID), strings.Join(columns, ", "))
	if _, err := tx.Exec(createStmt); err != nil {
		return "", fmt.Errorf("failed to create table: %w", err)
	}

	insertStmt := fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quoteIdent(tableID), strings.Join(placeholders, ", "))
	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, f.NumCols())
	for r := 0; r < f.NumRows(); r++ {
		for c := 0; c < f.NumCols(); c++ {
			col := f.ColumnAt(c)
			switch {
			case col.IsMissing(r):
				args[c] = nil
			case col.Kind == frame.Number:
				args[c] = col.Nums[r]
			default:
				args[c] = col.Text[r]
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return "", fmt.Errorf("failed to insert row %d: %w", r, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return path, nil
}

// quoteIdent quotes a SQL identifier; embedded quotes are doubled.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
