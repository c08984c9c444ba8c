package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathsConfig contains the file system layout. Relative paths are resolved
// against the current working directory at load time so output landing spots
// are unambiguous in logs.
type PathsConfig struct {
	// DataDir holds the source spreadsheet files.
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data/source" validate:"required"`
	// ProcessedDir is the root under which per-format subdirectories live.
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" default:"data/processed" validate:"required"`
	// LogsDir holds application logs.
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

func (p *PathsConfig) resolve() error {
	for _, dir := range []*string{&p.DataDir, &p.ProcessedDir, &p.LogsDir} {
		if *dir == "" || filepath.IsAbs(*dir) {
			continue
		}
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", *dir, err)
		}
		*dir = abs
	}
	return nil
}

// ParquetDir returns the columnar export directory.
func (p *PathsConfig) ParquetDir() string { return filepath.Join(p.ProcessedDir, "parquet") }

// CSVDir returns the delimited-text export directory.
func (p *PathsConfig) CSVDir() string { return filepath.Join(p.ProcessedDir, "csv") }

// JSONDir returns the structured-record export directory.
func (p *PathsConfig) JSONDir() string { return filepath.Join(p.ProcessedDir, "json") }

// DatabaseDir returns the relational-file export directory.
func (p *PathsConfig) DatabaseDir() string { return filepath.Join(p.ProcessedDir, "database") }

// SourcePath returns the on-disk location of a source spreadsheet.
func (p *PathsConfig) SourcePath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// ParquetPath returns the columnar artifact path for a table.
func (p *PathsConfig) ParquetPath(tableID string) string {
	return filepath.Join(p.ParquetDir(), tableID+".parquet")
}

// CSVPath returns the delimited-text artifact path for a table.
func (p *PathsConfig) CSVPath(tableID string) string {
	return filepath.Join(p.CSVDir(), tableID+".csv")
}

// JSONPath returns the structured-record artifact path for a table.
func (p *PathsConfig) JSONPath(tableID string) string {
	return filepath.Join(p.JSONDir(), tableID+".json")
}

// DatabasePath returns the sqlite database file path.
func (p *PathsConfig) DatabasePath(name string) string {
	return filepath.Join(p.DatabaseDir(), name)
}

// EnsureOutputDirectories creates the per-format export directories.
func (p *PathsConfig) EnsureOutputDirectories() error {
	for _, dir := range []string{p.ParquetDir(), p.CSVDir(), p.JSONDir(), p.DatabaseDir(), p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
