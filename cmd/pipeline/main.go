// Command pipeline runs the trade-statistics ingestion: it loads the source
// spreadsheets, cleans and enriches them, validates the result and writes the
// export artifacts. Exit status is 0 only when every selected table succeeds.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"tradestats/internal/config"
	"tradestats/internal/infrastructure"
	"tradestats/internal/pipeline"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (optional)")
	dataDir := flag.String("data-dir", "", "override the source spreadsheet directory")
	outDir := flag.String("out-dir", "", "override the processed-data output directory")
	month := flag.String("month", "", "data month marker recorded in the output, e.g. 114-08 (informational)")
	all := flag.Bool("all", false, "process all sixteen tables")
	tables := flag.String("tables", "", "comma-separated table identifiers to process, e.g. table02,table08")
	validateOnly := flag.Bool("validate-only", false, "run validation and skip export")
	formats := flag.String("format", "", "comma-separated export formats: parquet,csv,json,sqlite (default from config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.Paths.ProcessedDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	selected, err := selectTables(cfg, *all, *tables)
	if err != nil {
		logger.Error("invalid table selection", "error", err)
		os.Exit(1)
	}

	runFormats := cfg.Pipeline.Formats
	if *formats != "" {
		runFormats = splitList(*formats)
	}

	if err := cfg.Paths.EnsureOutputDirectories(); err != nil {
		logger.Error("failed to create output directories", "error", err)
		os.Exit(1)
	}

	orch := pipeline.New(cfg, logger)
	summary := orch.Run(pipeline.Options{
		Tables:       selected,
		Formats:      runFormats,
		ValidateOnly: *validateOnly,
		DataMonth:    *month,
	})

	fmt.Print(summary.Report())

	if !summary.AllSucceeded() {
		os.Exit(1)
	}
}

// selectTables resolves the -all / -tables flags into the run's table list.
// With neither flag, the configured priority subset is processed.
func selectTables(cfg *config.Config, all bool, tables string) ([]string, error) {
	if all && tables != "" {
		return nil, fmt.Errorf("-all and -tables are mutually exclusive")
	}
	if all {
		return config.AllTableIDs(), nil
	}
	if tables == "" {
		return cfg.Pipeline.PriorityTables, nil
	}
	ids := splitList(tables)
	for _, id := range ids {
		if !config.IsValidTable(id) {
			return nil, fmt.Errorf("%w: %s", config.ErrUnknownTable, id)
		}
	}
	return ids, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
