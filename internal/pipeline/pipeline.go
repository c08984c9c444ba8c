// Package pipeline composes the per-table processing stages: load, clean,
// enrich, validate, export. Each table runs independently; a failure in one
// table is recorded and the run continues with the rest.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tradestats/internal/cleaner"
	"tradestats/internal/config"
	"tradestats/internal/exporter"
	"tradestats/internal/loader"
	"tradestats/internal/transformer"
	"tradestats/internal/validator"
)

// Options control a single run.
type Options struct {
	// Tables is the list of table identifiers to process.
	Tables []string

	// Formats lists the export formats. Ignored when ValidateOnly is set.
	Formats []string

	// ValidateOnly skips the export stage regardless of validation outcome.
	ValidateOnly bool

	// DataMonth is an informational marker recorded in the enriched output
	// (e.g. "114-08"). Empty means not recorded.
	DataMonth string
}

// TableResult records the outcome of one table's pipeline.
type TableResult struct {
	TableID    string
	Success    bool
	Err        error
	Rows       int
	Columns    int
	Validation *validator.Result
	Outputs    map[string]string
	Duration   time.Duration
}

// Summary aggregates a whole run.
type Summary struct {
	RunID     string
	Results   []TableResult
	Processed int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// SuccessRate returns the fraction of succeeded tables as a percentage.
func (s *Summary) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Processed) * 100
}

// AllSucceeded reports whether every processed table completed without error.
func (s *Summary) AllSucceeded() bool {
	return s.Failed == 0 && s.Processed > 0
}

// Orchestrator wires the stages together.
type Orchestrator struct {
	loader      *loader.Loader
	cleaner     *cleaner.Cleaner
	transformer *transformer.Transformer
	validator   *validator.Validator
	exporter    *exporter.Exporter
	logger      *slog.Logger
	now         func() time.Time
}

// New builds an orchestrator from the loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	mappings := config.LoadColumnMappings(cfg.Pipeline.ColumnMappings, logger)
	return &Orchestrator{
		loader:      loader.New(&cfg.Paths, logger),
		cleaner:     cleaner.New(mappings, logger),
		transformer: transformer.New(logger),
		validator:   validator.New(logger),
		exporter:    exporter.New(&cfg.Paths, cfg.Pipeline.DatabaseName, logger),
		logger:      logger,
		now:         time.Now,
	}
}

// Run processes every table named in opts and returns the aggregated summary.
// The summary is always non-nil; per-table failures are recorded in it rather
// than returned.
func (o *Orchestrator) Run(opts Options) *Summary {
	runID := uuid.New().String()
	logger := o.logger.With(slog.String("run_id", runID))
	start := o.now()

	logger.Info("pipeline run started",
		slog.Int("tables", len(opts.Tables)),
		slog.Bool("validate_only", opts.ValidateOnly),
		slog.Any("formats", opts.Formats))

	summary := &Summary{RunID: runID}
	for _, tableID := range opts.Tables {
		result := o.processTable(logger, tableID, opts)
		summary.Results = append(summary.Results, result)
		summary.Processed++
		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.Duration = o.now().Sub(start)

	logger.Info("pipeline run finished",
		slog.Int("processed", summary.Processed),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Float64("success_rate_pct", summary.SuccessRate()),
		slog.Duration("duration", summary.Duration))

	return summary
}

// processTable runs the full stage sequence for one table. Panics from any
// stage are recovered and recorded as that table's failure.
func (o *Orchestrator) processTable(logger *slog.Logger, tableID string, opts Options) (result TableResult) {
	result = TableResult{TableID: tableID}
	start := o.now()
	defer func() {
		result.Duration = o.now().Sub(start)
		if r := recover(); r != nil {
			result.Success = false
			result.Err = fmt.Errorf("panic processing %s: %v", tableID, r)
			logger.Error("table processing panicked",
				slog.String("table_id", tableID),
				slog.Any("panic", r))
		}
	}()

	logger = logger.With(slog.String("table_id", tableID))

	raw, meta, err := o.loader.LoadTable(tableID)
	if err != nil {
		result.Err = fmt.Errorf("load %s: %w", tableID, err)
		logger.Error("load failed", slog.String("error", err.Error()))
		return result
	}

	cleaned := o.cleaner.Clean(raw, tableID)

	enriched := o.transformer.Enrich(cleaned, tableID, transformer.EnrichOptions{
		SourceFile: meta.FileName,
		DataMonth:  opts.DataMonth,
	})

	result.Rows = enriched.NumRows()
	result.Columns = enriched.NumCols()

	result.Validation = o.validator.Validate(enriched, tableID)
	if !result.Validation.Passed {
		logger.Warn("validation reported errors",
			slog.Int("errors", len(result.Validation.Errors)),
			slog.Int("warnings", len(result.Validation.Warnings)))
	}

	if opts.ValidateOnly {
		result.Success = true
		logger.Info("validate-only, export skipped",
			slog.Bool("passed", result.Validation.Passed))
		return result
	}

	outputs, err := o.exporter.Export(enriched, tableID, opts.Formats)
	if err != nil {
		result.Err = fmt.Errorf("export %s: %w", tableID, err)
		logger.Error("export failed", slog.String("error", err.Error()))
		return result
	}
	result.Outputs = outputs
	result.Success = true

	logger.Info("table processed",
		slog.Int("rows", result.Rows),
		slog.Int("columns", result.Columns),
		slog.Bool("validation_passed", result.Validation.Passed),
		slog.Int("outputs", len(outputs)),
		slog.Duration("duration", o.now().Sub(start)))

	return result
}
