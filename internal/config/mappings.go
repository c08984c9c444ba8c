package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

//go:embed column_mappings.json
var defaultColumnMappings []byte

// ColumnMappings maps a table identifier to its source-label → canonical
// name substitutions. The mapping is advisory: columns without an entry are
// kept under their source label.
type ColumnMappings map[string]map[string]string

// ForTable returns the rename map for a table identifier, or nil when the
// table has no entry.
func (m ColumnMappings) ForTable(tableID string) map[string]string {
	return m[tableID]
}

// LoadColumnMappings reads the column-mapping resource. An empty path uses
// the embedded default. A missing or unreadable file degrades to an empty
// mapping (no renaming) with a warning, never an error.
func LoadColumnMappings(path string, logger *slog.Logger) ColumnMappings {
	if logger == nil {
		logger = slog.Default()
	}

	data := defaultColumnMappings
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("column mappings file not found, renaming disabled",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return ColumnMappings{}
		}
		data = fileData
	}

	var mappings ColumnMappings
	if err := json.Unmarshal(data, &mappings); err != nil {
		logger.Warn("failed to parse column mappings, renaming disabled",
			slog.String("error", err.Error()))
		return ColumnMappings{}
	}
	return mappings
}

// MustDefaultColumnMappings parses the embedded mapping resource and panics
// on failure. The embedded resource is part of the build, so a parse failure
// is a programming error.
func MustDefaultColumnMappings() ColumnMappings {
	var mappings ColumnMappings
	if err := json.Unmarshal(defaultColumnMappings, &mappings); err != nil {
		panic(fmt.Sprintf("embedded column mappings are invalid: %v", err))
	}
	return mappings
}
