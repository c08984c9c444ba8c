// Package loader opens the source spreadsheets and produces raw all-text
// frames. Header and first-data rows are located heuristically because the
// published sheet layouts drift between releases; failed detection falls
// back to the known fixed row indexes with a warning. Title and unit
// annotations are scraped from the leading metadata rows when present.
package loader
