package validator

import "fmt"

// Result holds the outcome of one validation call: a pass/fail flag with
// itemized errors and warnings, plus the shape of the table it describes.
// Appending an error forces Passed false; warnings never do.
type Result struct {
	TableID     string
	Passed      bool
	Errors      []string
	Warnings    []string
	RowCount    int
	ColumnCount int
}

// AddError appends an error and fails the result.
func (r *Result) AddError(message string) {
	r.Errors = append(r.Errors, message)
	r.Passed = false
}

// AddWarning appends a warning without affecting the pass flag.
func (r *Result) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// Summary renders a short human-readable report.
func (r *Result) Summary() string {
	status := "PASSED"
	if !r.Passed {
		status = "FAILED"
	}
	return fmt.Sprintf("validation %s for %s: rows=%d columns=%d errors=%d warnings=%d",
		status, r.TableID, r.RowCount, r.ColumnCount, len(r.Errors), len(r.Warnings))
}
