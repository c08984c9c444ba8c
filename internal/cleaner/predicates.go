package cleaner

import "strings"

// rowPredicate names one artifact-row rule. Predicates are evaluated in a
// fixed order against the first cell of each row; the first match drops the
// row. Keeping them as named entries makes the filtering policy testable on
// its own.
type rowPredicate struct {
	name  string
	match func(firstCell string, missing bool) bool
}

// headerLabelFragments mark sub-header rows: repeated growth-rate, share and
// amount labels that the source sheets interleave between data rows.
var headerLabelFragments = []string{"年增率", "占總出口", "占比", "金額"}

// comparisonLabelFragments mark month-over-month comparison rows
// ("compared to previous ..." variants).
var comparisonLabelFragments = []string{"較上", "增減"}

// artifactPredicates is the fixed, ordered row-filtering policy.
var artifactPredicates = []rowPredicate{
	{
		// Sub-header and spacer rows carry no period identifier.
		name: "first_cell_empty",
		match: func(cell string, missing bool) bool {
			return missing || cell == ""
		},
	},
	{
		name: "header_label",
		match: func(cell string, _ bool) bool {
			return containsAny(cell, headerLabelFragments)
		},
	},
	{
		name: "comparison_label",
		match: func(cell string, _ bool) bool {
			return containsAny(cell, comparisonLabelFragments)
		},
	},
	{
		// A month marker without a year marker is a header fragment in the
		// known inputs. A future single-month row missing its year prefix
		// would be dropped too; the source format gives no way to tell the
		// two apart.
		name: "bare_month_without_year",
		match: func(cell string, _ bool) bool {
			return strings.Contains(cell, "月") && !strings.Contains(cell, "年")
		},
	},
}

// isArtifactRow reports whether a first-cell value marks an artifact row,
// along with the name of the matching rule.
func isArtifactRow(cell string, missing bool) (bool, string) {
	for _, p := range artifactPredicates {
		if p.match(cell, missing) {
			return true, p.name
		}
	}
	return false, ""
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
