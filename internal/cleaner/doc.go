// Package cleaner standardizes raw tables into the canonical form the rest
// of the pipeline consumes: artifact rows removed by an ordered list of
// named predicates, missing-value tokens normalized, columns renamed per
// the advisory mapping resource, non-period columns coerced to numeric, and
// the period column rewritten to its canonical text form.
package cleaner
