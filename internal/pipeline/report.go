package pipeline

import (
	"fmt"
	"strings"
)

// Report renders the human-readable run summary printed at the end of a CLI
// run: one line per table plus the aggregate totals.
func (s *Summary) Report() string {
	var b strings.Builder
	b.WriteString("Run summary\n")
	fmt.Fprintf(&b, "  run id: %s\n", s.RunID)
	for _, r := range s.Results {
		status := "OK"
		if !r.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "  %-9s %-6s rows=%d cols=%d", r.TableID, status, r.Rows, r.Columns)
		if r.Validation != nil {
			fmt.Fprintf(&b, " validation=%s errors=%d warnings=%d",
				passLabel(r.Validation.Passed), len(r.Validation.Errors), len(r.Validation.Warnings))
		}
		if r.Err != nil {
			fmt.Fprintf(&b, " error=%v", r.Err)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  processed=%d succeeded=%d failed=%d success_rate=%.1f%%\n",
		s.Processed, s.Succeeded, s.Failed, s.SuccessRate())
	return b.String()
}

func passLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}
