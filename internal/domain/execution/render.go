package execution

import (
	"fmt"
	"strings"
	"time"
)

// verdictLabels are the fixed-width entry labels used by RenderText.
var verdictLabels = map[Verdict]string{
	VerdictPass: "[PASS]",
	VerdictWarn: "[WARN]",
	VerdictFail: "[FAIL]",
}

// Label returns the fixed-width label for a verdict.
func (v Verdict) Label() string {
	if label, ok := verdictLabels[v]; ok {
		return label
	}
	return "[????]"
}

// RenderText renders the report as plain text. It performs no I/O.
func RenderText(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summary (%s)\n", r.Mode())
	for _, entry := range r.Entries() {
		b.WriteString(RenderEntry(entry))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(RenderTotals(r))
	b.WriteString("\n")
	if r.Cancelled() {
		b.WriteString("Run was cancelled; remaining steps were skipped.\n")
	}

	return b.String()
}

// RenderEntry renders a single report line.
func RenderEntry(entry Entry) string {
	line := entry.Verdict().Label() + " " + entry.Name()
	if reason := entry.Outcome().Reason(); reason != "" && !entry.Outcome().IsSuccess() {
		line += " (" + entry.Outcome().Kind().String() + ": " + reason + ")"
	}
	if entry.UsedFallback() && entry.Outcome().IsSuccess() {
		line += " (via fallback)"
	}
	return line
}

// RenderTotals renders the one-line tally.
func RenderTotals(r Report) string {
	return fmt.Sprintf("Total: %d  Passed: %d  Warned: %d  Failed: %d  Success rate: %.1f%%  Duration: %s",
		r.Total(), r.Passed(), r.Warned(), r.Failed(), r.SuccessRate()*100, r.Duration().Round(time.Second))
}
