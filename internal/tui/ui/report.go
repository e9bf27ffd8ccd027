package ui

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/wslup/internal/domain/execution"
)

var titleCaser = cases.Title(language.English)

// ModeTitle turns a run mode such as "fix-missing" into "Fix Missing".
func ModeTitle(mode execution.RunMode) string {
	return titleCaser.String(strings.ReplaceAll(mode.String(), "-", " "))
}

// VerdictIcon returns the glyph shown in front of an entry.
func VerdictIcon(v execution.Verdict) string {
	switch v {
	case execution.VerdictPass:
		return "✓"
	case execution.VerdictWarn:
		return "⚠"
	case execution.VerdictFail:
		return "✗"
	default:
		return "○"
	}
}

func (s Styles) verdict(v execution.Verdict) func(...string) string {
	switch v {
	case execution.VerdictPass:
		return s.Success.Render
	case execution.VerdictWarn:
		return s.Warning.Render
	default:
		return s.Error.Render
	}
}

// RenderReport renders the summary of a run: one line per step followed by
// the totals in a panel.
func RenderReport(r execution.Report, s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("wslup summary"))
	b.WriteString(" ")
	b.WriteString(s.Subtitle.Render("(" + ModeTitle(r.Mode()) + ")"))
	b.WriteString("\n\n")

	for _, entry := range r.Entries() {
		b.WriteString(renderEntry(entry, s))
		b.WriteString("\n")
	}
	if r.Total() == 0 {
		b.WriteString(s.Muted.Render("  no steps selected"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	totals := fmt.Sprintf("%s  %s  %s  %s",
		s.Success.Render(fmt.Sprintf("%d passed", r.Passed())),
		s.Warning.Render(fmt.Sprintf("%d warned", r.Warned())),
		s.Error.Render(fmt.Sprintf("%d failed", r.Failed())),
		s.Muted.Render(fmt.Sprintf("%.0f%% in %s", r.SuccessRate()*100, r.Duration().Round(time.Millisecond))),
	)
	b.WriteString(s.Panel.Render(totals))
	b.WriteString("\n")

	if r.Cancelled() {
		b.WriteString(s.Warning.Render("Run was cancelled; remaining steps were skipped."))
		b.WriteString("\n")
	}
	return b.String()
}

func renderEntry(entry execution.Entry, s Styles) string {
	render := s.verdict(entry.Verdict())
	line := "  " + render(VerdictIcon(entry.Verdict())) + " " + s.Text.Render(entry.Name())

	outcome := entry.Outcome()
	switch {
	case !outcome.IsSuccess() && outcome.Reason() != "":
		line += " " + s.Muted.Render(outcome.Kind().String()+": "+outcome.Reason())
	case entry.UsedFallback():
		line += " " + s.Muted.Render("via fallback")
	case entry.Applied():
		line += " " + s.Muted.Render("installed")
	}
	if entry.Optional() {
		line += " " + s.Muted.Render("(optional)")
	}
	return line
}
