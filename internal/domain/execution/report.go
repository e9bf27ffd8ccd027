package execution

import "time"

// Report is the aggregated result of one run. It is read-only once built.
type Report struct {
	mode      RunMode
	total     int
	passed    int
	failed    int
	warned    int
	entries   []Entry
	cancelled bool
	duration  time.Duration
}

// Mode returns the run mode that produced the report.
func (r Report) Mode() RunMode { return r.mode }

// Total returns the number of recorded entries.
func (r Report) Total() int { return r.total }

// Passed returns the number of passing entries.
func (r Report) Passed() int { return r.passed }

// Failed returns the number of failing entries.
func (r Report) Failed() int { return r.failed }

// Warned returns the number of warning entries.
func (r Report) Warned() int { return r.warned }

// Cancelled returns true if the run was interrupted between steps.
func (r Report) Cancelled() bool { return r.cancelled }

// Duration returns the wall-clock time of the run.
func (r Report) Duration() time.Duration { return r.duration }

// Entries returns the recorded entries in execution order.
func (r Report) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// SuccessRate returns passed/total, or 0 for an empty report.
func (r Report) SuccessRate() float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.passed) / float64(r.total)
}

// HasFailures returns true if any required step failed.
func (r Report) HasFailures() bool {
	return r.failed > 0
}

// Aggregator folds entries into a Report.
type Aggregator struct {
	report  Report
	started time.Time
	now     func() time.Time
}

// NewAggregator creates an Aggregator for a run of the given mode.
func NewAggregator(mode RunMode) *Aggregator {
	return newAggregatorWithClock(mode, time.Now)
}

func newAggregatorWithClock(mode RunMode, now func() time.Time) *Aggregator {
	return &Aggregator{
		report:  Report{mode: mode},
		started: now(),
		now:     now,
	}
}

// Record appends an entry and increments the counter matching its verdict.
func (a *Aggregator) Record(entry Entry) {
	a.report.entries = append(a.report.entries, entry)
	a.report.total++

	switch entry.Verdict() {
	case VerdictPass:
		a.report.passed++
	case VerdictWarn:
		a.report.warned++
	case VerdictFail:
		a.report.failed++
	}
}

// MarkCancelled flags the run as interrupted.
func (a *Aggregator) MarkCancelled() {
	a.report.cancelled = true
}

// SuccessRate returns passed/total of what has been recorded so far.
func (a *Aggregator) SuccessRate() float64 {
	return a.report.SuccessRate()
}

// Report returns a snapshot of the aggregated report.
func (a *Aggregator) Report() Report {
	r := a.report
	r.entries = make([]Entry, len(a.report.entries))
	copy(r.entries, a.report.entries)
	r.duration = a.now().Sub(a.started)
	return r
}
