package execution

// Summary is the machine-readable form of a Report, suitable for encoding
// as JSON.
type Summary struct {
	Mode        string        `json:"mode"`
	Total       int           `json:"total"`
	Passed      int           `json:"passed"`
	Warned      int           `json:"warned"`
	Failed      int           `json:"failed"`
	SuccessRate float64       `json:"success_rate"`
	Cancelled   bool          `json:"cancelled"`
	DurationMS  int64         `json:"duration_ms"`
	Steps       []StepSummary `json:"steps"`
}

// StepSummary is one entry of a Summary.
type StepSummary struct {
	Name         string `json:"name"`
	Verdict      string `json:"verdict"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason,omitempty"`
	Optional     bool   `json:"optional"`
	Applied      bool   `json:"applied"`
	UsedFallback bool   `json:"used_fallback"`
	DurationMS   int64  `json:"duration_ms"`
}

// Summarize converts a Report into a Summary.
func Summarize(r Report) Summary {
	entries := r.Entries()
	steps := make([]StepSummary, 0, len(entries))
	for _, e := range entries {
		steps = append(steps, StepSummary{
			Name:         e.Name(),
			Verdict:      string(e.Verdict()),
			Outcome:      e.Outcome().Kind().String(),
			Reason:       e.Outcome().Reason(),
			Optional:     e.Optional(),
			Applied:      e.Applied(),
			UsedFallback: e.UsedFallback(),
			DurationMS:   e.Duration().Milliseconds(),
		})
	}

	return Summary{
		Mode:        r.Mode().String(),
		Total:       r.Total(),
		Passed:      r.Passed(),
		Warned:      r.Warned(),
		Failed:      r.Failed(),
		SuccessRate: r.SuccessRate(),
		Cancelled:   r.Cancelled(),
		DurationMS:  r.Duration().Milliseconds(),
		Steps:       steps,
	}
}
