package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/felixgeelhaar/wslup/internal/domain/execution"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
)

// Progress prints one line when a step starts and one when it finishes.
// It implements execution.Observer.
type Progress struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
}

// NewProgress creates a Progress writing to out.
func NewProgress(out io.Writer, styles Styles) *Progress {
	return &Progress{out: out, styles: styles}
}

// StepStarted prints the step about to run.
func (p *Progress) StepStarted(step provision.Step) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := step.Name()
	if desc := step.Description(); desc != "" {
		label = desc
	}
	_, _ = fmt.Fprintf(p.out, "%s %s\n", p.styles.Info.Render("→"), label)
}

// StepFinished prints the verdict of a finished step.
func (p *Progress) StepFinished(entry execution.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	render := p.styles.verdict(entry.Verdict())
	_, _ = fmt.Fprintf(p.out, "%s %s %s\n",
		render(VerdictIcon(entry.Verdict())),
		entry.Name(),
		p.styles.Muted.Render(entry.Duration().Round(time.Millisecond).String()),
	)
}

var _ execution.Observer = (*Progress)(nil)
