package execution

import (
	"context"
	"time"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Observer receives per-step callbacks while a run is in progress.
type Observer interface {
	StepStarted(step provision.Step)
	StepFinished(entry Entry)
}

// Executor runs registry steps sequentially under a RunMode.
type Executor struct {
	logger    ports.Logger
	observer  Observer
	selection []string
	now       func() time.Time
}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{
		now: time.Now,
	}
}

// WithLogger returns an Executor that logs every step transition.
func (e *Executor) WithLogger(logger ports.Logger) *Executor {
	c := *e
	c.logger = logger
	return &c
}

// WithObserver returns an Executor that reports progress to the observer.
func (e *Executor) WithObserver(observer Observer) *Executor {
	c := *e
	c.observer = observer
	return &c
}

// WithSelection returns an Executor restricted to the named steps.
// Steps still run in registration order, not selection order.
func (e *Executor) WithSelection(names ...string) *Executor {
	c := *e
	c.selection = append([]string(nil), names...)
	return &c
}

// Run executes the selected steps of the registry and returns the report.
// A failing step never stops the run. Cancellation of ctx is honored between
// steps: remaining steps are recorded as skipped and nothing is rolled back.
// An error is returned only when the run cannot start.
func (e *Executor) Run(ctx context.Context, mode RunMode, registry *provision.Registry) (Report, error) {
	if _, err := ParseRunMode(string(mode)); err != nil {
		return Report{}, err
	}

	steps, err := e.selectSteps(registry)
	if err != nil {
		return Report{}, err
	}

	logger := e.log()
	agg := newAggregatorWithClock(mode, e.now)
	// A step in flight finishes even if ctx is cancelled; cancellation is
	// only observed between steps.
	runCtx := provision.NewRunContext(context.WithoutCancel(ctx))

	logger.Info(ctx, "run started", ports.F("mode", mode.String()), ports.F("steps", len(steps)))

	for i, step := range steps {
		if ctx.Err() != nil {
			e.skipRemaining(ctx, agg, mode, steps[i:])
			break
		}
		if !mode.Selects(step) {
			continue
		}

		entry, recorded := e.runStep(runCtx, mode, step)
		if recorded {
			agg.Record(entry)
		}
	}

	report := agg.Report()
	logger.Info(ctx, "run finished",
		ports.F("mode", mode.String()),
		ports.F("total", report.Total()),
		ports.F("passed", report.Passed()),
		ports.F("warned", report.Warned()),
		ports.F("failed", report.Failed()),
		ports.F("cancelled", report.Cancelled()),
	)
	return report, nil
}

// selectSteps resolves the selection against the registry, keeping registration order.
func (e *Executor) selectSteps(registry *provision.Registry) ([]provision.Step, error) {
	all := registry.All()
	if len(e.selection) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(e.selection))
	for _, name := range e.selection {
		if _, err := registry.ByName(name); err != nil {
			return nil, err
		}
		wanted[name] = true
	}

	steps := make([]provision.Step, 0, len(wanted))
	for _, step := range all {
		if wanted[step.Name()] {
			steps = append(steps, step)
		}
	}
	return steps, nil
}

// skipRemaining records the steps a cancelled run never reached. Fix-missing
// counts only steps found absent, so unchecked steps are left out there.
func (e *Executor) skipRemaining(ctx context.Context, agg *Aggregator, mode RunMode, steps []provision.Step) {
	agg.MarkCancelled()
	e.log().Warn(ctx, "run cancelled", ports.F("remaining", len(steps)))

	if mode == ModeFixMissing {
		return
	}
	for _, step := range steps {
		if !mode.Selects(step) {
			continue
		}
		entry := NewEntry(step, provision.Skipped("run cancelled"))
		agg.Record(entry)
		e.notifyFinished(entry)
	}
}

// runStep executes one step. The boolean is false when the mode excludes the
// step after its check (fix-missing on a present component).
func (e *Executor) runStep(runCtx provision.RunContext, mode RunMode, step provision.Step) (Entry, bool) {
	ctx := runCtx.Context()
	logger := e.log().With(ports.F("step", step.Name()))
	runCtx = runCtx.WithLogger(logger)

	if e.observer != nil {
		e.observer.StepStarted(step)
	}
	start := e.now()

	finish := func(entry Entry) Entry {
		entry = entry.WithDuration(e.now().Sub(start))
		logger.Info(ctx, "step finished",
			ports.F("outcome", entry.Outcome().String()),
			ports.F("verdict", string(entry.Verdict())),
		)
		e.notifyFinished(entry)
		return entry
	}

	presence, skip := e.check(runCtx, logger, step)
	if skip != nil {
		entry := NewEntry(step, provision.Skipped(skip.Reason))
		return finish(entry), mode != ModeFixMissing
	}
	entry := NewEntry(step, provision.Success()).WithPresence(presence)

	if mode == ModeCheckOnly {
		return finish(entry.WithOutcome(e.verify(runCtx, logger, step))), true
	}

	if presence == provision.Present {
		if mode == ModeFixMissing {
			return finish(entry.WithOutcome(provision.Skipped("already present"))), false
		}
		return finish(entry.WithOutcome(e.verify(runCtx, logger, step))), true
	}

	applyOutcome, usedFallback := e.apply(runCtx, logger, step)
	entry = entry.WithApplied(true, usedFallback)
	if applyOutcome.IsSkipped() {
		return finish(entry.WithOutcome(applyOutcome)), true
	}

	verifyOutcome := e.verify(runCtx, logger, step)
	if applyOutcome.IsFailure() {
		return finish(entry.WithOutcome(applyOutcome)), true
	}
	return finish(entry.WithOutcome(verifyOutcome)), true
}

// check runs the step's check. A check error counts as absent so the
// component gets (re)installed. A skip error takes the step out of the run.
func (e *Executor) check(runCtx provision.RunContext, logger ports.Logger, step provision.Step) (provision.Presence, *provision.SkipError) {
	ctx := runCtx.Context()

	presence, err := step.Check(runCtx)
	if err != nil {
		if skip, ok := provision.AsSkip(err); ok {
			logger.Info(ctx, "step not applicable", ports.F("reason", skip.Reason))
			return provision.Absent, skip
		}
		logger.Warn(ctx, "check failed, treating as absent",
			ports.F("error", provision.NewCheckFailedError(step.Name(), err).Error()),
		)
		return provision.Absent, nil
	}
	if presence != provision.Present {
		presence = provision.Absent
	}

	logger.Debug(ctx, "checked", ports.F("presence", presence.String()))
	return presence, nil
}

// apply runs the primary apply and, if it fails, the fallback exactly once.
func (e *Executor) apply(runCtx provision.RunContext, logger ports.Logger, step provision.Step) (provision.Outcome, bool) {
	ctx := runCtx.Context()

	logger.Info(ctx, "applying")
	err := step.Apply(runCtx)
	if err == nil {
		return provision.Success(), false
	}
	if skip, ok := provision.AsSkip(err); ok {
		logger.Info(ctx, "apply skipped", ports.F("reason", skip.Reason))
		return provision.Skipped(skip.Reason), false
	}

	applyErr := provision.NewApplyFailedError(step.Name(), err)
	if !step.HasFallback() {
		logger.Error(ctx, "apply failed", ports.F("error", applyErr.Error()))
		return provision.Failure(applyErr), false
	}

	logger.Warn(ctx, "apply failed, trying fallback", ports.F("error", err.Error()))
	fallbackErr := step.Fallback(runCtx)
	if fallbackErr == nil {
		logger.Info(ctx, "fallback succeeded")
		return provision.Success(), true
	}
	if skip, ok := provision.AsSkip(fallbackErr); ok {
		logger.Info(ctx, "fallback skipped", ports.F("reason", skip.Reason))
		return provision.Failure(applyErr), true
	}

	failure := provision.NewFallbackFailedError(step.Name(), err, fallbackErr)
	logger.Error(ctx, "fallback failed", ports.F("error", fallbackErr.Error()))
	return provision.Failure(failure), true
}

func (e *Executor) verify(runCtx provision.RunContext, logger ports.Logger, step provision.Step) provision.Outcome {
	ctx := runCtx.Context()

	err := step.Verify(runCtx)
	if err == nil {
		logger.Debug(ctx, "verified")
		return provision.Success()
	}
	if skip, ok := provision.AsSkip(err); ok {
		return provision.Skipped(skip.Reason)
	}

	verifyErr := provision.NewVerifyFailedError(step.Name(), err)
	logger.Warn(ctx, "verify failed", ports.F("error", err.Error()))
	return provision.Failure(verifyErr)
}

func (e *Executor) notifyFinished(entry Entry) {
	if e.observer != nil {
		e.observer.StepFinished(entry)
	}
}

func (e *Executor) log() ports.Logger {
	if e.logger != nil {
		return e.logger
	}
	return provision.NewRunContext(context.Background()).Logger()
}
