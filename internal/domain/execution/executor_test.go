package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
)

// fakeStep builds a provision.Step whose behaviour is scripted and whose
// invocations are counted.
type fakeStep struct {
	name     string
	optional bool

	presence provision.Presence
	checkErr error

	// installs flips presence to Present after a successful apply or fallback.
	installs    bool
	applyErr    error
	hasFallback bool
	fallbackErr error
	verifyErr   error
	hasVerify   bool

	checkCalls    int
	applyCalls    int
	fallbackCalls int
	verifyCalls   int

	onApply func()
}

func (f *fakeStep) build(t *testing.T) provision.Step {
	t.Helper()

	opts := []provision.StepOption{provision.WithOptional(f.optional)}
	if f.hasFallback {
		opts = append(opts, provision.WithFallback(func(_ provision.RunContext) error {
			f.fallbackCalls++
			if f.fallbackErr == nil && f.installs {
				f.presence = provision.Present
			}
			return f.fallbackErr
		}))
	}
	if f.hasVerify {
		opts = append(opts, provision.WithVerify(func(_ provision.RunContext) error {
			f.verifyCalls++
			return f.verifyErr
		}))
	}

	step, err := provision.NewStep(f.name,
		func(_ provision.RunContext) (provision.Presence, error) {
			f.checkCalls++
			return f.presence, f.checkErr
		},
		func(_ provision.RunContext) error {
			f.applyCalls++
			if f.onApply != nil {
				f.onApply()
			}
			if f.applyErr == nil && f.installs {
				f.presence = provision.Present
			}
			return f.applyErr
		},
		opts...,
	)
	require.NoError(t, err)
	return step
}

func newRegistry(t *testing.T, steps ...*fakeStep) *provision.Registry {
	t.Helper()

	r := provision.NewRegistry()
	for _, s := range steps {
		require.NoError(t, r.Register(s.build(t)))
	}
	return r
}

var errInstall = errors.New("install failed")

func TestExecutor_EmptyRegistry(t *testing.T) {
	for _, mode := range Modes {
		t.Run(mode.String(), func(t *testing.T) {
			report, err := NewExecutor().Run(context.Background(), mode, provision.NewRegistry())
			require.NoError(t, err)

			assert.Equal(t, 0, report.Total())
			assert.Empty(t, report.Entries())
			assert.Equal(t, 0.0, report.SuccessRate())
		})
	}
}

func TestExecutor_InvalidMode(t *testing.T) {
	_, err := NewExecutor().Run(context.Background(), RunMode("yolo"), provision.NewRegistry())
	assert.Error(t, err)
}

// Scenario: StepA absent, installs and verifies; StepB already present.
func TestExecutor_FullInstall_AbsentAndPresent(t *testing.T) {
	stepA := &fakeStep{name: "step:a", presence: provision.Absent, installs: true, hasVerify: true}
	stepB := &fakeStep{name: "step:b", presence: provision.Present}
	registry := newRegistry(t, stepA, stepB)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total())
	assert.Equal(t, 2, report.Passed())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 0, report.Warned())

	assert.Equal(t, 1, stepA.applyCalls)
	assert.Equal(t, 1, stepA.verifyCalls)
	assert.Equal(t, 0, stepB.applyCalls, "present step must not be applied")

	entries := report.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "step:a", entries[0].Name())
	assert.True(t, entries[0].Applied())
	assert.Equal(t, provision.Absent, entries[0].Presence())
	assert.Equal(t, "step:b", entries[1].Name())
	assert.False(t, entries[1].Applied())
}

// Scenario: StepC primary fails, fallback succeeds.
func TestExecutor_FullInstall_FallbackSucceeds(t *testing.T) {
	stepC := &fakeStep{
		name:        "step:c",
		presence:    provision.Absent,
		installs:    true,
		applyErr:    errInstall,
		hasFallback: true,
	}
	registry := newRegistry(t, stepC)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total())
	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, 1, stepC.applyCalls)
	assert.Equal(t, 1, stepC.fallbackCalls, "fallback runs exactly once after primary failure")

	entry := report.Entries()[0]
	assert.True(t, entry.UsedFallback())
	assert.True(t, entry.Outcome().IsSuccess())
}

// Scenario: StepD primary and fallback both fail on a required step.
func TestExecutor_FullInstall_FallbackFails(t *testing.T) {
	stepD := &fakeStep{
		name:        "step:d",
		presence:    provision.Absent,
		applyErr:    errInstall,
		hasFallback: true,
		fallbackErr: errors.New("fallback failed"),
	}
	registry := newRegistry(t, stepD)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 0, report.Passed())
	assert.Equal(t, 1, stepD.fallbackCalls)

	outcome := report.Entries()[0].Outcome()
	require.True(t, outcome.IsFailure())
	assert.ErrorIs(t, outcome.Err(), provision.ErrFallbackFailed)
	assert.ErrorIs(t, outcome.Err(), errInstall)
}

func TestExecutor_FullInstall_ApplyFailsWithoutFallback(t *testing.T) {
	step := &fakeStep{name: "step:e", presence: provision.Absent, applyErr: errInstall, hasVerify: true, verifyErr: errors.New("missing")}
	registry := newRegistry(t, step)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, step.verifyCalls, "verify always runs after apply")
	assert.ErrorIs(t, report.Entries()[0].Outcome().Err(), provision.ErrApplyFailed)
}

func TestExecutor_FullInstall_ApplyFailureDominatesVerify(t *testing.T) {
	step := &fakeStep{name: "step:f", presence: provision.Absent, applyErr: errInstall, hasVerify: true}
	registry := newRegistry(t, step)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, step.verifyCalls)
}

func TestExecutor_FullInstall_VerifyFailsAfterSuccessfulApply(t *testing.T) {
	step := &fakeStep{
		name:      "runtime:go",
		presence:  provision.Absent,
		hasVerify: true,
		verifyErr: errors.New("go: command not found"),
	}
	registry := newRegistry(t, step)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed())
	outcome := report.Entries()[0].Outcome()
	assert.ErrorIs(t, outcome.Err(), provision.ErrVerifyFailed)
}

func TestExecutor_CheckErrorTreatedAsAbsent(t *testing.T) {
	step := &fakeStep{
		name:     "apt:package:git",
		presence: provision.Present,
		checkErr:  errors.New("dpkg lock held"),
		installs:  true,
		hasVerify: true,
	}
	registry := newRegistry(t, step)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 1, step.applyCalls, "check errors fail open toward re-installation")
	assert.Equal(t, 1, report.Passed())
}

func TestExecutor_FailureNeverAbortsRun(t *testing.T) {
	failing := &fakeStep{name: "step:broken", presence: provision.Absent, applyErr: errInstall, hasFallback: true, fallbackErr: errInstall}
	later := []*fakeStep{
		{name: "step:one", presence: provision.Absent, installs: true, hasVerify: true},
		{name: "step:two", presence: provision.Present, hasVerify: true},
		{name: "step:three", presence: provision.Absent, applyErr: errInstall, hasVerify: true},
	}
	registry := newRegistry(t, append([]*fakeStep{failing}, later...)...)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total())
	for _, s := range later {
		assert.Equal(t, 1, s.verifyCalls, "verify must run for %s", s.name)
	}
	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, 2, report.Passed())
}

func TestExecutor_OptionalFailuresWarn(t *testing.T) {
	optional := &fakeStep{name: "cloud:terraform", optional: true, presence: provision.Absent, applyErr: errInstall}
	required := &fakeStep{name: "apt:package:git", presence: provision.Absent, applyErr: errInstall}
	registry := newRegistry(t, optional, required)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Warned())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, VerdictWarn, report.Entries()[0].Verdict())
	assert.Equal(t, VerdictFail, report.Entries()[1].Verdict())
}

func TestExecutor_CheckOnly_NeverApplies(t *testing.T) {
	absent := &fakeStep{name: "step:absent", presence: provision.Absent, installs: true}
	present := &fakeStep{name: "step:present", presence: provision.Present, hasVerify: true}
	optional := &fakeStep{name: "step:optional", optional: true, presence: provision.Absent}
	registry := newRegistry(t, absent, present, optional)

	report, err := NewExecutor().Run(context.Background(), ModeCheckOnly, registry)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total())
	assert.Equal(t, 0, absent.applyCalls+present.applyCalls+optional.applyCalls)
	assert.Equal(t, 0, absent.fallbackCalls+present.fallbackCalls+optional.fallbackCalls)
	assert.Equal(t, 1, present.verifyCalls)

	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Warned())
}

func TestExecutor_FixMissing_OnlyAbsentSteps(t *testing.T) {
	absent := &fakeStep{name: "step:absent", presence: provision.Absent, installs: true}
	present := &fakeStep{name: "step:present", presence: provision.Present, hasVerify: true}
	registry := newRegistry(t, absent, present)

	report, err := NewExecutor().Run(context.Background(), ModeFixMissing, registry)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total(), "present steps are outside the fix-missing selection")
	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, "step:absent", report.Entries()[0].Name())
	assert.Equal(t, 1, absent.applyCalls)
	assert.Equal(t, 0, present.applyCalls)
	assert.Equal(t, 0, present.verifyCalls)
}

func TestExecutor_FixMissing_Idempotent(t *testing.T) {
	steps := []*fakeStep{
		{name: "step:one", presence: provision.Absent, installs: true},
		{name: "step:two", presence: provision.Absent, installs: true, applyErr: errInstall, hasFallback: true},
		{name: "step:three", presence: provision.Present},
	}
	registry := newRegistry(t, steps...)
	executor := NewExecutor()

	first, err := executor.Run(context.Background(), ModeFixMissing, registry)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Total())
	assert.Equal(t, 2, first.Passed())

	before := make([]int, len(steps))
	for i, s := range steps {
		before[i] = s.applyCalls + s.fallbackCalls
	}

	second, err := executor.Run(context.Background(), ModeFixMissing, registry)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Total())

	for i, s := range steps {
		assert.Equal(t, before[i], s.applyCalls+s.fallbackCalls, "second run must not apply %s", s.name)
	}
}

func TestExecutor_FixWarnings_OnlyOptional(t *testing.T) {
	required := &fakeStep{name: "apt:package:git", presence: provision.Absent, installs: true}
	optionalAbsent := &fakeStep{name: "cloud:aws", optional: true, presence: provision.Absent, installs: true, hasVerify: true}
	optionalPresent := &fakeStep{name: "ssh:key", optional: true, presence: provision.Present}
	registry := newRegistry(t, required, optionalAbsent, optionalPresent)

	report, err := NewExecutor().Run(context.Background(), ModeFixWarnings, registry)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total())
	assert.Equal(t, 0, required.checkCalls, "required steps are not part of fix-warnings")
	assert.Equal(t, 1, optionalAbsent.applyCalls)
	assert.Equal(t, 1, optionalAbsent.verifyCalls)
	assert.Equal(t, 0, optionalPresent.applyCalls)
	assert.Equal(t, 2, report.Passed())
}

func TestExecutor_TotalMatchesModeSelection(t *testing.T) {
	build := func() []*fakeStep {
		return []*fakeStep{
			{name: "s:1", presence: provision.Absent, installs: true},
			{name: "s:2", presence: provision.Present},
			{name: "s:3", optional: true, presence: provision.Absent, applyErr: errInstall},
			{name: "s:4", optional: true, presence: provision.Present},
			{name: "s:5", presence: provision.Absent, applyErr: errInstall, hasFallback: true, fallbackErr: errInstall},
		}
	}

	tests := []struct {
		mode RunMode
		want int
	}{
		{mode: ModeFullInstall, want: 5},
		{mode: ModeCheckOnly, want: 5},
		{mode: ModeFixMissing, want: 3},
		{mode: ModeFixWarnings, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			report, err := NewExecutor().Run(context.Background(), tt.mode, newRegistry(t, build()...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Total())
			assert.Equal(t, report.Total(), report.Passed()+report.Failed()+report.Warned())
		})
	}
}

func TestExecutor_SkipFromCheck(t *testing.T) {
	step, err := provision.NewStep("windows:feature:wsl",
		func(_ provision.RunContext) (provision.Presence, error) {
			return provision.Absent, provision.Skip("windows interop unavailable")
		},
		func(_ provision.RunContext) error {
			t.Fatal("apply must not run for a skipped step")
			return nil
		},
		provision.Optional(),
	)
	require.NoError(t, err)

	registry := provision.NewRegistry()
	require.NoError(t, registry.Register(step))

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)
	require.Equal(t, 1, report.Total())
	assert.True(t, report.Entries()[0].Outcome().IsSkipped())
	assert.Equal(t, 1, report.Warned())

	fix, err := NewExecutor().Run(context.Background(), ModeFixMissing, registry)
	require.NoError(t, err)
	assert.Equal(t, 0, fix.Total())
}

func TestExecutor_SkipFromApply(t *testing.T) {
	step := &fakeStep{name: "docker:group", presence: provision.Absent, applyErr: provision.Skip("no user"), hasVerify: true}
	registry := newRegistry(t, step)

	report, err := NewExecutor().Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.True(t, report.Entries()[0].Outcome().IsSkipped())
	assert.Equal(t, 0, step.verifyCalls)
	assert.Equal(t, 1, report.Failed(), "skipped required steps count as failed")
}

func TestExecutor_CancellationBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := &fakeStep{name: "s:first", presence: provision.Absent, installs: true}
	// Cancelling during apply must not interrupt the step in flight.
	first.onApply = cancel
	second := &fakeStep{name: "s:second", presence: provision.Absent, installs: true}
	third := &fakeStep{name: "s:third", presence: provision.Absent, installs: true}
	registry := newRegistry(t, first, second, third)

	report, err := NewExecutor().Run(ctx, ModeFullInstall, registry)
	require.NoError(t, err)

	assert.True(t, report.Cancelled())
	assert.Equal(t, 3, report.Total())
	assert.Equal(t, 1, first.applyCalls)
	assert.Equal(t, provision.Present, first.presence, "step in flight completes")
	assert.Equal(t, 0, second.checkCalls)
	assert.Equal(t, 0, third.checkCalls)

	entries := report.Entries()
	assert.True(t, entries[0].Outcome().IsSuccess())
	assert.Equal(t, "skipped: run cancelled", entries[1].Outcome().String())
	assert.Equal(t, "skipped: run cancelled", entries[2].Outcome().String())
}

func TestExecutor_CancelledFixMissingCountsOnlyCheckedSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := &fakeStep{name: "s:first", presence: provision.Absent, installs: true}
	first.onApply = cancel
	present := &fakeStep{name: "s:present", presence: provision.Present}
	absent := &fakeStep{name: "s:absent", presence: provision.Absent, installs: true}
	registry := newRegistry(t, first, present, absent)

	report, err := NewExecutor().Run(ctx, ModeFixMissing, registry)
	require.NoError(t, err)

	assert.True(t, report.Cancelled())
	assert.Equal(t, 1, report.Total())
	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, 0, present.checkCalls)
	assert.Equal(t, 0, absent.checkCalls)
	require.Len(t, report.Entries(), 1)
	assert.Equal(t, "s:first", report.Entries()[0].Name())
}

func TestExecutor_WithSelection(t *testing.T) {
	a := &fakeStep{name: "s:a", presence: provision.Absent, installs: true}
	b := &fakeStep{name: "s:b", presence: provision.Absent, installs: true}
	c := &fakeStep{name: "s:c", presence: provision.Absent, installs: true}
	registry := newRegistry(t, a, b, c)

	report, err := NewExecutor().WithSelection("s:c", "s:a").Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	require.Equal(t, 2, report.Total())
	assert.Equal(t, "s:a", report.Entries()[0].Name(), "selection keeps registration order")
	assert.Equal(t, "s:c", report.Entries()[1].Name())
	assert.Equal(t, 0, b.checkCalls)
}

func TestExecutor_WithSelection_UnknownName(t *testing.T) {
	a := &fakeStep{name: "s:a", presence: provision.Absent}
	registry := newRegistry(t, a)

	_, err := NewExecutor().WithSelection("s:missing").Run(context.Background(), ModeFullInstall, registry)
	require.Error(t, err)
	assert.ErrorIs(t, err, provision.ErrStepNotFound)
	assert.Equal(t, 0, a.checkCalls, "nothing runs when the selection is invalid")
}

type recordingObserver struct {
	started  []string
	finished []string
}

func (o *recordingObserver) StepStarted(step provision.Step) {
	o.started = append(o.started, step.Name())
}

func (o *recordingObserver) StepFinished(entry Entry) {
	o.finished = append(o.finished, entry.Name()+"="+entry.Outcome().Kind().String())
}

func TestExecutor_Observer(t *testing.T) {
	ok := &fakeStep{name: "s:ok", presence: provision.Present}
	bad := &fakeStep{name: "s:bad", presence: provision.Absent, applyErr: errInstall}
	registry := newRegistry(t, ok, bad)

	observer := &recordingObserver{}
	_, err := NewExecutor().WithObserver(observer).Run(context.Background(), ModeFullInstall, registry)
	require.NoError(t, err)

	assert.Equal(t, []string{"s:ok", "s:bad"}, observer.started)
	assert.Equal(t, []string{"s:ok=success", "s:bad=failure"}, observer.finished)
}

func TestExecutor_BuildersDoNotMutate(t *testing.T) {
	base := NewExecutor()
	selected := base.WithSelection("a")
	assert.Empty(t, base.selection)
	assert.Equal(t, []string{"a"}, selected.selection)
}
