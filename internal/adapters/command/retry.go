package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Default retry settings.
const (
	DefaultAttempts = 3
	DefaultDelay    = 2 * time.Second
)

// RetryRunner re-runs failed commands a fixed number of times with a fixed
// delay between attempts. It returns the result of the last attempt.
type RetryRunner struct {
	inner    ports.CommandRunner
	attempts int
	delay    time.Duration
	logger   ports.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// RetryOption configures a RetryRunner.
type RetryOption func(*RetryRunner)

// WithAttempts sets the total number of attempts. Values below 1 mean 1.
func WithAttempts(n int) RetryOption {
	return func(r *RetryRunner) {
		if n < 1 {
			n = 1
		}
		r.attempts = n
	}
}

// WithDelay sets the pause between attempts.
func WithDelay(d time.Duration) RetryOption {
	return func(r *RetryRunner) {
		if d < 0 {
			d = 0
		}
		r.delay = d
	}
}

// WithRetryLogger logs each retried attempt.
func WithRetryLogger(logger ports.Logger) RetryOption {
	return func(r *RetryRunner) {
		r.logger = logger
	}
}

// NewRetryRunner wraps inner with retries.
func NewRetryRunner(inner ports.CommandRunner, opts ...RetryOption) *RetryRunner {
	r := &RetryRunner{
		inner:    inner,
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attempts returns the configured attempt count.
func (r *RetryRunner) Attempts() int {
	return r.attempts
}

// Run executes the command until it exits zero or the attempts are used up.
// A missing executable is not retried.
func (r *RetryRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	var (
		result ports.CommandResult
		err    error
	)

	for attempt := 1; attempt <= r.attempts; attempt++ {
		result, err = r.inner.Run(ctx, command, args...)
		if err == nil && result.Success() {
			return result, nil
		}
		if isPermanent(err) || attempt == r.attempts {
			break
		}

		if r.logger != nil {
			fields := []ports.Field{
				ports.F("command", ports.CommandCall{Command: command, Args: args}.String()),
				ports.F("attempt", attempt),
				ports.F("exit_code", result.ExitCode),
			}
			if err != nil {
				fields = append(fields, ports.F("error", err.Error()))
			}
			r.logger.Warn(ctx, "command failed, retrying", fields...)
		}

		if sleepErr := r.sleep(ctx, r.delay); sleepErr != nil {
			return result, fmt.Errorf("retry cancelled after %d attempts: %w", attempt, sleepErr)
		}
	}

	return result, err
}

// isPermanent reports errors a retry cannot fix.
func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure RetryRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*RetryRunner)(nil)
