package provision

import (
	"context"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// RunContext is handed to every check, apply and verify function.
type RunContext struct {
	ctx    context.Context
	logger ports.Logger
}

// NewRunContext creates a new RunContext with the given context.
func NewRunContext(ctx context.Context) RunContext {
	return RunContext{ctx: ctx}
}

// Context returns the underlying context.Context.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// Logger returns the step-scoped logger. It is never nil.
func (r RunContext) Logger() ports.Logger {
	if r.logger != nil {
		return r.logger
	}
	if l := ports.LoggerFromContext(r.ctx); l != nil {
		return l
	}
	return nopLogger{}
}

// WithLogger returns a new RunContext carrying the given logger.
func (r RunContext) WithLogger(logger ports.Logger) RunContext {
	r.logger = logger
	return r
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...ports.Field) {}
func (nopLogger) Info(context.Context, string, ...ports.Field)  {}
func (nopLogger) Warn(context.Context, string, ...ports.Field)  {}
func (nopLogger) Error(context.Context, string, ...ports.Field) {}
func (n nopLogger) With(...ports.Field) ports.Logger            { return n }
func (nopLogger) Level() ports.Level                            { return ports.LevelError }
func (nopLogger) SetLevel(ports.Level)                          {}
