package logging

import (
	"context"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// MultiLogger fans every event out to several loggers. Each target keeps its
// own level, so the console can stay at Info while the run log records Debug.
type MultiLogger struct {
	targets []ports.Logger
}

// NewMultiLogger creates a MultiLogger. Nil targets are dropped.
func NewMultiLogger(targets ...ports.Logger) *MultiLogger {
	kept := make([]ports.Logger, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &MultiLogger{targets: kept}
}

// Debug logs a debug message on every target.
func (m *MultiLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	for _, t := range m.targets {
		t.Debug(ctx, msg, fields...)
	}
}

// Info logs an informational message on every target.
func (m *MultiLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	for _, t := range m.targets {
		t.Info(ctx, msg, fields...)
	}
}

// Warn logs a warning on every target.
func (m *MultiLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	for _, t := range m.targets {
		t.Warn(ctx, msg, fields...)
	}
}

// Error logs an error on every target.
func (m *MultiLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	for _, t := range m.targets {
		t.Error(ctx, msg, fields...)
	}
}

// With derives every target.
func (m *MultiLogger) With(fields ...ports.Field) ports.Logger {
	derived := make([]ports.Logger, len(m.targets))
	for i, t := range m.targets {
		derived[i] = t.With(fields...)
	}
	return &MultiLogger{targets: derived}
}

// Level returns the most verbose level among the targets.
func (m *MultiLogger) Level() ports.Level {
	level := ports.LevelError
	for _, t := range m.targets {
		if l := t.Level(); l < level {
			level = l
		}
	}
	return level
}

// SetLevel sets the level on every target.
func (m *MultiLogger) SetLevel(level ports.Level) {
	for _, t := range m.targets {
		t.SetLevel(level)
	}
}

// WriteLine forwards a raw line to every target that accepts one.
func (m *MultiLogger) WriteLine(line string) error {
	for _, t := range m.targets {
		if w, ok := t.(ports.LineWriter); ok {
			if err := w.WriteLine(line); err != nil {
				return err
			}
		}
	}
	return nil
}

var (
	_ ports.Logger     = (*MultiLogger)(nil)
	_ ports.LineWriter = (*MultiLogger)(nil)
)
