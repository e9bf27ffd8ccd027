package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// fileSink is the append-only file shared by a FileLogger and everything
// derived from it.
type fileSink struct {
	mu    sync.Mutex
	w     io.WriteCloser
	level ports.Level
}

// FileLogger appends every event as one text line to a log file. Lines use
// RFC 3339 timestamps so runs on different days stay distinguishable.
type FileLogger struct {
	sink   *fileSink
	fields []ports.Field
	now    func() time.Time
	path   string
}

// OpenFileLogger opens path for appending, creating it and its parent
// directory if needed. A leading ~ is expanded.
func OpenFileLogger(path string, level ports.Level) (*FileLogger, error) {
	path = ports.ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := newFileLogger(f, level)
	logger.path = path
	return logger, nil
}

func newFileLogger(w io.WriteCloser, level ports.Level) *FileLogger {
	return &FileLogger{
		sink: &fileSink{w: w, level: level},
		now:  time.Now,
	}
}

// Path returns the file the logger appends to.
func (l *FileLogger) Path() string {
	return l.path
}

// Debug logs a debug message.
func (l *FileLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelDebug, msg, fields)
}

// Info logs an informational message.
func (l *FileLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelInfo, msg, fields)
}

// Warn logs a warning message.
func (l *FileLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelWarn, msg, fields)
}

// Error logs an error message.
func (l *FileLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelError, msg, fields)
}

// With returns a logger writing to the same file with additional fields.
func (l *FileLogger) With(fields ...ports.Field) ports.Logger {
	return &FileLogger{
		sink:   l.sink,
		fields: joinFields(l.fields, fields),
		now:    l.now,
		path:   l.path,
	}
}

// Level returns the minimum log level.
func (l *FileLogger) Level() ports.Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// SetLevel sets the minimum log level.
func (l *FileLogger) SetLevel(level ports.Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// WriteLine appends a raw line, bypassing level filtering.
func (l *FileLogger) WriteLine(line string) error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.writeLocked(line)
}

// Close closes the underlying file. Later writes fail silently.
func (l *FileLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.w == nil {
		return nil
	}
	err := l.sink.w.Close()
	l.sink.w = nil
	return err
}

func (l *FileLogger) log(_ context.Context, level ports.Level, msg string, fields []ports.Field) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	rec := record{time: l.now(), level: level, msg: msg, fields: joinFields(l.fields, fields)}
	_ = l.writeLocked(rec.textLine(time.RFC3339, true))
}

func (l *FileLogger) writeLocked(line string) error {
	if l.sink.w == nil {
		return os.ErrClosed
	}
	_, err := io.WriteString(l.sink.w, line+"\n")
	return err
}

var (
	_ ports.Logger     = (*FileLogger)(nil)
	_ ports.LineWriter = (*FileLogger)(nil)
)
