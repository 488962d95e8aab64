package redact

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// loggerSetter is implemented by compositors that log on their own.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// sinks maps each live engine to its compositor. Keys are engine
// pointers, so compositors need not be comparable.
var (
	sinksMu sync.Mutex
	sinks   = map[*Engine]loggerSetter{}
)

// SetLogger configures the logger for redact and every live compositor
// that accepts one. By default the package produces no output. Pass nil
// to restore silence.
//
// Log levels:
//   - [slog.LevelDebug]: per-frame counts, buffer sizes
//   - [slog.LevelInfo]: lifecycle (engine started, overlay loaded, device opened)
//   - [slog.LevelWarn]: non-fatal issues (overlay reload failed, watcher errors)
//
// Example:
//
//	redact.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	sinksMu.Lock()
	defer sinksMu.Unlock()
	for _, s := range sinks {
		s.SetLogger(l)
	}
}

// Logger returns the current logger. Sub-packages call it to share the
// same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// registerLogSink hands the current logger to the compositor of e and
// keeps it updated until unregisterLogSink.
func registerLogSink(e *Engine) {
	ls, ok := e.comp.(loggerSetter)
	if !ok {
		return
	}
	sinksMu.Lock()
	sinks[e] = ls
	sinksMu.Unlock()
	ls.SetLogger(Logger())
}

func unregisterLogSink(e *Engine) {
	sinksMu.Lock()
	delete(sinks, e)
	sinksMu.Unlock()
}
