// Package logger writes structured log lines through log/slog. Every line
// carries a component and an event name; lines written under an update's
// context also carry its correlation id and Telegram identifiers.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/infobot/core/buildinfo"
	coreconfig "github.com/m3rciful/infobot/core/config"
)

const writeBufferSize = 64 * 1024

var (
	initOnce sync.Once
	stopOnce sync.Once

	out      *asyncWriter
	logFile  io.Closer
	levelVar slog.LevelVar

	debugSampler = newRatioSampler(defaultSampleKeep, defaultSampleEvery)
	trace        bool

	// L is the base logger; prefer Component or the context-first helpers.
	L *slog.Logger
)

// InitLogger configures the global structured logger. Only the first call
// has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() { err = initLogger(cfg) })
	return err
}

func initLogger(cfg *coreconfig.Config) error {
	s := resolveSettings(cfg)
	levelVar.Set(s.level)
	debugSampler.Set(s.sampleKeep, s.sampleEvery)
	trace = traceRequested()

	sinks := []io.Writer{os.Stdout}
	if s.file != "" {
		f, err := openLogFile(s.file)
		if err != nil {
			// stdout alone is still usable
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		} else {
			sinks = append(sinks, f)
			logFile = f
		}
	}
	out = newAsyncWriter(sinks, writeBufferSize)

	L = slog.New(newStructuredHandler(handlerConfig{
		level:    &levelVar,
		writer:   out,
		format:   s.format,
		keyOrder: s.order,
	}))
	slog.SetDefault(L)

	Info(Background(), "app", "startup",
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", s.profile),
	)
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Shutdown flushes buffered output and closes the log file. Later calls
// are no-ops.
func Shutdown() error {
	var err error
	stopOnce.Do(func() {
		if out != nil {
			err = out.Close()
		}
		if logFile != nil {
			err = errors.Join(err, logFile.Close())
		}
	})
	return err
}

// Background returns a root context for log calls made outside any update.
func Background() context.Context {
	return context.Background()
}

// Component returns the base logger tagged with component name, or nil
// before InitLogger.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event writes one line for event at level. The component tag falls back
// to the logger carried by ctx when the global logger is not set up.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		logg = loggerFrom(ctx)
		if logg == nil {
			return
		}
		if c := strings.TrimSpace(component); c != "" {
			logg = logg.With("component", c)
		}
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a debug line of a busy event, such as
// update receipt, should be written. TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	return trace || debugSampler.Allow()
}
