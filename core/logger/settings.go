package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/m3rciful/infobot/core/config"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"
)

// Debug lines of busy events are sampled 1 in 50 unless configured.
const (
	defaultSampleKeep  = 1
	defaultSampleEvery = 50
)

// settings is the logging section of the config with defaults applied.
type settings struct {
	format  logFormat
	level   slog.Level
	order   []string
	profile string

	sampleKeep, sampleEvery int

	// file is empty when logs go to stdout only.
	file string
}

func resolveSettings(cfg *coreconfig.Config) settings {
	s := settings{
		format:      formatJSON,
		level:       slog.LevelInfo,
		order:       append([]string(nil), defaultKeyOrder...),
		profile:     "prod",
		sampleKeep:  defaultSampleKeep,
		sampleEvery: defaultSampleEvery,
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}
	s.level = parseLevel(lc.Level)
	if order := parseKeyOrder(lc.KeysOrder); len(order) > 0 {
		s.order = order
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		keep, every := parseRatioSpec(spec)
		switch {
		case keep == 0 && every == 0:
			s.sampleKeep, s.sampleEvery = 0, 0
		case keep > 0 && every > 0:
			s.sampleKeep, s.sampleEvery = keep, every
		}
	}
	dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile)
	if dir != "" && file != "" {
		s.file = filepath.Join(dir, file)
	}
	return s
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseKeyOrder reads a comma separated key list; "default" and blank
// yield nil.
func parseKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var order []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			order = append(order, k)
		}
	}
	return order
}

func traceRequested() bool {
	for _, name := range []string{"TRACE", "LOG_TRACE"} {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}
