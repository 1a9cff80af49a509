package logger

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RoundMS rounds d to whole milliseconds; negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Strings renders at most limit values under key, noting how many were
// left out, e.g. "a.sql, b.sql (+3 more)".
func Strings(key string, values []string, limit int) slog.Attr {
	limit = max(limit, 0)
	if len(values) <= limit {
		return slog.String(key, strings.Join(values, ", "))
	}
	shown := strings.Join(values[:limit], ", ")
	if shown != "" {
		shown += " "
	}
	return slog.String(key, fmt.Sprintf("%s(+%d more)", shown, len(values)-limit))
}
