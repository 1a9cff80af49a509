package router

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/infobot/core/logger"
	tghelpers "github.com/m3rciful/infobot/core/telegram/helpers"
	"github.com/m3rciful/infobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

var nowFunc = time.Now

// serve names the handler in the update's log context, runs fn and writes
// one "handler.handled" line with what the handler sent back.
func serve(c tele.Context, name string, start time.Time, fn tele.HandlerFunc, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, name)
	err := fn(c)
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	summarize(c, name, start, outcome, err, extras...)
	return err
}

// skipped logs an update no handler wanted.
func skipped(c tele.Context, name string, start time.Time, extras ...slog.Attr) {
	summarize(c, name, start, "skip", nil, extras...)
}

func summarize(c tele.Context, name string, start time.Time, outcome string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, name)
	out := middleware.CountersFrom(c)
	attrs := make([]slog.Attr, 0, 10+len(extras))
	attrs = append(attrs,
		slog.String("status", outcome),
		slog.String("outcome", outcome),
		slog.Int("messages", out.Messages),
		slog.Int("edits", out.Edits),
		slog.Bool("answered", out.Answered),
		slog.Bool("kb", out.Keyboard),
		slog.Duration("duration", nowFunc().Sub(start)),
	)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	attrs = append(attrs, extras...)
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	logger.Event(ctx, "tg", level, "handler.handled", attrs...)
}

// handlerName turns a command or callback key into a log-friendly name,
// e.g. "/Broadcast" -> "broadcast".
func handlerName(key string) string {
	key = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), "/"))
	if key == "" {
		return "unknown"
	}
	return strings.ReplaceAll(key, " ", "_")
}

// errorCode prefers the Code of a typed error anywhere in the chain and
// falls back to the Go type name of err.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	name := fmt.Sprintf("%T", err)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToUpper(name)
}
