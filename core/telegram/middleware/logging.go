package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/infobot/core/logger"
	"github.com/m3rciful/infobot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/infobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const receiptTTL = 10 * time.Second

// receipts remembers recently logged update ids so an update passing through
// several middleware chains is reported once.
type receipts struct {
	mu   sync.Mutex
	seen map[int]time.Time
}

var updateReceipts = &receipts{seen: make(map[int]time.Time)}

func (r *receipts) first(updateID int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ts := range r.seen {
		if now.Sub(ts) > receiptTTL {
			delete(r.seen, id)
		}
	}
	if _, ok := r.seen[updateID]; ok {
		return false
	}
	r.seen[updateID] = now
	return true
}

// LoggerMiddleware attaches the update's logging context and writes one
// sampled debug line describing what arrived: the command text, the pressed
// navigation token or the inline query.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()
		if !logger.ShouldSampleDebug() || !updateReceipts.first(upd.ID, time.Now()) {
			return next(c)
		}

		attrs := []slog.Attr{slog.String("status", "ok")}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user := c.Sender(); user != nil {
			if user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
		}
		switch {
		case upd.Callback != nil:
			press := callbacks.Parse(upd.Callback)
			if press.Bare() {
				attrs = append(attrs, slog.String("token", logger.SanitizeLimit(press.Payload, 64)))
				break
			}
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(press.Unique, 128)))
			if press.Payload != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(press.Payload, 256)))
			}
		case upd.Query != nil:
			attrs = append(attrs, slog.String("query", logger.SanitizeLimit(upd.Query.Text, 128)))
		case upd.Message != nil:
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)
		return next(c)
	}
}
