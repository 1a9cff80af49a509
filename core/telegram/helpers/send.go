package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/infobot/core/logger"
	"github.com/m3rciful/infobot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var outbox atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes replies sent through this package via d. Nil makes
// them synchronous again.
func SetDispatcher(d *sender.Dispatcher) {
	outbox.Store(d)
}

// deliver queues fn on the dispatcher. With no dispatcher, or when the
// queue cannot take it, fn runs on the caller's goroutine.
func deliver(c tele.Context, action, endpoint string, fn func() error) error {
	d := outbox.Load()
	if d == nil {
		return fn()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, endpoint, fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sender.ErrQueueFull), errors.Is(err, sender.ErrQueueClosed):
		logger.Warn(ctx, "tg.sender", "queue.bypass",
			slog.String("action", action),
			slog.String("reason", err.Error()),
		)
		return fn()
	default:
		return err
	}
}

// SendFormatted sends text in parse mode with an optional inline keyboard.
func SendFormatted(c tele.Context, text string, mode tele.ParseMode, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: mode, ReplyMarkup: markup}
	return deliver(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditOrSendFormatted edits the message behind a button press, or sends a
// new message when the update is not a press. Editing to identical content
// is not an error.
func EditOrSendFormatted(c tele.Context, text string, mode tele.ParseMode, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: mode, ReplyMarkup: markup}
	return deliver(c, "edit.text", "editMessageText", func() error {
		if err := c.EditOrSend(text, opts); !errors.Is(err, tele.ErrSameMessageContent) {
			return err
		}
		return nil
	})
}
