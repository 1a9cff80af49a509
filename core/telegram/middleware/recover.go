package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/infobot/core/logger"
	tghelpers "github.com/m3rciful/infobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrPanic wraps the value of a panic recovered from a handler.
var ErrPanic = errors.New("handler panic")

// RecoverMiddleware turns a panicking handler into an ErrPanic error so one
// bad update cannot stop the bot. The stack goes to the error log.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			logger.Error(tghelpers.BuildContext(c), "tg", "handler.panic",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
				slog.String("stack", string(debug.Stack())),
			)
		}()
		return next(c)
	}
}
