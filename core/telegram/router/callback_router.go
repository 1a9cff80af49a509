package router

import (
	"log/slog"

	tg "github.com/m3rciful/infobot/core/telegram"
	"github.com/m3rciful/infobot/core/telegram/callbacks"
	"github.com/m3rciful/infobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// Default receives every bare-token press.
	Default tele.HandlerFunc
	// NotFound handles unique presses with no registered handler when the
	// registry has no handler of its own for them.
	NotFound tele.HandlerFunc
}

// CallbackRoute serves tele.OnCallback. Unique presses go to the handler
// registered under their unique name, bare tokens to opts.Default.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := nowFunc()
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		press := callbacks.Parse(cb)

		if press.Bare() && press.Payload != "" && opts.Default != nil {
			return serve(c, "callback.navigate", start, opts.Default, slog.String("token", press.Payload))
		}

		key := slog.String("cb_key", press.Key())
		if reg != nil {
			if h, ok := reg.Callback(press.Unique); ok && !press.Bare() {
				return serve(c, "callback."+handlerName(press.Unique), start, h, key)
			}
		}

		fallback := opts.NotFound
		if reg != nil {
			if h := reg.CallbackNotFound(); h != nil {
				fallback = h
			}
		}
		if fallback == nil {
			fallback = func(c tele.Context) error { return c.Respond() }
		}
		return serve(c, "callback."+handlerName(press.Key()), start, fallback, key, slog.String("reason", "not_found"))
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
