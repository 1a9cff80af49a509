package router

import (
	"log/slog"

	"github.com/m3rciful/infobot/core/logger"
	tg "github.com/m3rciful/infobot/core/telegram"
	"github.com/m3rciful/infobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// InlineRoute serves inline queries with handler.
func InlineRoute(handler tele.HandlerFunc) tg.Route {
	h := func(c tele.Context) error {
		start := nowFunc()
		var query slog.Attr
		if q := c.Query(); q != nil {
			query = slog.String("query", logger.SanitizeLimit(q.Text, 64))
		}
		return serve(c, "inline", start, handler, query)
	}
	return tg.Route{
		Endpoint: tele.OnQuery,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
	}
}
