package middleware

import (
	"log/slog"

	"github.com/m3rciful/infobot/core/logger"
	tghelpers "github.com/m3rciful/infobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Authorizer decides whether identity may invoke the named action.
type Authorizer interface {
	IsAuthorized(identity int64, action string) bool
}

// AdminOptions defines how restricted actions are checked.
type AdminOptions struct {
	Guard    Authorizer
	Action   string
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware lets downstream handlers run only for identities the
// guard authorizes for opts.Action. Without a guard every call is rejected.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			var id int64
			if s := c.Sender(); s != nil {
				id = s.ID
			}
			if opts.Guard != nil && opts.Guard.IsAuthorized(id, opts.Action) {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			logger.Info(ctx, "tg", "access.denied",
				slog.String("status", "skip"),
				slog.String("action", opts.Action),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
