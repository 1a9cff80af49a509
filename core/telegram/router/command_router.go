package router

import (
	"log/slog"

	"github.com/m3rciful/infobot/core/logger"
	tg "github.com/m3rciful/infobot/core/telegram"
	"github.com/m3rciful/infobot/core/telegram/commands"
	"github.com/m3rciful/infobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	// Guard authorizes admin-only commands; the action is the command name without its slash.
	Guard         middleware.Authorizer
	OnAdminReject tele.HandlerFunc
	// Conversation, when set, drops the sender's pending conversation before
	// any command runs. A command may start a new one from its handler.
	Conversation interface{ ClearState(userID int64) }
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := guardCommand(cmd, def, opts)
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.Info(logger.Background(), "tg.wire", "complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.CallbackKeys())),
	)

	return routes
}

// guardCommand wraps def.Handler with the admin check when required and logs
// a handler summary under the normalized command name.
func guardCommand(cmd string, def commands.Command, opts CommandRouteOptions) tele.HandlerFunc {
	name := handlerName(cmd)
	h := def.Handler
	if def.AdminOnly {
		h = middleware.AdminOnlyMiddleware(middleware.AdminOptions{
			Guard:    opts.Guard,
			Action:   name,
			OnReject: opts.OnAdminReject,
		})(h)
	}
	return func(c tele.Context) error {
		if opts.Conversation != nil && c.Sender() != nil {
			opts.Conversation.ClearState(c.Sender().ID)
		}
		return serve(c, name, nowFunc(), h)
	}
}
