package router

import (
	tg "github.com/m3rciful/infobot/core/telegram"
	"github.com/m3rciful/infobot/core/telegram/middleware"
	"github.com/m3rciful/infobot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// FSM routes the messages of users in the middle of a conversation.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text/document updates.
// Commands reached through aliases are checked with the same guard as CommandRoutes.
type TextOptions struct {
	Commands CommandRouteOptions
	// Fallback answers text that is neither a command nor part of a
	// conversation, and any uploaded document. Nil leaves them unanswered.
	Fallback ui.FallbackProvider
}

// TextRoutes builds the OnText and OnDocument handlers. Text goes to an
// active conversation first, then to a command matched by name or alias,
// then to the fallback.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	var unknownText, unknownDocument tele.HandlerFunc
	if opts.Fallback != nil {
		unknownText = opts.Fallback.UnknownText()
		unknownDocument = opts.Fallback.UnknownDocument()
	}
	handler := func(c tele.Context) error {
		start := nowFunc()
		text := c.Text()

		if fsmMgr != nil && c.Sender() != nil && fsmMgr.InProgress(c.Sender().ID) {
			return serve(c, "conversation", start, fsmMgr.ManagerHandler)
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				return guardCommand(key, cmd, opts.Commands)(c)
			}
		}

		if unknownText != nil {
			return serve(c, "unknown_text", start, unknownText)
		}

		skipped(c, "unknown_text", start)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := nowFunc()
		if fsmMgr != nil && c.Sender() != nil && fsmMgr.InProgress(c.Sender().ID) {
			return serve(c, "conversation", start, fsmMgr.ManagerHandler)
		}
		if unknownDocument != nil {
			return serve(c, "unexpected_document", start, unknownDocument)
		}
		skipped(c, "unexpected_document", start)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(docHandler)),
		},
	}
}
