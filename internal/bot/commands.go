package bot

import (
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/infobot/core/logger"
	"github.com/m3rciful/infobot/core/telegram/commands"
	tghelpers "github.com/m3rciful/infobot/core/telegram/helpers"
	"github.com/m3rciful/infobot/internal/navigation"
)

// command registers cmd under name. A topic key that collides with a
// built-in command loses and is still reachable from the menu.
func (a *App) command(name string, cmd commands.Command) {
	if err := a.reg.RegisterCommand(name, cmd); err != nil {
		logger.Warn(logger.Background(), "tg.wire", "register.command",
			slog.String("status", "skip"),
			slog.String("name", name),
			slog.String("err", err.Error()),
		)
	}
}

func (a *App) registerCommands() {
	a.command("/start", commands.Command{
		Handler:     a.onStart,
		Description: "Open the main menu",
	})
	a.command("/help", commands.Command{
		Handler:     a.onHelp,
		Description: "How to use this bot",
		Aliases:     []string{"help"},
	})
	a.command("/menu", commands.Command{
		Handler:     a.open(navigation.MenuAction()),
		Description: "Back to the main menu",
		Aliases:     []string{"menu", "main_menu"},
	})
	if a.catalog.Len() > 0 || a.catalog.ListTitle() != "" {
		noun := a.catalog.ListNoun()
		a.command("/"+listCommand(noun), commands.Command{
			Handler:     a.open(navigation.ListAction(0)),
			Description: "Browse all " + noun,
		})
		a.command("/count", commands.Command{
			Handler:     a.open(navigation.CountAction()),
			Description: "How many " + noun + " there are",
		})
	}

	topics := a.catalog.Topics()
	if len(topics) > 0 {
		a.command("/topics", commands.Command{
			Handler:     a.open(navigation.OverviewAction()),
			Description: "All topics at a glance",
		})
	}
	for _, t := range topics {
		a.command("/"+t.Key, commands.Command{
			Handler:     a.open(navigation.DetailAction(t.Key)),
			Description: t.Title,
		})
	}

	a.command("/stats", commands.Command{
		Handler:     a.onStats,
		Description: "Audience statistics",
		AdminOnly:   true,
	})
	a.command("/broadcast", commands.Command{
		Handler:     a.onBroadcast,
		Description: "Message every subscriber",
		AdminOnly:   true,
	})
}

// listCommand turns the plural noun into a command name, e.g.
// "Crypto coins" -> "crypto_coins". Telegram allows only [a-z0-9_].
func listCommand(noun string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(noun) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "list"
	}
	return b.String()
}

func (a *App) onStart(c tele.Context) error {
	if chat := c.Chat(); chat != nil {
		ctx := tghelpers.BuildContext(c)
		var username string
		if s := c.Sender(); s != nil {
			username = s.Username
		}
		if err := a.audience.Touch(ctx, chat.ID, username); err != nil {
			logger.Warn(ctx, "audience", "audience.touch",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
	return a.open(navigation.MenuAction())(c)
}

func (a *App) onHelp(c tele.Context) error {
	f := a.format
	var b strings.Builder
	if h := a.catalog.Help(); h != "" {
		b.WriteString(f.Text(h))
		b.WriteString("\n\n")
	}
	b.WriteString(f.Bold("Commands"))
	for _, cmd := range a.reg.ListCommands(true) {
		b.WriteString("\n")
		b.WriteString(f.Text(cmd.Text + " - " + cmd.Description))
	}
	if name := a.me; name != "" {
		b.WriteString("\n\n")
		b.WriteString(f.Italic("Tip: type @" + name + " followed by a name to search the " + a.catalog.ListNoun() + " from any chat."))
	}
	return a.send(c, backView(b.String()))
}
