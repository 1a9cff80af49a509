package bot

import (
	"errors"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/infobot/core/logger"
	"github.com/m3rciful/infobot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/infobot/core/telegram/helpers"
	"github.com/m3rciful/infobot/internal/navigation"
)

// send delivers v as a new message.
func (a *App) send(c tele.Context, v navigation.View) error {
	return tghelpers.SendFormatted(c, v.Text, a.format.ParseMode(), Markup(v))
}

// edit replaces the message behind a button press with v.
func (a *App) edit(c tele.Context, v navigation.View) error {
	return tghelpers.EditOrSendFormatted(c, v.Text, a.format.ParseMode(), Markup(v))
}

// open is the handler of a command that lands on a fixed screen.
func (a *App) open(action navigation.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		res := a.nav.Open(senderID(c), action)
		a.logFault(c, "", res.Fault)
		return a.send(c, res.View)
	}
}

func (a *App) onNavigate(c tele.Context) error {
	token := callbacks.Token(c)
	res := a.nav.Press(senderID(c), token)
	a.logFault(c, token, res.Fault)
	_ = c.Respond()
	return a.edit(c, res.View)
}

// onRefused answers restricted commands invoked by other users.
func (a *App) onRefused(c tele.Context) error {
	res := a.nav.Refuse(senderID(c), commandName(c))
	a.logFault(c, "", res.Fault)
	return a.send(c, res.View)
}

// commandName extracts "stats" from "/stats@infobot now".
func commandName(c tele.Context) string {
	fields := strings.Fields(c.Text())
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	return strings.ToLower(name)
}

// logFault records a recovered navigation error. Clamped pages are routine
// and logged at info; everything else at warn.
func (a *App) logFault(c tele.Context, token string, fault error) {
	if fault == nil {
		return
	}
	code := "nav_fault"
	var coder interface{ Code() string }
	if errors.As(fault, &coder) {
		code = coder.Code()
	}
	attrs := []slog.Attr{
		slog.String("err_code", code),
		slog.String("err", logger.SanitizeLimit(fault.Error(), 160)),
	}
	if token != "" {
		attrs = append(attrs, slog.String("token", logger.SanitizeLimit(token, navigation.MaxTokenLen)))
	}
	ctx := tghelpers.BuildContext(c)
	var oor *navigation.OutOfRangeError
	if errors.As(fault, &oor) {
		logger.Info(ctx, "nav", "nav.clamped", attrs...)
		return
	}
	logger.Warn(ctx, "nav", "nav.fault", attrs...)
}

// UnknownText answers free text and unknown commands with the menu.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return a.send(c, a.nav.Menu(navigation.NoticeUnknown))
	}
}

// UnknownDocument answers uploads, which the bot never expects.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return a.UnknownText()
}

// UnknownCallback answers presses of buttons from an older build.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		_ = c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		return a.edit(c, a.nav.Menu(navigation.NoticeUnknown))
	}
}
