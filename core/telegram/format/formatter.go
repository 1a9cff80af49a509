package format

import (
	"html"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Formatter turns plain content into one markup dialect.
// Content is always passed unescaped; the formatter owns escaping.
type Formatter interface {
	// Text escapes s for the dialect without adding emphasis.
	Text(s string) string
	Bold(s string) string
	Italic(s string) string
	// ParseMode is the Telegram parse mode matching the produced text.
	ParseMode() tele.ParseMode
}

// New returns the formatter registered under name: "html", "markdown"
// (MarkdownV2) or "plain". Unknown names fall back to plain text.
func New(name string) Formatter {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "html":
		return HTML{}
	case "markdown", "markdownv2", "md":
		return Markdown{}
	default:
		return Plain{}
	}
}

// Plain emits text as-is.
type Plain struct{}

func (Plain) Text(s string) string      { return s }
func (Plain) Bold(s string) string      { return s }
func (Plain) Italic(s string) string    { return s }
func (Plain) ParseMode() tele.ParseMode { return tele.ModeDefault }

// HTML emits Telegram HTML markup.
type HTML struct{}

func (HTML) Text(s string) string      { return html.EscapeString(s) }
func (HTML) Bold(s string) string      { return "<b>" + html.EscapeString(s) + "</b>" }
func (HTML) Italic(s string) string    { return "<i>" + html.EscapeString(s) + "</i>" }
func (HTML) ParseMode() tele.ParseMode { return tele.ModeHTML }

// Markdown emits Telegram MarkdownV2 markup.
type Markdown struct{}

func (Markdown) Text(s string) string      { return EscapeMarkdownV2(s) }
func (Markdown) Bold(s string) string      { return "*" + EscapeMarkdownV2(s) + "*" }
func (Markdown) Italic(s string) string    { return "_" + EscapeMarkdownV2(s) + "_" }
func (Markdown) ParseMode() tele.ParseMode { return tele.ModeMarkdownV2 }
