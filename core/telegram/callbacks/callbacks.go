// Package callbacks reads button presses. A press carries either a bare
// navigation token, sent verbatim as callback data, or telebot's
// "\f<unique>|<payload>" encoding for buttons bound to a handler.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Press is a decoded callback. Unique is empty for bare tokens, whose text
// is then in Payload.
type Press struct {
	Unique  string
	Payload string
}

// Parse decodes cb. Telebot strips the unique prefix itself when it routes
// a press to a registered endpoint; both forms are accepted.
func Parse(cb *tele.Callback) Press {
	if cb == nil {
		return Press{}
	}
	if cb.Unique != "" {
		return Press{Unique: cb.Unique, Payload: cb.Data}
	}
	raw, ok := strings.CutPrefix(cb.Data, "\f")
	if !ok {
		return Press{Payload: strings.TrimSpace(cb.Data)}
	}
	unique, payload, _ := strings.Cut(raw, "|")
	return Press{Unique: strings.TrimSpace(unique), Payload: payload}
}

// Bare reports a navigation token press.
func (p Press) Bare() bool { return p.Unique == "" }

// Key is the unique name, or the token of a bare press.
func (p Press) Key() string {
	if p.Bare() {
		return p.Payload
	}
	return p.Unique
}

// Token returns the navigation token of the current press, or "" when the
// update is not a bare-token press.
func Token(c tele.Context) string {
	if p := Parse(c.Callback()); p.Bare() {
		return p.Payload
	}
	return ""
}
