package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider supplies the answers to updates no route claims: free
// text, uploaded documents and presses of buttons whose action is no longer
// registered.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
