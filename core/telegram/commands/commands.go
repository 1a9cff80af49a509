// Package commands describes slash commands for the registry.
package commands

import tele "gopkg.in/telebot.v4"

// Command is one slash command. Admin-only commands are authorized under
// their name without the slash, e.g. "stats" for /stats.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Aliases are plain words, such as "menu", that also run the command
	// when sent as a whole message.
	Aliases   []string
	AdminOnly bool
	// Hidden commands work but are never listed in a command menu.
	Hidden bool
}

// Visible reports whether the command is listed in the public menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}
