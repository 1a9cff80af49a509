package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/m3rciful/infobot/core/logger"
	"github.com/m3rciful/infobot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrInvalidRegistration reports a command or callback missing its name,
	// handler or description.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrDuplicateRegistration reports a name or alias that is already taken.
	ErrDuplicateRegistration = errors.New("already registered")
)

// Registry maps slash commands and callback keys to handlers. Registration
// happens before the bot starts; lookups are safe from any goroutine.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	aliases   map[string]string
	callbacks map[string]tele.HandlerFunc
	notFound  tele.HandlerFunc
}

// NewRegistry returns an empty registry whose unknown-callback handler
// answers "Unsupported action".
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		notFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

// RegisterCommand adds cmd under name, which must start with a slash.
// Aliases are matched against plain text with or without the slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if !strings.HasPrefix(name, "/") || len(name) < 2 || cmd.Handler == nil || cmd.Description == "" {
		return fmt.Errorf("command %q: %w", name, ErrInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.commands[name]; taken {
		return fmt.Errorf("command %q: %w", name, ErrDuplicateRegistration)
	}
	for _, alias := range cmd.Aliases {
		alias = strings.TrimPrefix(alias, "/")
		if owner, taken := r.aliases[alias]; taken {
			return fmt.Errorf("alias %q of %s used by %s: %w", alias, name, owner, ErrDuplicateRegistration)
		}
	}
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[strings.TrimPrefix(alias, "/")] = name
	}
	return nil
}

// ListCommands returns the commands sorted by name. Hidden commands are never
// listed; visibleOnly also leaves out admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []tele.Command
	for _, name := range slices.Sorted(maps.Keys(r.commands)) {
		cmd := r.commands[name]
		if cmd.Hidden || (visibleOnly && !cmd.Visible()) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	return list
}

// LookupCommand resolves text typed by the user, a command name or one of
// its aliases, to the registered command.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", commands.Command{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	name := text
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	if owner, ok := r.aliases[strings.TrimPrefix(text, "/")]; ok {
		return owner, r.commands[owner], true
	}
	return "", commands.Command{}, false
}

// Commands returns a copy of the registered commands keyed by name.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.commands)
}

// RegisterCallback binds a unique callback key to handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		return fmt.Errorf("callback %q: %w", key, ErrInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.callbacks[key]; taken {
		return fmt.Errorf("callback %q: %w", key, ErrDuplicateRegistration)
	}
	r.callbacks[key] = handler
	return nil
}

// Callback returns the handler registered under key.
func (r *Registry) Callback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// CallbackKeys returns the registered callback keys in sorted order.
func (r *Registry) CallbackKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.callbacks))
}

// SetCallbackNotFound replaces the handler for unique callbacks nobody
// registered. Nil is ignored.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.notFound = h
	r.mu.Unlock()
}

// CallbackNotFound returns the handler for unregistered unique callbacks.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notFound
}

// CommandSetter is the part of tele.Bot used to publish the command menu.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// PublishCommands sets the public command menu and, in each admin chat, a
// menu that also lists the admin-only commands. Failures are logged only:
// the bot works without a menu.
func PublishCommands(ctx context.Context, bot CommandSetter, reg *Registry, adminIDs ...int64) {
	if bot == nil || reg == nil {
		return
	}
	public := reg.ListCommands(true)
	if err := bot.SetCommands(public); err != nil {
		logger.Error(ctx, "tg.wire", "commands.publish",
			slog.String("status", "fail"),
			slog.String("scope", "default"),
			slog.String("err", err.Error()),
		)
		return
	}
	full := reg.ListCommands(false)
	scoped := 0
	if len(full) > len(public) {
		for _, id := range adminIDs {
			scope := tele.CommandScope{Type: tele.CommandScopeChat, ChatID: id}
			if err := bot.SetCommands(full, scope); err != nil {
				logger.Warn(ctx, "tg.wire", "commands.publish",
					slog.String("status", "fail"),
					slog.String("scope", "admin_chat"),
					slog.Int64("chat_id", id),
					slog.String("err", err.Error()),
				)
				continue
			}
			scoped++
		}
	}
	logger.Info(ctx, "tg.wire", "commands.publish",
		slog.String("status", "ok"),
		slog.Int("public", len(public)),
		slog.Int("admin", len(full)-len(public)),
		slog.Int("admin_chats", scoped),
	)
}
