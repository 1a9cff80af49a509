// Package bot adapts the navigation engine to Telegram: commands, button
// presses, inline search and the restricted admin actions.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/infobot/core/logger"
	"github.com/m3rciful/infobot/core/telegram"
	"github.com/m3rciful/infobot/core/telegram/format"
	"github.com/m3rciful/infobot/core/telegram/router"
	"github.com/m3rciful/infobot/core/telegram/sender"
	"github.com/m3rciful/infobot/core/telegram/state"
	"github.com/m3rciful/infobot/internal/audience"
	"github.com/m3rciful/infobot/internal/config"
	"github.com/m3rciful/infobot/internal/content"
	"github.com/m3rciful/infobot/internal/navigation"
	"github.com/m3rciful/infobot/internal/search"
)

const defaultBroadcastWorkers = 8

// Messenger is the part of the Bot API used to reach chats outside the
// current update.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Options carries the resolved dependencies of the bot.
type Options struct {
	Config   *config.Config
	Catalog  *content.Catalog
	Audience audience.Store

	// Dispatcher is created from defaults when nil.
	Dispatcher *sender.Dispatcher
	// BroadcastWorkers bounds concurrent deliveries of one broadcast.
	BroadcastWorkers int
	// Messenger defaults to the running bot.
	Messenger Messenger
	// OnStop runs after the bot stopped, e.g. to close the database.
	OnStop func(ctx context.Context) error

	Now func() time.Time
}

// App is the Telegram front end of the menu bot.
type App struct {
	cfg      *config.Config
	catalog  *content.Catalog
	nav      *navigation.Navigator
	guard    *navigation.Guard
	format   format.Formatter
	search   *search.Index
	audience audience.Store
	fsm      state.Manager
	reg      *telegram.Registry

	dispatcher *sender.Dispatcher
	messenger  Messenger
	me         string
	workers    int
	onStop     func(ctx context.Context) error

	now     func() time.Time
	started time.Time
}

// New validates opts and assembles the navigator, registry and handlers.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("bot: nil config")
	}
	if opts.Catalog == nil {
		return nil, errors.New("bot: nil catalog")
	}
	if opts.Audience == nil {
		opts.Audience = audience.NewMemory()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BroadcastWorkers <= 0 {
		opts.BroadcastWorkers = defaultBroadcastWorkers
	}

	engine, err := navigation.NewEngine(opts.Catalog, opts.Config.Content.PageSize)
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	f := format.New(opts.Config.Content.Format)
	guard := navigation.NewGuard(opts.Config.Telegram.AdminIDs)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = sender.NewDispatcher(sender.Options{MaxRetries: 2})
	}

	a := &App{
		cfg:        opts.Config,
		catalog:    opts.Catalog,
		nav:        navigation.NewNavigator(engine, navigation.NewRenderer(opts.Catalog, f), guard),
		guard:      guard,
		format:     f,
		search:     search.New(opts.Catalog.Items()),
		audience:   opts.Audience,
		fsm:        state.NewMemoryManager(state.DefaultTTL),
		reg:        telegram.NewRegistry(),
		dispatcher: dispatcher,
		messenger:  opts.Messenger,
		workers:    opts.BroadcastWorkers,
		onStop:     opts.OnStop,
		now:        opts.Now,
	}
	a.started = a.now()

	a.registerCommands()
	if err := a.registerBroadcast(); err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	a.reg.SetCallbackNotFound(a.UnknownCallback())
	return a, nil
}

// Registry exposes the command and callback registry.
func (a *App) Registry() *telegram.Registry { return a.reg }

// Navigator exposes the navigation front door.
func (a *App) Navigator() *navigation.Navigator { return a.nav }

// Close stops the outbound dispatcher. It is safe to call more than once.
func (a *App) Close() { a.dispatcher.Close() }

func (a *App) commandOptions() router.CommandRouteOptions {
	return router.CommandRouteOptions{
		Guard:         a.guard,
		OnAdminReject: a.onRefused,
		Conversation:  a.fsm,
	}
}

// Routes binds every handler of the bot to its telebot endpoint.
func (a *App) Routes() []telegram.Route {
	cmdOpts := a.commandOptions()
	routes := router.CommandRoutes(a.reg, cmdOpts)
	routes = append(routes, router.CallbackRoute(a.reg, router.CallbackOptions{
		Default:  a.onNavigate,
		NotFound: a.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a.fsm, a.reg, router.TextOptions{
		Commands: cmdOpts,
		Fallback: a,
	})...)
	return append(routes, router.InlineRoute(a.onInline))
}

// TelegramRunOptions implements the runner contract of core/cmd.
func (a *App) TelegramRunOptions() (telegram.RunOptions, error) {
	core := a.cfg.CoreConfig()
	return telegram.RunOptions{
		Config:      core,
		Registry:    a.reg,
		Dispatcher:  a.dispatcher,
		Middlewares: telegram.DefaultMiddlewares(core, a.onRateLimited),
		Routes:      a.Routes(),
		OnStart: func(ctx context.Context, rt telegram.Runtime) error {
			attrs := []slog.Attr{
				slog.Int("items", a.catalog.Len()),
				slog.Int("topics", len(a.catalog.Topics())),
				slog.Int("page_size", a.nav.Engine().PageSize()),
				slog.Int("admins", len(a.cfg.Telegram.AdminIDs)),
			}
			if rt.Bot != nil {
				if a.messenger == nil {
					a.messenger = rt.Bot
				}
				if rt.Bot.Me != nil {
					a.me = rt.Bot.Me.Username
					attrs = append(attrs, slog.String("username", a.me))
				}
			}
			logger.Info(ctx, "app", "bot.start", attrs...)
			return nil
		},
		OnStop: func(ctx context.Context, _ telegram.Runtime) error {
			if a.onStop != nil {
				return a.onStop(ctx)
			}
			return nil
		},
	}, nil
}

func (a *App) onRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Slow down a little 🙂"})
	}
	return nil
}

func senderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return 0
}
