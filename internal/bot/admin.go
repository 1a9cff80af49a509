package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/infobot/core/logger"
	tghelpers "github.com/m3rciful/infobot/core/telegram/helpers"
	"github.com/m3rciful/infobot/core/telegram/keyboard"
	"github.com/m3rciful/infobot/core/telegram/state"
	"github.com/m3rciful/infobot/internal/navigation"
)

const (
	stateCompose      state.State = "broadcast.compose"
	callbackBroadcast             = "broadcast"

	composePrompt   = "✍️ Send the message to deliver to every subscriber."
	cancelledNotice = "Broadcast cancelled."
)

func (a *App) registerBroadcast() error {
	a.fsm.Handle(stateCompose, a.onBroadcastText)
	return a.reg.RegisterCallback(callbackBroadcast, a.onBroadcastCancel)
}

func (a *App) onStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	subscribers, err := a.audience.Count(ctx)
	if err != nil {
		return fmt.Errorf("stats: count audience: %w", err)
	}
	f := a.format
	e := a.nav.Engine()
	ds := a.dispatcher.Stats()
	lines := []string{
		f.Bold("📊 Statistics"),
		f.Text("Subscribers: " + strconv.Itoa(subscribers)),
		f.Text(titleCase(a.catalog.ListNoun()) + ": " + strconv.Itoa(a.catalog.Len())),
		f.Text("Topics: " + strconv.Itoa(len(a.catalog.Topics()))),
		f.Text(fmt.Sprintf("Pages: %d (%d per page)", e.Pages(), e.PageSize())),
		f.Text("Uptime: " + a.now().Sub(a.started).Round(time.Second).String()),
		f.Text(fmt.Sprintf("Deliveries: %d sent, %d failed, %d retried", ds.Sent, ds.Failed, ds.Retried)),
	}
	return a.send(c, backView(strings.Join(lines, "\n")))
}

func (a *App) onBroadcast(c tele.Context) error {
	if text := commandPayload(c.Text()); text != "" {
		return a.runBroadcast(c, text)
	}
	a.fsm.SetState(senderID(c), stateCompose)
	return tghelpers.SendFormatted(c, a.format.Text(composePrompt), a.format.ParseMode(),
		keyboard.Cancel(callbackBroadcast))
}

// onBroadcastText receives the message typed after a bare /broadcast.
func (a *App) onBroadcastText(c tele.Context) error {
	id := senderID(c)
	a.fsm.ClearState(id)
	if _, ok := a.nav.Authorize(id, navigation.ActionBroadcast); !ok {
		return a.onRefused(c)
	}
	text := strings.TrimSpace(c.Text())
	if text == "" || strings.HasPrefix(text, "/") {
		return a.send(c, a.nav.Menu(cancelledNotice))
	}
	return a.runBroadcast(c, text)
}

func (a *App) onBroadcastCancel(c tele.Context) error {
	a.fsm.ClearState(senderID(c))
	_ = c.Respond(&tele.CallbackResponse{Text: cancelledNotice})
	return a.edit(c, a.nav.Menu(cancelledNotice))
}

func (a *App) runBroadcast(c tele.Context, text string) error {
	ctx := tghelpers.BuildContext(c)
	rep, err := a.broadcast(ctx, text)
	if err != nil {
		return err
	}
	f := a.format
	summary := strings.Join([]string{
		f.Bold("📣 Broadcast finished"),
		f.Text(fmt.Sprintf("Delivered: %d of %d", rep.Sent, rep.Recipients)),
		f.Text(fmt.Sprintf("Failed: %d", rep.Failed)),
		f.Text(fmt.Sprintf("Unsubscribed: %d", rep.Removed)),
	}, "\n")
	return a.send(c, backView(summary))
}

type broadcastReport struct {
	ID         string
	Recipients int
	Sent       int
	Failed     int
	Removed    int
}

// broadcast delivers text to every subscriber with bounded concurrency.
// Chats that can no longer be reached are dropped from the audience.
func (a *App) broadcast(ctx context.Context, text string) (broadcastReport, error) {
	rep := broadcastReport{ID: uuid.NewString()}
	if a.messenger == nil {
		return rep, errors.New("broadcast: bot is not running")
	}
	chats, err := a.audience.ChatIDs(ctx)
	if err != nil {
		return rep, fmt.Errorf("broadcast: list audience: %w", err)
	}
	rep.Recipients = len(chats)
	start := a.now()
	logger.Info(ctx, "broadcast", "broadcast.start",
		slog.String("broadcast_id", rep.ID),
		slog.Int("recipients", rep.Recipients),
	)

	var sent, failed, removed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, chatID := range chats {
		g.Go(func() error {
			err := a.deliver(gctx, chatID, text)
			switch {
			case err == nil:
				sent.Add(1)
			case unreachable(err):
				removed.Add(1)
				if rmErr := a.audience.Remove(gctx, chatID); rmErr != nil {
					logger.Warn(gctx, "audience", "audience.remove",
						slog.String("status", "fail"),
						slog.Int64("chat_id", chatID),
						slog.String("err", rmErr.Error()),
					)
				}
			default:
				failed.Add(1)
				logger.Warn(gctx, "broadcast", "broadcast.deliver",
					slog.String("status", "fail"),
					slog.String("broadcast_id", rep.ID),
					slog.Int64("chat_id", chatID),
					slog.String("err", err.Error()),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	rep.Sent = int(sent.Load())
	rep.Failed = int(failed.Load())
	rep.Removed = int(removed.Load())
	logger.Info(ctx, "broadcast", "broadcast.done",
		slog.String("broadcast_id", rep.ID),
		slog.Int("recipients", rep.Recipients),
		slog.Int("sent", rep.Sent),
		slog.Int("failed", rep.Failed),
		slog.Int("removed", rep.Removed),
		slog.Duration("duration", logger.RoundMS(a.now().Sub(start))),
	)
	return rep, nil
}

func (a *App) deliver(ctx context.Context, chatID int64, text string) error {
	return a.dispatcher.Do(ctx, "broadcast.send", "sendMessage", func() error {
		_, err := a.messenger.Send(tele.ChatID(chatID), text)
		return err
	})
}

func unreachable(err error) bool {
	return errors.Is(err, tele.ErrBlockedByUser) ||
		errors.Is(err, tele.ErrUserIsDeactivated) ||
		errors.Is(err, tele.ErrChatNotFound) ||
		errors.Is(err, tele.ErrNotStartedByUser)
}

// commandPayload returns the text following the command word.
func commandPayload(text string) string {
	text = strings.TrimSpace(text)
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i:])
}

func backView(text string) navigation.View {
	return navigation.View{
		Screen: navigation.Screen{Kind: navigation.Menu},
		Text:   text,
		Rows:   [][]navigation.Button{{{Label: navigation.LabelBack, Action: navigation.MenuAction()}}},
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
