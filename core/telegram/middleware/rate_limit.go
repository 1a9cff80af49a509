package middleware

import (
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	coreconfig "github.com/m3rciful/infobot/core/config"
	"github.com/m3rciful/infobot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// trackedUsers caps how many per-user limiters are remembered; the least
// recently active user is forgotten first.
const trackedUsers = 10_000

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists update kinds (see coreconfig.Update*) that are never limited.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now overrides the clock; time.Now when nil.
	Now func() time.Time
}

func (o RateLimitOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// updateKind names the update for exclusion matching and logs.
func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	default:
		return "other"
	}
}

// RateLimitMiddleware lets each user through at most once per Interval.
// Throttled updates are dropped after OnLimited runs.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	limiters, _ := lru.New[int64, *rate.Limiter](trackedUsers)
	var mu sync.Mutex
	limiterFor := func(userID int64) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters.Get(userID); ok {
			return l
		}
		l := rate.NewLimiter(rate.Every(opts.Interval), 1)
		limiters.Add(userID, l)
		return l
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := updateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if limiterFor(user.ID).AllowN(opts.now(), 1) {
				return next(c)
			}

			attrs := []slog.Attr{
				slog.String("status", "rate_limited"),
				slog.String("kind", kind),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.Warn(logger.Background(), "tg", "tg.rate_limit", attrs...)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
