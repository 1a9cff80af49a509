package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/infobot/core/logger"
)

const (
	defaultPoolSize = 4
	connectTimeout  = 30 * time.Second
	pingEvery       = 2 * time.Second
)

// Connect opens the Postgres pool and pings it until the server accepts
// connections, giving up after connectTimeout or when ctx ends.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	target := []slog.Attr{
		slog.String("host", cfg.Host),
		slog.String("port", cfg.port()),
		slog.String("db", cfg.Name),
	}
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	pool := cfg.MaxConnections
	if pool <= 0 {
		pool = defaultPoolSize
	}
	db.SetMaxOpenConns(pool)
	db.SetMaxIdleConns(pool)

	start := time.Now()
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			logger.Info(ctx, "db", "db.connect", append(target,
				slog.String("status", "ok"),
				slog.Int("pool_open", pool),
				slog.Int("attempts", attempt),
				slog.Duration("duration", time.Since(start)),
			)...)
			return db, nil
		}
		logger.Debug(ctx, "db", "db.ping", append(target,
			slog.String("status", "retry"),
			slog.Int("attempts", attempt),
			slog.String("err", err.Error()),
		)...)
		select {
		case <-ctx.Done():
			_ = db.Close()
			err = errors.Join(err, ctx.Err())
			logger.Error(ctx, "db", "db.connect", append(target,
				slog.String("status", "fail"),
				slog.Int("attempts", attempt),
				slog.Duration("duration", time.Since(start)),
				slog.String("err", err.Error()),
			)...)
			return nil, fmt.Errorf("db connect: %w", err)
		case <-time.After(pingEvery):
		}
	}
}
