package audience

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/infobot/core/logger"
)

// Postgres stores subscribers in the audience_chats table.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection; the schema comes from migrations.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Touch(ctx context.Context, chatID int64, username string) error {
	_, err := p.db.ExecContext(ctx, `
	INSERT INTO audience_chats(chat_id, username, first_seen, last_seen)
	VALUES ($1, $2, now(), now())
	ON CONFLICT (chat_id) DO UPDATE SET
	 username = excluded.username,
	 last_seen = now()`, chatID, username)
	if err != nil {
		return fmt.Errorf("audience touch %d: %w", chatID, err)
	}
	logger.Debug(ctx, "audience", "audience.touch",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
	)
	return nil
}

func (p *Postgres) Remove(ctx context.Context, chatID int64) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM audience_chats WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("audience remove %d: %w", chatID, err)
	}
	return nil
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.GetContext(ctx, &n, `SELECT count(*) FROM audience_chats`); err != nil {
		return 0, fmt.Errorf("audience count: %w", err)
	}
	return n, nil
}

func (p *Postgres) ChatIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := p.db.SelectContext(ctx, &ids, `SELECT chat_id FROM audience_chats ORDER BY first_seen, chat_id`); err != nil {
		return nil, fmt.Errorf("audience list: %w", err)
	}
	return ids, nil
}
