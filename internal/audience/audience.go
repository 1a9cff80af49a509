// Package audience keeps the set of chats that started the bot, which the
// restricted stats and broadcast actions read. It holds no navigation state.
package audience

import (
	"context"
	"time"
)

// Chat is one subscriber record.
type Chat struct {
	ChatID    int64
	Username  string
	FirstSeen time.Time
	LastSeen  time.Time
}

// Store persists subscribers.
type Store interface {
	// Touch records chatID, refreshing its username and last-seen time.
	Touch(ctx context.Context, chatID int64, username string) error
	// Remove forgets chatID; removing an unknown chat is not an error.
	Remove(ctx context.Context, chatID int64) error
	Count(ctx context.Context) (int, error)
	// ChatIDs lists subscribers ordered by first contact.
	ChatIDs(ctx context.Context) ([]int64, error)
}
