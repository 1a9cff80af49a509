package audience

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store used when no database is configured.
type Memory struct {
	mu    sync.RWMutex
	chats map[int64]Chat
	now   func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{chats: make(map[int64]Chat), now: time.Now}
}

func (m *Memory) Touch(_ context.Context, chatID int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	c, ok := m.chats[chatID]
	if !ok {
		c = Chat{ChatID: chatID, FirstSeen: now}
	}
	c.Username = username
	c.LastSeen = now
	m.chats[chatID] = c
	return nil
}

func (m *Memory) Remove(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, chatID)
	return nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chats), nil
}

func (m *Memory) ChatIDs(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	chats := make([]Chat, 0, len(m.chats))
	for _, c := range m.chats {
		chats = append(chats, c)
	}
	m.mu.RUnlock()

	sort.Slice(chats, func(i, j int) bool {
		if !chats[i].FirstSeen.Equal(chats[j].FirstSeen) {
			return chats[i].FirstSeen.Before(chats[j].FirstSeen)
		}
		return chats[i].ChatID < chats[j].ChatID
	})
	ids := make([]int64, len(chats))
	for i, c := range chats {
		ids[i] = c.ChatID
	}
	return ids, nil
}
