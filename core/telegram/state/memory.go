package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m3rciful/infobot/core/logger"
	tghelpers "github.com/m3rciful/infobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// maxConversations bounds memory when many users start and abandon steps.
const maxConversations = 4096

type memoryManager struct {
	steps *expirable.LRU[int64, State]

	mu       sync.RWMutex
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager returns a Manager that forgets a conversation ttl after
// its last SetState. A non-positive ttl selects DefaultTTL.
func NewMemoryManager(ttl time.Duration) Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryManager{
		steps:    expirable.NewLRU[int64, State](maxConversations, nil, ttl),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

func (m *memoryManager) SetState(userID int64, st State) {
	if st == StateIdle {
		m.steps.Remove(userID)
		return
	}
	m.steps.Add(userID, st)
}

func (m *memoryManager) GetState(userID int64) State {
	st, _ := m.steps.Get(userID)
	return st
}

func (m *memoryManager) ClearState(userID int64) {
	m.steps.Remove(userID)
}

func (m *memoryManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil || st == StateIdle {
		return
	}
	m.mu.Lock()
	m.handlers[st] = h
	m.mu.Unlock()
}

func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// ManagerHandler runs the handler bound to the sender's step. A step nobody
// handles is cleared so the user is not stuck in it.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	st := m.GetState(sender.ID)
	if st == StateIdle {
		return nil
	}
	m.mu.RLock()
	h, ok := m.handlers[st]
	m.mu.RUnlock()

	ctx := tghelpers.BuildContext(c)
	if !ok {
		m.ClearState(sender.ID)
		logger.Warn(ctx, "tg", "conversation.step",
			slog.String("status", "skip"),
			slog.String("state", string(st)),
			slog.String("reason", "no_handler"),
		)
		return nil
	}
	logger.Debug(ctx, "tg", "conversation.step", slog.String("state", string(st)))
	return h(c)
}
