package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State names a conversation step. The zero value means no conversation.
type State string

// StateIdle is reported for users without a conversation.
const StateIdle State = ""

// DefaultTTL ends a conversation the user walked away from.
const DefaultTTL = 10 * time.Minute

// Manager tracks the step each user is at and routes their next message to
// the handler bound to that step.
type Manager interface {
	SetState(userID int64, st State)
	GetState(userID int64) State
	ClearState(userID int64)

	// Handle binds the handler run for messages received while in st.
	Handle(st State, h tele.HandlerFunc)
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}
