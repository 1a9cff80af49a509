package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "metrics.counters"

// Counters tally what a handler sent back for one update. Fields are
// atomic because replies may leave through dispatcher workers.
type Counters struct {
	messages atomic.Int32
	edits    atomic.Int32
	answered atomic.Bool
	keyboard atomic.Bool
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Messages int
	Edits    int
	// Answered reports a callback or inline query answer.
	Answered bool
	Keyboard bool
}

// Snapshot copies the current values.
func (n *Counters) Snapshot() Snapshot {
	if n == nil {
		return Snapshot{}
	}
	return Snapshot{
		Messages: int(n.messages.Load()),
		Edits:    int(n.edits.Load()),
		Answered: n.answered.Load(),
		Keyboard: n.keyboard.Load(),
	}
}

type metricsContext struct {
	tele.Context
	n *Counters
}

func (m metricsContext) delivered(edit bool, opts []interface{}) {
	if edit {
		m.n.edits.Add(1)
	} else {
		m.n.messages.Add(1)
	}
	if hasKeyboard(opts) {
		m.n.keyboard.Store(true)
	}
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.delivered(false, opts)
	}
	return err
}

func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.delivered(false, opts)
	}
	return err
}

func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.delivered(true, opts)
	}
	return err
}

// EditOrSend counts an edit when the update is a button press, since that
// is the branch telebot takes.
func (m metricsContext) EditOrSend(what interface{}, opts ...interface{}) error {
	err := m.Context.EditOrSend(what, opts...)
	if err == nil {
		m.delivered(m.Context.Callback() != nil, opts)
	}
	return err
}

func (m metricsContext) EditOrReply(what interface{}, opts ...interface{}) error {
	err := m.Context.EditOrReply(what, opts...)
	if err == nil {
		m.delivered(m.Context.Callback() != nil, opts)
	}
	return err
}

func (m metricsContext) Respond(resp ...*tele.CallbackResponse) error {
	err := m.Context.Respond(resp...)
	if err == nil {
		m.n.answered.Store(true)
	}
	return err
}

func (m metricsContext) Answer(resp *tele.QueryResponse) error {
	err := m.Context.Answer(resp)
	if err == nil {
		m.n.answered.Store(true)
	}
	return err
}

// MessageMetricsMiddleware attaches fresh Counters to every update and hands
// the handler an instrumented context.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		n := &Counters{}
		c.Set(countersKey, n)
		return next(metricsContext{Context: c, n: n})
	}
}

// CountersFrom returns what has been sent for the update so far. It is zero
// when MessageMetricsMiddleware did not run.
func CountersFrom(c tele.Context) Snapshot {
	n, _ := c.Get(countersKey).(*Counters)
	return n.Snapshot()
}
