package sender

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestDispatcherRunsQueuedJobsBeforeClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
			ran.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	d.Close()

	if got := ran.Load(); got != 5 {
		t.Fatalf("ran %d jobs, want 5", got)
	}
	if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("enqueue after close = %v, want ErrQueueClosed", err)
	}
}

func TestDispatcherDoRetriesTransientErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	defer d.Close()

	calls := 0
	err := d.Do(context.Background(), "broadcast.send", "sendMessage", func() error {
		calls++
		if calls < 3 {
			return timeoutErr{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if got, want := d.Stats(), (Stats{Sent: 1, Retried: 2}); got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}

func TestDispatcherDoReturnsPermanentError(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	defer d.Close()

	blocked := errors.New("telegram: bot was blocked by the user (403)")
	calls := 0
	err := d.Do(context.Background(), "broadcast.send", "sendMessage", func() error {
		calls++
		return blocked
	})
	if !errors.Is(err, blocked) {
		t.Fatalf("err = %v, want %v", err, blocked)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if got, want := d.Stats(), (Stats{Failed: 1}); got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}

func TestRedactToken(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123:ABC-def/sendMessage": timeout`)
	got := redactToken(err)
	if strings.Contains(got, "123:ABC-def") || !strings.Contains(got, "bot<redacted>") {
		t.Fatalf("redacted = %q", got)
	}
}

func TestClassifyError(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{errors.New("telegram: chat not found (400)"), "http_4xx"},
		{errors.New("weird"), "unknown"},
		{fmt.Errorf("deliver: %w", tele.ErrBlockedByUser), "unreachable"},
		{tele.FloodError{RetryAfter: 3}, "flood"},
		{timeoutErr{}, "timeout"},
	} {
		if got := classifyError(tc.err); got != tc.want {
			t.Errorf("classifyError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	d.Close()
	if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("enqueue after close = %v", err)
	}
	if err := d.Do(context.Background(), "send.text", "sendMessage", nil); !errors.Is(err, errNilRun) {
		t.Fatalf("do with nil run = %v", err)
	}
}

func TestDispatcherDoStopsAtContextDeadline(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(Options{Workers: 1, MaxRetries: 5, RetryBackoff: time.Hour, MaxDuration: 20 * time.Millisecond})
	defer d.Close()

	calls := 0
	err := d.Do(context.Background(), "broadcast.send", "sendMessage", func() error {
		calls++
		return timeoutErr{}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if got, want := d.Stats(), (Stats{Failed: 1}); got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}
