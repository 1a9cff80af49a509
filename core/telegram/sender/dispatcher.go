// Package sender runs outbound Bot API calls on a small worker pool with a
// retry policy for flood waits and transient network failures.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/infobot/core/logger"
)

var (
	// ErrQueueClosed is returned once the dispatcher has been closed.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull means the job was refused because every slot is taken.
	ErrQueueFull = errors.New("telegram sender: queue full")

	errNilRun = errors.New("telegram sender: nil run function")
)

const (
	defaultQueueSize    = 256
	defaultWorkers      = 4
	defaultRetryBackoff = 2 * time.Second
	defaultMaxDuration  = 12 * time.Second
)

// Options controls the behaviour of the outbound dispatcher. Zero values
// select defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on one call, retries included.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = defaultRetryBackoff
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = defaultMaxDuration
	}
	return o
}

// Stats counts finished calls since the dispatcher started.
type Stats struct {
	Sent    uint64
	Failed  uint64
	Retried uint64
}

// call is one Bot API request. run must be safe to repeat.
type call struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls, either queued for a worker
// (Enqueue) or inline on the caller's goroutine (Do).
type Dispatcher struct {
	opts Options

	mu     sync.RWMutex
	closed bool
	queue  chan call
	wg     sync.WaitGroup

	sent, failed, retried atomic.Uint64
}

// NewDispatcher starts the worker pool.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts:  opts,
		queue: make(chan call, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer d.wg.Done()
			for c := range d.queue {
				_ = d.execute(c)
			}
		}()
	}
	return d
}

// Enqueue hands run to a worker and returns at once. Failures are logged,
// not returned.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queue <- call{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do runs the call on the caller's goroutine under the same retry policy
// and returns the final error, so callers can act on per-chat outcomes.
func (d *Dispatcher) Do(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	return d.execute(call{ctx: ctx, action: action, endpoint: endpoint, run: run})
}

// Stats returns the call counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Retried: d.retried.Load(),
	}
}

// Close refuses new jobs, drains the queue and waits for the workers. It is
// safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) execute(c call) error {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	deadline, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	logger.Debug(ctx, "tg.sender", "send.start", c.attrs(ctx)...)

	var err error
	for attempt := 1; ; attempt++ {
		if err = c.run(); err == nil {
			d.sent.Add(1)
			attrs := append(c.attrs(ctx), slog.Int("attempt", attempt), slog.Duration("elapsed", time.Since(start)))
			if attempt > 1 {
				logger.Info(ctx, "tg.sender", "send.retry.success", attrs...)
			} else {
				logger.Debug(ctx, "tg.sender", "send.success", attrs...)
			}
			return nil
		}
		if attempt == attempts || !retryable(err) {
			break
		}
		delay := d.backoff(err, attempt)
		if !sleep(deadline, delay) {
			err = errors.Join(err, deadline.Err())
			break
		}
		d.retried.Add(1)
		logger.Debug(ctx, "tg.sender", "send.retry.backoff",
			append(c.attrs(ctx), slog.Int("attempt", attempt), slog.Duration("delay", delay))...,
		)
	}

	d.failed.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail",
		append(c.attrs(ctx),
			slog.String("error", redactToken(err)),
			slog.String("error_kind", classifyError(err)),
			slog.Int("attempts", attempts),
			slog.Duration("elapsed", time.Since(start)),
		)...,
	)
	return err
}

// sleep waits for d or until ctx ends, reporting whether the full delay
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c call) attrs(ctx context.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", c.action)}
	if c.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", c.endpoint))
	}
	return append(attrs, logger.MetaFrom(ctx).Attrs()...)
}
