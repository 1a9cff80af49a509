package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

const queueDepth = 256

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter moves encoded lines off the logging goroutine. One loop owns
// the buffered sinks; it flushes whenever the queue runs dry so lines never
// sit in memory while the bot is idle.
type asyncWriter struct {
	lines     chan []byte
	flushes   chan chan error
	stopped   chan struct{}
	closeOnce sync.Once

	out *bufio.Writer

	mu  sync.Mutex
	err error
}

func newAsyncWriter(sinks []io.Writer, bufSize int) *asyncWriter {
	live := make([]io.Writer, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	if bufSize <= 0 {
		bufSize = writeBufferSize
	}
	w := &asyncWriter{
		lines:   make(chan []byte, queueDepth),
		flushes: make(chan chan error),
		stopped: make(chan struct{}),
		out:     bufio.NewWriterSize(io.MultiWriter(live...), bufSize),
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.stopped)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.fail(w.out.Flush())
				return
			}
			if _, err := w.out.Write(line); err != nil {
				w.fail(err)
				continue
			}
			if len(w.lines) == 0 {
				w.fail(w.out.Flush())
			}
		case ack := <-w.flushes:
			ack <- w.out.Flush()
		}
	}
}

// Write queues a copy of line. It blocks while the queue is full rather
// than dropping log output.
func (w *asyncWriter) Write(line []byte) error {
	if err := w.Err(); err != nil {
		return err
	}
	if len(line) == 0 {
		return nil
	}
	w.lines <- append([]byte(nil), line...)
	return nil
}

// Flush waits until everything queued so far reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		return errors.Join(<-ack, w.Err())
	case <-w.stopped:
		return errWriterClosed
	}
}

// Close drains the queue, flushes and stops the loop. It returns the first
// write error seen.
func (w *asyncWriter) Close() error {
	w.closeOnce.Do(func() { close(w.lines) })
	<-w.stopped
	return w.Err()
}

// Err returns the first write error.
func (w *asyncWriter) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
