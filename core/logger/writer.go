package logger

import (
	"errors"
	"io"
	"sync"
)

// asyncWriter moves sink I/O off the caller goroutine. Lines are written in enqueue order
// to every sink; the first sink error is sticky and returned to later writers.
type asyncWriter struct {
	lines   chan []byte
	flushes chan chan error
	done    chan struct{}
	close   sync.Once

	sinks []io.Writer

	mu  sync.Mutex
	err error
}

func newAsyncWriter(sinks []io.Writer, queue int) *asyncWriter {
	if queue <= 0 {
		queue = 256
	}
	w := &asyncWriter{
		lines:   make(chan []byte, queue),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
	}
	for _, s := range sinks {
		if s != nil {
			w.sinks = append(w.sinks, s)
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return
			}
			w.fail(w.fanOut(line))
		case ack := <-w.flushes:
			// drain whatever is already queued before acknowledging
			for pending := len(w.lines); pending > 0; pending-- {
				w.fail(w.fanOut(<-w.lines))
			}
			ack <- w.sticky()
		}
	}
}

// Write copies p and enqueues it; it blocks only while the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.sticky(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.lines <- append([]byte(nil), p...)
	return nil
}

// Flush returns once all lines queued before the call reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		return <-ack
	case <-w.done:
		return w.sticky()
	}
}

// Close drains the queue and stops the writer goroutine.
func (w *asyncWriter) Close() error {
	w.close.Do(func() { close(w.lines) })
	<-w.done
	return w.sticky()
}

func (w *asyncWriter) fanOut(line []byte) error {
	var errs []error
	for _, s := range w.sinks {
		if _, err := s.Write(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.mu.Unlock()
}

func (w *asyncWriter) sticky() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
