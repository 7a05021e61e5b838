package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBufferFull is returned by an async publisher that cannot accept more
// events.
var ErrBufferFull = errors.New("event buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("event publisher closed")

// Publisher hands events to a Sink, synchronously or through a buffered
// worker. Usage events are best effort: a full buffer drops the event.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
	inbox  chan Event
	wg     sync.WaitGroup
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking with a buffer of size n.
func WithAsyncBuffer(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.inbox = make(chan Event, n)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPublisher(sink Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		w := NewWorker(sink, p.inbox, p.logger)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Run()
		}()
	}
	return p
}

// Emit stamps and forwards an event. A nil publisher discards events.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if p.inbox == nil {
		return p.sink.Append(ctx, event)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "dropping usage event, buffer full", "type", event.Type)
		}
		return ErrBufferFull
	}
}

// Close stops accepting events and waits for buffered ones to reach the
// sink.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
