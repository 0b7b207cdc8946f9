// SPDX-License-Identifier: MPL-2.0

// Package msgbus is an in-process event channel. Publishers choose per call
// between a detached publish and one that waits for every handler to finish.
package msgbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type (
	// Event is a message published on the bus.
	Event interface {
		Topic() string
	}

	// Envelope carries an event to handlers.
	Envelope struct {
		ID          uuid.UUID
		PublishedAt time.Time
		Event       Event
	}

	// Handler receives envelopes for a subscribed topic.
	Handler func(ctx context.Context, env Envelope) error

	// Publisher is the publishing side of the bus.
	Publisher interface {
		// Publish delivers ev in the background and returns immediately.
		Publish(ev Event)
		// PublishAwait delivers ev and blocks until every handler returned.
		PublishAwait(ctx context.Context, ev Event) error
	}

	// Bus is a topic based Publisher with subscription support.
	Bus struct {
		mu       sync.RWMutex
		handlers map[string]map[uuid.UUID]Handler
		inflight sync.WaitGroup
		logger   *log.Logger
	}
)

// New creates a Bus. A nil logger discards handler failures.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bus{handlers: make(map[string]map[uuid.UUID]Handler), logger: logger}
}

// Subscribe registers h for topic and returns a function removing it.
func (b *Bus) Subscribe(topic string, h Handler) (unsubscribe func()) {
	id := uuid.New()
	b.mu.Lock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[uuid.UUID]Handler)
	}
	b.handlers[topic][id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers[topic], id)
		b.mu.Unlock()
	}
}

// Publish implements Publisher. Handler errors are logged.
func (b *Bus) Publish(ev Event) {
	env := newEnvelope(ev)
	for _, h := range b.snapshot(ev.Topic()) {
		b.inflight.Add(1)
		go func() {
			defer b.inflight.Done()
			if err := h(context.Background(), env); err != nil {
				b.logger.Warn("event handler failed", "topic", ev.Topic(), "event", env.ID, "error", err)
			}
		}()
	}
}

// PublishAwait implements Publisher. Handlers run concurrently; their errors are joined.
func (b *Bus) PublishAwait(ctx context.Context, ev Event) error {
	env := newEnvelope(ev)
	handlers := b.snapshot(ev.Topic())

	errs := make([]error, len(handlers))
	var wg sync.WaitGroup
	for i, h := range handlers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h(ctx, env); err != nil {
				errs[i] = fmt.Errorf("%s handler: %w", ev.Topic(), err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return errors.Join(errs...)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every detached delivery started by Publish has returned.
func (b *Bus) Wait() { b.inflight.Wait() }

func (b *Bus) snapshot(topic string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, 0, len(b.handlers[topic]))
	for _, h := range b.handlers[topic] {
		out = append(out, h)
	}
	return out
}

func newEnvelope(ev Event) Envelope {
	return Envelope{ID: uuid.New(), PublishedAt: time.Now(), Event: ev}
}
