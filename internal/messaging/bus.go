// Package messaging delivers sync events to the UI layer.
//
// Delivery is fire-and-forget: Notify never blocks on a slow subscriber.
// A subscriber whose buffer is full misses the message and the drop is
// logged.
package messaging

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-notes-sync/internal/logger"
)

//go:generate mockgen -source=bus.go -destination=../mock/notifier_mock.go -package=mock

// Notifier is the sending side used by syncers and services.
type Notifier interface {
	// Notify publishes event with a JSON-encoded payload.
	Notify(event string, payload any) error
}

// Message is one published event.
type Message struct {
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Bus is an in-process [Notifier] with any number of channel subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Message
	closed bool

	logger *logger.Logger
}

// NewBus returns an empty bus.
func NewBus(logger *logger.Logger) *Bus {
	return &Bus{
		subs:   make(map[int]chan Message),
		logger: logger,
	}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// function unsubscribes and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Message, func()) {
	ch := make(chan Message, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Notify implements [Notifier].
func (b *Bus) Notify(event string, payload any) error {
	msg := Message{Event: event, Timestamp: time.Now()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", event, err)
		}
		msg.Data = data
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	for id, ch := range b.subs {
		select {
		case ch <- msg:
		default:
			b.logger.Warn().
				Str("func", "Bus.Notify").
				Str("event", event).
				Int("subscriber", id).
				Msg("subscriber buffer full, dropping message")
		}
	}
	return nil
}

// Close closes every subscriber channel. Later Notify calls fail with
// [ErrBusClosed].
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
