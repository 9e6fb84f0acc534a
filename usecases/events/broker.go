// Package events carries the notifications of the designer (connection changes, syncs, drafts) to whoever
// listens to them. Publishing never blocks the publisher.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/checkmarble/form-designer/utils"
)

type Name string

const (
	ConnectionStatusChanged Name = "connection_status_changed"
	FormSynced              Name = "form_synced"
	QueueDrained            Name = "queue_drained"
	DraftSaved              Name = "draft_saved"
)

const DefaultBufferSize = 64

type Event struct {
	Name      Name
	FormId    string
	Payload   any
	Timestamp time.Time
}

type Subscription struct {
	id     int
	name   Name
	events chan Event
	broker *Broker
}

// Events is closed when the subscription is cancelled.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Unsubscribe() {
	s.broker.unsubscribe(s)
}

type Broker struct {
	mu            sync.RWMutex
	nextId        int
	bufferSize    int
	subscriptions map[Name]map[int]*Subscription
}

func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broker{
		bufferSize:    bufferSize,
		subscriptions: make(map[Name]map[int]*Subscription),
	}
}

func (b *Broker) Subscribe(name Name) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextId++
	sub := &Subscription{
		id:     b.nextId,
		name:   name,
		events: make(chan Event, b.bufferSize),
		broker: b,
	}
	if b.subscriptions[name] == nil {
		b.subscriptions[name] = make(map[int]*Subscription)
	}
	b.subscriptions[name][sub.id] = sub
	return sub
}

func (b *Broker) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscriptions[sub.name][sub.id]; !ok {
		return
	}
	delete(b.subscriptions[sub.name], sub.id)
	close(sub.events)
}

// Publish hands the event to every subscriber of its name. A subscriber whose buffer is full misses the event.
func (b *Broker) Publish(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscriptions[event.Name] {
		select {
		case sub.events <- event:
		default:
			utils.LoggerFromContext(ctx).WarnContext(ctx, "event dropped, subscriber buffer is full",
				"event", event.Name,
				"form_id", event.FormId)
		}
	}
}
