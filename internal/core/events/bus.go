// Package events carries the session's outbound notifications: placement
// mode changes, tracking-state changes, and stabilized transform updates.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeModeChanged      Type = "session.mode_changed"
	TypeTrackingChanged  Type = "session.tracking_changed"
	TypeTransformUpdated Type = "board.transform_updated"
)

// Event is a single notification. Data holds the type-specific payload.
type Event struct {
	ID   uuid.UUID
	Type Type
	At   time.Time
	Data any
}

func New(typ Type, data any) Event {
	return Event{ID: uuid.New(), Type: typ, At: time.Now(), Data: data}
}

type Handler func(Event)

// Subscription cancels a handler registration.
type Subscription struct {
	cancel func()
}

func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Bus dispatches events synchronously to subscribers of their type.
// Handlers run on the publisher's goroutine; keep them short.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[Type]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Type]map[int]Handler)}
}

func (b *Bus) Subscribe(typ Type, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[typ] == nil {
		b.handlers[typ] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[typ][id] = h

	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[typ], id)
	}}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[e.Type]))
	for _, h := range b.handlers[e.Type] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}
