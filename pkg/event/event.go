// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	BodyAdded        Type = "body_added"
	BodyRemoved      Type = "body_removed"
	GeneratorRemoved Type = "generator_removed"
	ContactBegan     Type = "contact_began"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription is returned by Subscribe. Cancel removes the handler.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscription struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscription
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscription),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers in subscription order
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	b.mu.RUnlock()

	for _, s := range snapshot {
		s.handler(event)
	}
}

// Specific event implementations

// BodyEvent contains information about body lifecycle events
type BodyEvent struct {
	BaseEvent
	BodyID entity.ID
	Kind   entity.Kind
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source interface{}, body *entity.Body) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		BodyID: body.ID(),
		Kind:   body.Kind(),
	}
}

// GeneratorEvent is published when a generator is dropped because one of
// its bodies went away.
type GeneratorEvent struct {
	BaseEvent
	Generator string
	Bodies    []entity.ID
}

// NewGeneratorEvent creates a new generator event
func NewGeneratorEvent(source interface{}, name string, bodies []entity.ID) *GeneratorEvent {
	return &GeneratorEvent{
		BaseEvent: BaseEvent{
			EventType: GeneratorRemoved,
			Source:    source,
		},
		Generator: name,
		Bodies:    bodies,
	}
}

// ContactEvent contains information about a new contact between two bodies
type ContactEvent struct {
	BaseEvent
	BodyA entity.ID
	BodyB entity.ID
	Axis  physics.Vector2D
}

// NewContactEvent creates a new contact event
func NewContactEvent(source interface{}, a, b entity.ID, axis physics.Vector2D) *ContactEvent {
	return &ContactEvent{
		BaseEvent: BaseEvent{
			EventType: ContactBegan,
			Source:    source,
		},
		BodyA: a,
		BodyB: b,
		Axis:  axis,
	}
}
