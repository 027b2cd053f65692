package events

import (
	"github.com/kelindar/event"
)

// Bus wraps the kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(LightAppliedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event's Publish is generic over the concrete event type, so
	// dispatch goes through a type switch.
	switch e := ev.(type) {
	case LightAppliedEvent:
		event.Publish(b.dispatcher, e)
	case LightWriteFailedEvent:
		event.Publish(b.dispatcher, e)
	case AttentionChangedEvent:
		event.Publish(b.dispatcher, e)
	case SceneLoadedEvent:
		event.Publish(b.dispatcher, e)
	case ScenePlaybackFinishedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e LightAppliedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LightAppliedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LightWriteFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(AttentionChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SceneLoadedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ScenePlaybackFinishedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Unrecognized handler signatures get a no-op unsubscribe.
		return func() {}
	}
}
