package core

// EventContext carries the payload of a fired event.
type EventContext struct {
	// Name of the chunk, scene or resource the event is about.
	Name string
	// ID of the chunk or entity, when there is one.
	ID string
	// Data holds event specific values.
	Data interface{}
}

// System event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the game down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// A chunk was loaded and its entities instantiated.
	/* Context usage:
	 * Name = chunk name, ID = chunk id, Data = *scene.Chunk
	 */
	EVENT_CODE_CHUNK_ACTIVATED SystemEventCode = 0x02

	// A chunk is about to be unloaded.
	/* Context usage:
	 * Name = chunk name, ID = chunk id, Data = *scene.Chunk
	 */
	EVENT_CODE_CHUNK_DEACTIVATED SystemEventCode = 0x03

	// The active scene changed.
	/* Context usage:
	 * Name = scene name
	 */
	EVENT_CODE_SCENE_ACTIVATED SystemEventCode = 0x04

	// A resource file changed on disk and was reloaded.
	/* Context usage:
	 * Name = resource name, Data = relative path
	 */
	EVENT_CODE_RESOURCE_RELOADED SystemEventCode = 0x05

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events synchronously on the firing goroutine.
type EventBus struct {
	registered map[SystemEventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[SystemEventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 */
func (eb *EventBus) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if code < 0 || code >= MAX_MESSAGE_CODES || onEvent == nil {
		return false
	}
	for _, e := range eb.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	eb.registered[code] = append(eb.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 */
func (eb *EventBus) Unregister(code SystemEventCode, listener interface{}) bool {
	events := eb.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eb.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func (eb *EventBus) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	for _, e := range eb.registered[code] {
		if e.callback(code, sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}
