package producer

import (
	"encoding/hex"
	"strconv"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

const (
	// EventTypeProducerRegistered is emitted on the first registration of an account.
	EventTypeProducerRegistered = "producer.registered"
	// EventTypeAuthorizationChanged is emitted when an admin toggles a producer.
	EventTypeAuthorizationChanged = "producer.authorization.changed"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

// ProducerRegisteredEvent returns the payload for a first-time registration.
func ProducerRegisteredEvent(addr string) *types.Event {
	return &types.Event{
		Type: EventTypeProducerRegistered,
		Attributes: map[string]string{
			"producer": addr,
		},
	}
}

// AuthorizationChangedEvent captures an admin toggling a producer's authorization.
func AuthorizationChangedEvent(addr string, enabled bool) *types.Event {
	return &types.Event{
		Type: EventTypeAuthorizationChanged,
		Attributes: map[string]string{
			"producer": addr,
			"enabled":  strconv.FormatBool(enabled),
		},
	}
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}
