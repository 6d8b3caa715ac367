package batch

import (
	"encoding/hex"
	"strconv"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

// EventTypeBatchCreated is emitted once per successful batch creation.
const EventTypeBatchCreated = "batch.created"

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

// BatchCreatedEvent carries the producer and the assigned batch identifier.
func BatchCreatedEvent(producerAddr string, id uint64) *types.Event {
	return &types.Event{
		Type: EventTypeBatchCreated,
		Attributes: map[string]string{
			"producer": producerAddr,
			"batchId":  strconv.FormatUint(id, 10),
		},
	}
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}
