package review

import (
	"encoding/hex"
	"strconv"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

// EventTypeReviewAdded is emitted once per appended review.
const EventTypeReviewAdded = "review.added"

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

// ReviewAddedEvent carries the reviewer, the batch, and the rating.
func ReviewAddedEvent(reviewer string, batchID uint64, rating uint8) *types.Event {
	return &types.Event{
		Type: EventTypeReviewAdded,
		Attributes: map[string]string{
			"reviewer": reviewer,
			"batchId":  strconv.FormatUint(batchID, 10),
			"rating":   strconv.FormatUint(uint64(rating), 10),
		},
	}
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}
