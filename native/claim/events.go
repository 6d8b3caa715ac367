package claim

import (
	"encoding/hex"
	"strconv"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

// EventTypeClaimed is emitted once per successfully redeemed code.
const EventTypeClaimed = "claim.redeemed"

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

// ClaimedEvent carries the claimant, the batch, and the redeemed leaf hash.
func ClaimedEvent(claimant string, batchID uint64, leaf string) *types.Event {
	return &types.Event{
		Type: EventTypeClaimed,
		Attributes: map[string]string{
			"claimant": claimant,
			"batchId":  strconv.FormatUint(batchID, 10),
			"leaf":     leaf,
		},
	}
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}
