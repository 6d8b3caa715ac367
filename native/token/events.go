package token

import (
	"encoding/hex"
	"strconv"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

const (
	// EventTypeTransfer is emitted when units move between accounts.
	EventTypeTransfer = "token.transfer"
	// EventTypeApprovalForAll is emitted when an operator grant changes.
	EventTypeApprovalForAll = "token.approval"
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

// TransferEvent captures a balance move within one token class.
func TransferEvent(from, to string, class uint64, amount string) *types.Event {
	return &types.Event{
		Type: EventTypeTransfer,
		Attributes: map[string]string{
			"from":   from,
			"to":     to,
			"class":  strconv.FormatUint(class, 10),
			"amount": amount,
		},
	}
}

// ApprovalForAllEvent captures an operator grant change.
func ApprovalForAllEvent(holder, operator string, enabled bool) *types.Event {
	return &types.Event{
		Type: EventTypeApprovalForAll,
		Attributes: map[string]string{
			"holder":   holder,
			"operator": operator,
			"enabled":  strconv.FormatBool(enabled),
		},
	}
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}
