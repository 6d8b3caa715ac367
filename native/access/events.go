package access

import (
	"encoding/hex"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

const (
	// EventTypeAdminAdded is emitted when the owner grants admin rights.
	EventTypeAdminAdded = "access.admin.added"
	// EventTypeAdminRemoved is emitted when the owner revokes admin rights.
	EventTypeAdminRemoved = "access.admin.removed"
	// EventTypeOwnershipTransferred is emitted when the owner role moves.
	EventTypeOwnershipTransferred = "access.ownership.transferred"
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

// AdminAddedEvent returns the payload announcing a new admin.
func AdminAddedEvent(admin string) *types.Event {
	return &types.Event{
		Type: EventTypeAdminAdded,
		Attributes: map[string]string{
			"admin": admin,
		},
	}
}

// AdminRemovedEvent returns the payload announcing a revoked admin.
func AdminRemovedEvent(admin string) *types.Event {
	return &types.Event{
		Type: EventTypeAdminRemoved,
		Attributes: map[string]string{
			"admin": admin,
		},
	}
}

// OwnershipTransferredEvent captures the old and new owner of the ledger.
func OwnershipTransferredEvent(previous string, next string) *types.Event {
	return &types.Event{
		Type: EventTypeOwnershipTransferred,
		Attributes: map[string]string{
			"previousOwner": previous,
			"newOwner":      next,
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
