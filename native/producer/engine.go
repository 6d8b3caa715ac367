package producer

import (
	"errors"
	"fmt"
	"strings"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

// MaxFieldLength bounds every profile string stored on the ledger.
const MaxFieldLength = 256

var (
	errNilState               = errors.New("producer engine: state not configured")
	errNilAccess              = errors.New("producer engine: access control not configured")
	ErrAdminOnly              = errors.New("producer engine: caller is not an admin")
	ErrInvalidField           = errors.New("producer engine: invalid profile field")
	ErrAuthorizationUnchanged = errors.New("producer engine: authorization already applied")
	ErrProducerNotFound       = errors.New("producer engine: producer not found")
)

type engineState interface {
	ProducerGet(addr [20]byte) (*Producer, bool, error)
	ProducerPut(record *Producer) error
}

type adminChecker interface {
	IsAdmin(addr [20]byte) (bool, error)
}

// Engine maintains the producer registry. Any account may register and
// rewrite its own profile; the authorization flag is admin-gated and lives
// independently of the profile fields.
type Engine struct {
	state   engineState
	access  adminChecker
	emitter events.Emitter
}

// NewEngine constructs a producer engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAccess configures the access-control engine consulted for admin gating.
func (e *Engine) SetAccess(access adminChecker) { e.access = access }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func sanitizeField(name string, value string, required bool) (string, error) {
	trimmed := strings.TrimSpace(value)
	if required && trimmed == "" {
		return "", fmt.Errorf("%w: %s required", ErrInvalidField, name)
	}
	if len(trimmed) > MaxFieldLength {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidField, name, MaxFieldLength)
	}
	return trimmed, nil
}

// Register creates the caller's producer record, or rewrites the profile
// fields of an existing one. The authorization flag is never touched here:
// re-registration is idempotent with respect to it, and an account that was
// authorized before registering keeps the grant.
func (e *Engine) Register(caller [20]byte, name, location, registrationNumber, metadataRef string) (*Producer, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	sanitizedName, err := sanitizeField("name", name, true)
	if err != nil {
		return nil, err
	}
	sanitizedLocation, err := sanitizeField("location", location, false)
	if err != nil {
		return nil, err
	}
	sanitizedRegNo, err := sanitizeField("registrationNumber", registrationNumber, false)
	if err != nil {
		return nil, err
	}
	sanitizedMeta, err := sanitizeField("metadataRef", metadataRef, false)
	if err != nil {
		return nil, err
	}
	record, exists, err := e.state.ProducerGet(caller)
	if err != nil {
		return nil, err
	}
	if !exists || record == nil {
		record = &Producer{Address: caller}
	}
	record.Name = sanitizedName
	record.Location = sanitizedLocation
	record.RegistrationNumber = sanitizedRegNo
	record.MetadataRef = sanitizedMeta
	if err := e.state.ProducerPut(record); err != nil {
		return nil, err
	}
	if !exists {
		e.emit(ProducerRegisteredEvent(hexAddr(caller)))
	}
	return record.Clone(), nil
}

// SetAuthorization toggles a producer's authorization flag. Admin only.
// Re-applying the current value fails so a double toggle is never mistaken
// for success. A record is created lazily when the target has not registered
// yet, letting admins authorize producers ahead of their self-registration.
func (e *Engine) SetAuthorization(caller [20]byte, target [20]byte, enabled bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.access == nil {
		return errNilAccess
	}
	isAdmin, err := e.access.IsAdmin(caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrAdminOnly
	}
	record, exists, err := e.state.ProducerGet(target)
	if err != nil {
		return err
	}
	if !exists || record == nil {
		record = &Producer{Address: target}
	}
	if record.Authorized == enabled {
		return ErrAuthorizationUnchanged
	}
	record.Authorized = enabled
	if err := e.state.ProducerPut(record); err != nil {
		return err
	}
	e.emit(AuthorizationChangedEvent(hexAddr(target), enabled))
	return nil
}

// Get returns the producer record for the address.
func (e *Engine) Get(addr [20]byte) (*Producer, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, exists, err := e.state.ProducerGet(addr)
	if err != nil {
		return nil, err
	}
	if !exists || record == nil {
		return nil, ErrProducerNotFound
	}
	return record.Clone(), nil
}

// IsAuthorized reports whether the address is an authorized producer. Unknown
// addresses are simply unauthorized.
func (e *Engine) IsAuthorized(addr [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	record, exists, err := e.state.ProducerGet(addr)
	if err != nil {
		return false, err
	}
	if !exists || record == nil {
		return false, nil
	}
	return record.Authorized, nil
}
