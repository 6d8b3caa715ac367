package access

import (
	"errors"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

var (
	errNilState        = errors.New("access engine: state not configured")
	ErrOwnerOnly       = errors.New("access engine: caller is not the owner")
	ErrInvalidOwner    = errors.New("access engine: owner must not be the zero address")
	ErrOwnerAlreadySet = errors.New("access engine: owner already configured")
	ErrOwnerNotSet     = errors.New("access engine: owner not configured")
	ErrAlreadyAdmin    = errors.New("access engine: account is already an admin")
	ErrNotAdmin        = errors.New("access engine: account is not an admin")
	ErrInvalidAdmin    = errors.New("access engine: admin must not be the zero address")
)

type engineState interface {
	AccessOwnerGet() ([20]byte, bool, error)
	AccessOwnerPut(addr [20]byte) error
	AccessAdminGet(addr [20]byte) (bool, error)
	AccessAdminPut(addr [20]byte, enabled bool) error
}

// Engine tracks the single owner and the admin set, and gates every
// owner-only mutation. Registry and batch engines consult it instead of
// holding their own role state.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine constructs an access engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

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

// Initialize records the owner exactly once. Called during node genesis.
func (e *Engine) Initialize(owner [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if isZeroAddress(owner) {
		return ErrInvalidOwner
	}
	if _, ok, err := e.state.AccessOwnerGet(); err != nil {
		return err
	} else if ok {
		return ErrOwnerAlreadySet
	}
	return e.state.AccessOwnerPut(owner)
}

// Owner returns the configured owner address.
func (e *Engine) Owner() ([20]byte, error) {
	var zero [20]byte
	if e == nil || e.state == nil {
		return zero, errNilState
	}
	owner, ok, err := e.state.AccessOwnerGet()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrOwnerNotSet
	}
	return owner, nil
}

// IsAdmin reports whether the account may perform admin-gated operations.
// The owner is implicitly an admin.
func (e *Engine) IsAdmin(addr [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	owner, ok, err := e.state.AccessOwnerGet()
	if err != nil {
		return false, err
	}
	if ok && owner == addr {
		return true, nil
	}
	return e.state.AccessAdminGet(addr)
}

func (e *Engine) requireOwner(caller [20]byte) error {
	owner, err := e.Owner()
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrOwnerOnly
	}
	return nil
}

// AddAdmin grants admin rights to the account. Owner only.
func (e *Engine) AddAdmin(caller [20]byte, admin [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if isZeroAddress(admin) {
		return ErrInvalidAdmin
	}
	already, err := e.state.AccessAdminGet(admin)
	if err != nil {
		return err
	}
	if already {
		return ErrAlreadyAdmin
	}
	if err := e.state.AccessAdminPut(admin, true); err != nil {
		return err
	}
	e.emit(AdminAddedEvent(hexAddr(admin)))
	return nil
}

// RemoveAdmin revokes admin rights from the account. Owner only.
func (e *Engine) RemoveAdmin(caller [20]byte, admin [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	enabled, err := e.state.AccessAdminGet(admin)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrNotAdmin
	}
	if err := e.state.AccessAdminPut(admin, false); err != nil {
		return err
	}
	e.emit(AdminRemovedEvent(hexAddr(admin)))
	return nil
}

// TransferOwnership hands the owner role to a new account. Owner only; the
// zero address is rejected so the owner role can never become vacant.
func (e *Engine) TransferOwnership(caller [20]byte, newOwner [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if isZeroAddress(newOwner) {
		return ErrInvalidOwner
	}
	if err := e.state.AccessOwnerPut(newOwner); err != nil {
		return err
	}
	e.emit(OwnershipTransferredEvent(hexAddr(caller), hexAddr(newOwner)))
	return nil
}
