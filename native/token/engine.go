package token

import (
	"errors"
	"math/big"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

var (
	errNilState          = errors.New("token engine: state not configured")
	ErrInvalidAmount     = errors.New("token engine: amount must be positive")
	ErrInsufficientFunds = errors.New("token engine: insufficient balance")
	ErrNotAuthorized     = errors.New("token engine: caller is neither holder nor approved operator")
	ErrSelfApproval      = errors.New("token engine: cannot set approval for self")
	ErrReentrantTransfer = errors.New("token engine: reentrant transfer")
)

type engineState interface {
	TokenBalanceGet(class uint64, addr [20]byte) (*big.Int, error)
	TokenBalancePut(class uint64, addr [20]byte, amount *big.Int) error
	TokenApprovalGet(holder [20]byte, operator [20]byte) (bool, error)
	TokenApprovalPut(holder [20]byte, operator [20]byte, enabled bool) error
	TokenProducerGet(class uint64) ([20]byte, bool, error)
	TokenProducerPut(class uint64, producerAddr [20]byte) error
}

// Engine is the multi-class balance ledger: one fungible token class per
// batch. It knows nothing about batches, claims, or reviews; the batch and
// claim engines compose on top of it.
type Engine struct {
	state        engineState
	emitter      events.Emitter
	transferBusy bool
}

// NewEngine constructs a token engine with default dependencies.
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

// BalanceOf returns the balance of the account for the token class. Unknown
// pairs read as zero.
func (e *Engine) BalanceOf(addr [20]byte, class uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	balance, err := e.state.TokenBalanceGet(class, addr)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = big.NewInt(0)
	}
	return balance, nil
}

// Mint credits freshly created units of the class to the recipient. It is a
// privileged entry point: only the batch engine calls it, at batch creation,
// and it is never exposed on the RPC surface.
func (e *Engine) Mint(to [20]byte, class uint64, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := e.BalanceOf(to, class)
	if err != nil {
		return err
	}
	return e.state.TokenBalancePut(class, to, new(big.Int).Add(balance, amount))
}

// BindProducer records the issuing producer of a token class. Set once by the
// batch engine alongside the initial mint.
func (e *Engine) BindProducer(class uint64, producerAddr [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.TokenProducerPut(class, producerAddr)
}

// Producer returns the issuing producer of the token class.
func (e *Engine) Producer(class uint64) ([20]byte, bool, error) {
	var zero [20]byte
	if e == nil || e.state == nil {
		return zero, false, errNilState
	}
	return e.state.TokenProducerGet(class)
}

// Transfer moves units of a class between accounts. The caller must be the
// holder or an operator the holder approved. Debit and credit commit through
// the same journal, so a failure at any point leaves both balances untouched.
func (e *Engine) Transfer(caller, from, to [20]byte, class uint64, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.transferBusy {
		return ErrReentrantTransfer
	}
	e.transferBusy = true
	defer func() { e.transferBusy = false }()

	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if caller != from {
		approved, err := e.state.TokenApprovalGet(from, caller)
		if err != nil {
			return err
		}
		if !approved {
			return ErrNotAuthorized
		}
	}
	fromBalance, err := e.BalanceOf(from, class)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if err := e.state.TokenBalancePut(class, from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	// The credit reads after the debit so a transfer where from == to nets
	// out to a no-op instead of inflating the balance.
	toBalance, err := e.BalanceOf(to, class)
	if err != nil {
		return err
	}
	if err := e.state.TokenBalancePut(class, to, new(big.Int).Add(toBalance, amount)); err != nil {
		return err
	}
	e.emit(TransferEvent(hexAddr(from), hexAddr(to), class, amount.String()))
	return nil
}

// SetApprovalForAll grants or revokes a standing permission for the operator
// to move any of the holder's balances.
func (e *Engine) SetApprovalForAll(holder [20]byte, operator [20]byte, enabled bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if holder == operator {
		return ErrSelfApproval
	}
	if err := e.state.TokenApprovalPut(holder, operator, enabled); err != nil {
		return err
	}
	e.emit(ApprovalForAllEvent(hexAddr(holder), hexAddr(operator), enabled))
	return nil
}

// IsApprovedForAll reports whether the operator may move the holder's balances.
func (e *Engine) IsApprovedForAll(holder [20]byte, operator [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.TokenApprovalGet(holder, operator)
}
