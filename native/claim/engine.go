package claim

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"honeytrace/core/events"
	"honeytrace/core/types"
	"honeytrace/crypto/merkle"
	"honeytrace/native/batch"
)

var (
	errNilState   = errors.New("claim engine: state not configured")
	errNilBatches = errors.New("claim engine: batch manager not configured")
	errNilLedger  = errors.New("claim engine: token ledger not configured")
	errNoOperator = errors.New("claim engine: operator address not configured")

	// ErrNoSupply covers both an unknown batch identifier and an exhausted
	// one, so callers cannot probe which identifiers were ever issued.
	ErrNoSupply       = errors.New("claim engine: no token left to claim")
	ErrAlreadyClaimed = errors.New("claim engine: code already claimed")
	ErrInvalidProof   = errors.New("claim engine: invalid merkle proof")
	ErrReentrantClaim = errors.New("claim engine: reentrant claim")
)

type engineState interface {
	ClaimGet(batchID uint64, codeHash common.Hash) (bool, error)
	ClaimPut(batchID uint64, codeHash common.Hash) error
}

type batchReader interface {
	Lookup(id uint64) (*batch.Batch, bool, error)
}

type ledger interface {
	BalanceOf(addr [20]byte, class uint64) (*big.Int, error)
	Transfer(caller, from, to [20]byte, class uint64, amount *big.Int) error
}

// Engine verifies secret codes against batch commitment roots and redeems
// each valid code exactly once. Token movement happens through the ledger
// under the engine's operator identity, which producers approve when they
// create a batch.
type Engine struct {
	state    engineState
	batches  batchReader
	ledger   ledger
	emitter  events.Emitter
	operator [20]byte
	busy     bool
}

// NewEngine constructs a claim engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetBatches configures the batch manager read by claims.
func (e *Engine) SetBatches(batches batchReader) { e.batches = batches }

// SetLedger configures the token ledger used to move claimed units.
func (e *Engine) SetLedger(l ledger) { e.ledger = l }

// SetOperator configures the identity under which the engine moves producer
// balances. Producers grant approval-for-all to this address.
func (e *Engine) SetOperator(addr [20]byte) { e.operator = addr }

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

// codeHash derives the redemption key from a leaf. Hashing the leaf once more
// keeps the stored key distinct from the tree leaf itself.
func codeHash(leaf common.Hash) common.Hash {
	return ethcrypto.Keccak256Hash(leaf[:])
}

// Claim redeems one unit of the batch's token class against a secret code.
// The redemption record commits before the balance transfer, closing the
// double-claim window a re-entrant transfer could otherwise open.
func (e *Engine) Claim(caller [20]byte, batchID uint64, secretCode string, proof []common.Hash) (common.Hash, error) {
	var zero common.Hash
	if e == nil || e.state == nil {
		return zero, errNilState
	}
	if e.batches == nil {
		return zero, errNilBatches
	}
	if e.ledger == nil {
		return zero, errNilLedger
	}
	if isZeroAddress(e.operator) {
		return zero, errNoOperator
	}
	if e.busy {
		return zero, ErrReentrantClaim
	}
	e.busy = true
	defer func() { e.busy = false }()

	record, exists, err := e.batches.Lookup(batchID)
	if err != nil {
		return zero, err
	}
	if !exists {
		return zero, ErrNoSupply
	}
	leaf := merkle.HashCode(secretCode)
	key := codeHash(leaf)
	claimed, err := e.state.ClaimGet(batchID, key)
	if err != nil {
		return zero, err
	}
	if claimed {
		return zero, ErrAlreadyClaimed
	}
	if !merkle.VerifyProof(leaf, proof, record.CommitmentRoot) {
		return zero, ErrInvalidProof
	}
	remaining, err := e.ledger.BalanceOf(record.Producer, batchID)
	if err != nil {
		return zero, err
	}
	if remaining.Sign() == 0 {
		return zero, ErrNoSupply
	}
	if err := e.state.ClaimPut(batchID, key); err != nil {
		return zero, err
	}
	if err := e.ledger.Transfer(e.operator, record.Producer, caller, batchID, big.NewInt(1)); err != nil {
		return zero, err
	}
	e.emit(ClaimedEvent(hexAddr(caller), batchID, leaf.Hex()))
	return leaf, nil
}

// IsCodeClaimed reports whether the code was already redeemed for the batch.
// Unknown batches read as unclaimed, mirroring the merged claim failure mode.
func (e *Engine) IsCodeClaimed(batchID uint64, secretCode string) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.ClaimGet(batchID, codeHash(merkle.HashCode(secretCode)))
}
