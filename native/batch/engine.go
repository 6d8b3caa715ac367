package batch

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

const (
	// DefaultMaxSupply bounds the units minted for a single batch.
	DefaultMaxSupply = 1000
	// MaxFieldLength bounds the label and metadata reference strings.
	MaxFieldLength = 256
)

var (
	errNilState           = errors.New("batch engine: state not configured")
	errNilProducers       = errors.New("batch engine: producer registry not configured")
	errNilLedger          = errors.New("batch engine: token ledger not configured")
	ErrProducerNotAllowed = errors.New("batch engine: caller is not an authorized producer")
	ErrSupplyTooLarge     = errors.New("batch engine: supply exceeds the batch size limit")
	ErrInvalidSupply      = errors.New("batch engine: supply must be positive")
	ErrInvalidField       = errors.New("batch engine: invalid batch field")
	ErrEmptyCommitment    = errors.New("batch engine: commitment root required")
	ErrBatchNotFound      = errors.New("batch engine: batch not found")
)

type engineState interface {
	BatchCounterGet() (uint64, error)
	BatchCounterPut(counter uint64) error
	BatchGet(id uint64) (*Batch, bool, error)
	BatchPut(record *Batch) error
}

type producerChecker interface {
	IsAuthorized(addr [20]byte) (bool, error)
}

type ledger interface {
	Mint(to [20]byte, class uint64, amount *big.Int) error
	BindProducer(class uint64, producerAddr [20]byte) error
}

// Engine creates batch records, assigns their sequential identifiers, and
// mints the initial supply of the batch's token class into the producer's
// ledger balance. It is the only mutator of batch records.
type Engine struct {
	state     engineState
	producers producerChecker
	ledger    ledger
	emitter   events.Emitter
	maxSupply uint64
}

// NewEngine constructs a batch engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		maxSupply: DefaultMaxSupply,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetProducers configures the registry consulted for issuer authorization.
func (e *Engine) SetProducers(producers producerChecker) { e.producers = producers }

// SetLedger configures the token ledger receiving the initial mint.
func (e *Engine) SetLedger(l ledger) { e.ledger = l }

// SetMaxSupply overrides the per-batch supply bound. Zero restores the default.
func (e *Engine) SetMaxSupply(limit uint64) {
	if limit == 0 {
		e.maxSupply = DefaultMaxSupply
		return
	}
	e.maxSupply = limit
}

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

// Create persists a new batch for the calling producer and mints its supply.
// Identifiers are assigned sequentially starting at 1 and never reused; the
// commitment root is immutable from this point on.
func (e *Engine) Create(caller [20]byte, label, metadataRef string, supply uint64, commitmentRoot common.Hash) (*Batch, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.producers == nil {
		return nil, errNilProducers
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	authorized, err := e.producers.IsAuthorized(caller)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, ErrProducerNotAllowed
	}
	if supply == 0 {
		return nil, ErrInvalidSupply
	}
	if supply > e.maxSupply {
		return nil, ErrSupplyTooLarge
	}
	sanitizedLabel, err := sanitizeField("label", label, true)
	if err != nil {
		return nil, err
	}
	sanitizedMeta, err := sanitizeField("metadataRef", metadataRef, false)
	if err != nil {
		return nil, err
	}
	if commitmentRoot == (common.Hash{}) {
		return nil, ErrEmptyCommitment
	}
	counter, err := e.state.BatchCounterGet()
	if err != nil {
		return nil, err
	}
	counter++
	if err := e.state.BatchCounterPut(counter); err != nil {
		return nil, err
	}
	record := &Batch{
		ID:             counter,
		Producer:       caller,
		Label:          sanitizedLabel,
		MetadataRef:    sanitizedMeta,
		CommitmentRoot: commitmentRoot,
		Supply:         supply,
	}
	if err := e.state.BatchPut(record); err != nil {
		return nil, err
	}
	if err := e.ledger.Mint(caller, record.ID, new(big.Int).SetUint64(supply)); err != nil {
		return nil, err
	}
	if err := e.ledger.BindProducer(record.ID, caller); err != nil {
		return nil, err
	}
	e.emit(BatchCreatedEvent(hexAddr(caller), record.ID))
	return record.Clone(), nil
}

// Get returns the batch record for the identifier.
func (e *Engine) Get(id uint64) (*Batch, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, exists, err := e.state.BatchGet(id)
	if err != nil {
		return nil, err
	}
	if !exists || record == nil {
		return nil, ErrBatchNotFound
	}
	return record.Clone(), nil
}

// Lookup returns the batch record without the not-found error mapping. The
// claim engine uses it to keep its merged failure mode.
func (e *Engine) Lookup(id uint64) (*Batch, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	record, exists, err := e.state.BatchGet(id)
	if err != nil {
		return nil, false, err
	}
	if !exists || record == nil {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}
