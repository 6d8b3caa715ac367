package review

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"honeytrace/core/events"
	"honeytrace/core/types"
)

const (
	// MaxRating is the highest allowed rating; the scale is 0..5 inclusive.
	MaxRating = 5
	// DefaultReviewCap is the per-account review limit for one batch.
	DefaultReviewCap = 3
	// MaxFieldLength bounds the metadata reference string.
	MaxFieldLength = 256
	// MaxPageSize clamps a single List call.
	MaxPageSize = 100
)

var (
	errNilState      = errors.New("review engine: state not configured")
	errNilLedger     = errors.New("review engine: token ledger not configured")
	ErrNotHolder     = errors.New("review engine: caller holds no token of this batch")
	ErrInvalidRating = errors.New("review engine: rating must be between 0 and 5")
	ErrReviewLimit   = errors.New("review engine: review limit reached for this batch")
	ErrInvalidField  = errors.New("review engine: invalid review field")
)

type engineState interface {
	ReviewCountGet(batchID uint64) (uint64, error)
	ReviewCountPut(batchID uint64, count uint64) error
	ReviewGet(batchID uint64, index uint64) (*Review, bool, error)
	ReviewPut(batchID uint64, index uint64, entry *Review) error
	ReviewerCountGet(batchID uint64, addr [20]byte) (uint64, error)
	ReviewerCountPut(batchID uint64, addr [20]byte, count uint64) error
}

type holdings interface {
	BalanceOf(addr [20]byte, class uint64) (*big.Int, error)
}

// Engine appends rating entries per batch. Writing is gated to accounts
// holding a positive balance of the batch's token class and capped per
// account; reading pages through insertion order.
type Engine struct {
	state   engineState
	ledger  holdings
	emitter events.Emitter
	cap     uint64
}

// NewEngine constructs a review engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		cap:     DefaultReviewCap,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the token ledger consulted for the holder gate.
func (e *Engine) SetLedger(l holdings) { e.ledger = l }

// SetCap overrides the per-account review limit. Zero restores the default.
func (e *Engine) SetCap(limit uint64) {
	if limit == 0 {
		e.cap = DefaultReviewCap
		return
	}
	e.cap = limit
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

// Add appends a review for the batch on behalf of the caller.
func (e *Engine) Add(caller [20]byte, batchID uint64, rating uint8, metadataRef string) (*Review, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if rating > MaxRating {
		return nil, ErrInvalidRating
	}
	meta := strings.TrimSpace(metadataRef)
	if len(meta) > MaxFieldLength {
		return nil, fmt.Errorf("%w: metadataRef exceeds %d bytes", ErrInvalidField, MaxFieldLength)
	}
	balance, err := e.ledger.BalanceOf(caller, batchID)
	if err != nil {
		return nil, err
	}
	if balance.Sign() <= 0 {
		return nil, ErrNotHolder
	}
	written, err := e.state.ReviewerCountGet(batchID, caller)
	if err != nil {
		return nil, err
	}
	if written >= e.cap {
		return nil, ErrReviewLimit
	}
	total, err := e.state.ReviewCountGet(batchID)
	if err != nil {
		return nil, err
	}
	entry := &Review{
		Reviewer:    caller,
		BatchID:     batchID,
		Rating:      rating,
		MetadataRef: meta,
	}
	if err := e.state.ReviewPut(batchID, total, entry); err != nil {
		return nil, err
	}
	if err := e.state.ReviewCountPut(batchID, total+1); err != nil {
		return nil, err
	}
	if err := e.state.ReviewerCountPut(batchID, caller, written+1); err != nil {
		return nil, err
	}
	e.emit(ReviewAddedEvent(hexAddr(caller), batchID, rating))
	return entry.Clone(), nil
}

// List returns a stable insertion-ordered page of reviews for the batch. A
// zero limit reads as the maximum page size.
func (e *Engine) List(batchID uint64, offset uint64, limit uint64) ([]*Review, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if limit == 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	total, err := e.state.ReviewCountGet(batchID)
	if err != nil {
		return nil, err
	}
	out := make([]*Review, 0, limit)
	for i := offset; i < total && uint64(len(out)) < limit; i++ {
		entry, exists, err := e.state.ReviewGet(batchID, i)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		out = append(out, entry)
	}
	return out, nil
}

// Count returns the number of reviews stored for the batch.
func (e *Engine) Count(batchID uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.ReviewCountGet(batchID)
}

// CountBy returns how many reviews the account has written for the batch.
func (e *Engine) CountBy(batchID uint64, addr [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.ReviewerCountGet(batchID, addr)
}
