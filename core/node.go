package core

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"honeytrace/core/events"
	"honeytrace/core/state"
	"honeytrace/native/access"
	"honeytrace/native/batch"
	"honeytrace/native/claim"
	"honeytrace/native/producer"
	"honeytrace/native/review"
	"honeytrace/native/token"
	"honeytrace/storage"
)

// claimOperatorSeed derives the well-known operator identity the claim engine
// transfers under. Producers grant approval-for-all to this address when they
// want their batches claimable.
const claimOperatorSeed = "honeytrace/claim-operator"

// Node owns the backing store and serializes every state-mutating operation.
// Each mutator runs against a fresh journal: engine failures drop the journal
// (zero state change), success flushes it and only then forwards the buffered
// events, so subscribers never observe events of an aborted operation.
type Node struct {
	mu      sync.Mutex
	db      storage.Database
	emitter events.Emitter

	maxBatchSize uint64
	reviewCap    uint64
}

// NodeOption customizes node construction.
type NodeOption func(*Node)

// WithMaxBatchSize overrides the per-batch supply bound.
func WithMaxBatchSize(limit uint64) NodeOption {
	return func(n *Node) { n.maxBatchSize = limit }
}

// WithReviewCap overrides the per-account review limit.
func WithReviewCap(limit uint64) NodeOption {
	return func(n *Node) { n.reviewCap = limit }
}

// NewNode initializes a node over the store and records the owner on first
// start. Reopening an existing data directory ignores the owner argument so
// a later ownership transfer is never silently undone by a restart.
func NewNode(db storage.Database, owner [20]byte, opts ...NodeOption) (*Node, error) {
	n := &Node{
		db:      db,
		emitter: events.NoopEmitter{},
	}
	for _, opt := range opts {
		opt(n)
	}
	journal := storage.NewJournal(db)
	eng := n.engines(state.NewManager(journal), events.NoopEmitter{})
	if _, err := eng.access.Owner(); errors.Is(err, access.ErrOwnerNotSet) {
		if err := eng.access.Initialize(owner); err != nil {
			return nil, err
		}
		if err := journal.Flush(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return n, nil
}

// SetEmitter configures where committed events are forwarded.
func (n *Node) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		n.emitter = events.NoopEmitter{}
		return
	}
	n.emitter = emitter
}

// ClaimOperator returns the claim engine's transfer identity.
func ClaimOperator() [20]byte {
	var addr [20]byte
	hash := ethcrypto.Keccak256([]byte(claimOperatorSeed))
	copy(addr[:], hash[12:])
	return addr
}

type engineSet struct {
	access    *access.Engine
	producers *producer.Engine
	tokens    *token.Engine
	batches   *batch.Engine
	claims    *claim.Engine
	reviews   *review.Engine
}

func (n *Node) engines(st *state.Manager, emitter events.Emitter) *engineSet {
	eng := &engineSet{
		access:    access.NewEngine(),
		producers: producer.NewEngine(),
		tokens:    token.NewEngine(),
		batches:   batch.NewEngine(),
		claims:    claim.NewEngine(),
		reviews:   review.NewEngine(),
	}
	eng.access.SetState(st)
	eng.access.SetEmitter(emitter)
	eng.producers.SetState(st)
	eng.producers.SetAccess(eng.access)
	eng.producers.SetEmitter(emitter)
	eng.tokens.SetState(st)
	eng.tokens.SetEmitter(emitter)
	eng.batches.SetState(st)
	eng.batches.SetProducers(eng.producers)
	eng.batches.SetLedger(eng.tokens)
	eng.batches.SetEmitter(emitter)
	if n.maxBatchSize > 0 {
		eng.batches.SetMaxSupply(n.maxBatchSize)
	}
	eng.claims.SetState(st)
	eng.claims.SetBatches(eng.batches)
	eng.claims.SetLedger(eng.tokens)
	eng.claims.SetOperator(ClaimOperator())
	eng.claims.SetEmitter(emitter)
	eng.reviews.SetState(st)
	eng.reviews.SetLedger(eng.tokens)
	eng.reviews.SetEmitter(emitter)
	if n.reviewCap > 0 {
		eng.reviews.SetCap(n.reviewCap)
	}
	return eng
}

// mutate runs fn against a journaled view of state. The journal flushes only
// when fn succeeds; buffered events are forwarded after the flush.
func (n *Node) mutate(fn func(eng *engineSet) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	journal := storage.NewJournal(n.db)
	recorder := &events.Recorder{}
	eng := n.engines(state.NewManager(journal), recorder)
	if err := fn(eng); err != nil {
		journal.Discard()
		return err
	}
	if err := journal.Flush(); err != nil {
		return err
	}
	for _, evt := range recorder.Events {
		n.emitter.Emit(evt)
	}
	return nil
}

// query builds engines over committed state only; mid-operation journal
// writes are never visible here.
func (n *Node) query() *engineSet {
	return n.engines(state.NewManager(n.db), events.NoopEmitter{})
}

// --- Access control ---

func (n *Node) AddAdmin(caller, admin [20]byte) error {
	return n.mutate(func(eng *engineSet) error {
		return eng.access.AddAdmin(caller, admin)
	})
}

func (n *Node) RemoveAdmin(caller, admin [20]byte) error {
	return n.mutate(func(eng *engineSet) error {
		return eng.access.RemoveAdmin(caller, admin)
	})
}

func (n *Node) TransferOwnership(caller, newOwner [20]byte) error {
	return n.mutate(func(eng *engineSet) error {
		return eng.access.TransferOwnership(caller, newOwner)
	})
}

func (n *Node) IsAdmin(addr [20]byte) (bool, error) {
	return n.query().access.IsAdmin(addr)
}

func (n *Node) Owner() ([20]byte, error) {
	return n.query().access.Owner()
}

// --- Producer registry ---

func (n *Node) RegisterProducer(caller [20]byte, name, location, registrationNumber, metadataRef string) (*producer.Producer, error) {
	var record *producer.Producer
	err := n.mutate(func(eng *engineSet) error {
		var innerErr error
		record, innerErr = eng.producers.Register(caller, name, location, registrationNumber, metadataRef)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (n *Node) SetProducerAuthorization(caller, target [20]byte, enabled bool) error {
	return n.mutate(func(eng *engineSet) error {
		return eng.producers.SetAuthorization(caller, target, enabled)
	})
}

func (n *Node) GetProducer(addr [20]byte) (*producer.Producer, error) {
	return n.query().producers.Get(addr)
}

// --- Batches ---

func (n *Node) CreateBatch(caller [20]byte, label, metadataRef string, supply uint64, commitmentRoot common.Hash) (*batch.Batch, error) {
	var record *batch.Batch
	err := n.mutate(func(eng *engineSet) error {
		var innerErr error
		record, innerErr = eng.batches.Create(caller, label, metadataRef, supply, commitmentRoot)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (n *Node) GetBatch(id uint64) (*batch.Batch, error) {
	return n.query().batches.Get(id)
}

// --- Token ledger ---

func (n *Node) BalanceOf(addr [20]byte, class uint64) (*big.Int, error) {
	return n.query().tokens.BalanceOf(addr, class)
}

func (n *Node) Transfer(caller, from, to [20]byte, class uint64, amount *big.Int) error {
	return n.mutate(func(eng *engineSet) error {
		return eng.tokens.Transfer(caller, from, to, class, amount)
	})
}

func (n *Node) SetApprovalForAll(holder, operator [20]byte, enabled bool) error {
	return n.mutate(func(eng *engineSet) error {
		return eng.tokens.SetApprovalForAll(holder, operator, enabled)
	})
}

func (n *Node) IsApprovedForAll(holder, operator [20]byte) (bool, error) {
	return n.query().tokens.IsApprovedForAll(holder, operator)
}

func (n *Node) TokenProducer(class uint64) ([20]byte, bool, error) {
	return n.query().tokens.Producer(class)
}

// --- Claims ---

func (n *Node) Claim(caller [20]byte, batchID uint64, secretCode string, proof []common.Hash) (common.Hash, error) {
	var leaf common.Hash
	err := n.mutate(func(eng *engineSet) error {
		var innerErr error
		leaf, innerErr = eng.claims.Claim(caller, batchID, secretCode, proof)
		return innerErr
	})
	if err != nil {
		return common.Hash{}, err
	}
	return leaf, nil
}

func (n *Node) IsCodeClaimed(batchID uint64, secretCode string) (bool, error) {
	return n.query().claims.IsCodeClaimed(batchID, secretCode)
}

// --- Reviews ---

func (n *Node) AddReview(caller [20]byte, batchID uint64, rating uint8, metadataRef string) (*review.Review, error) {
	var entry *review.Review
	err := n.mutate(func(eng *engineSet) error {
		var innerErr error
		entry, innerErr = eng.reviews.Add(caller, batchID, rating, metadataRef)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (n *Node) GetReviews(batchID uint64, offset, limit uint64) ([]*review.Review, error) {
	return n.query().reviews.List(batchID, offset, limit)
}

func (n *Node) GetReviewCount(batchID uint64) (uint64, error) {
	return n.query().reviews.Count(batchID)
}

func (n *Node) GetReviewCountBy(batchID uint64, addr [20]byte) (uint64, error) {
	return n.query().reviews.CountBy(batchID, addr)
}
