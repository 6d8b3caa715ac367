package core

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"honeytrace/core/events"
	"honeytrace/crypto/merkle"
	"honeytrace/native/access"
	"honeytrace/native/batch"
	"honeytrace/native/claim"
	"honeytrace/native/review"
	"honeytrace/storage"
)

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

var (
	owner        = addr(0x01)
	admin        = addr(0x02)
	producerAddr = addr(0x03)
	consumer     = addr(0x04)
)

func newTestNode(t *testing.T, opts ...NodeOption) *Node {
	t.Helper()
	node, err := NewNode(storage.NewMemDB(), owner, opts...)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

// codeSet is a generated commitment with its codes and proofs.
type codeSet struct {
	codes []string
	tree  *merkle.Tree
}

func newCodeSet(t *testing.T, count int) *codeSet {
	t.Helper()
	codes := make([]string, 0, count)
	leaves := make([]common.Hash, 0, count)
	for i := 0; i < count; i++ {
		code := fmt.Sprintf("BEE-1700000000000-%04d", i)
		codes = append(codes, code)
		leaves = append(leaves, merkle.HashCode(code))
	}
	tree, err := merkle.NewTree(leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return &codeSet{codes: codes, tree: tree}
}

func (c *codeSet) proof(t *testing.T, index int) []common.Hash {
	t.Helper()
	proof, err := c.tree.Proof(index)
	if err != nil {
		t.Fatalf("proof %d: %v", index, err)
	}
	return proof
}

// setupBatch walks the full issuance path: admin grant, producer
// registration and authorization, operator approval, batch creation.
func setupBatch(t *testing.T, node *Node, codes *codeSet, supply uint64) *batch.Batch {
	t.Helper()
	if err := node.AddAdmin(owner, admin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if _, err := node.RegisterProducer(producerAddr, "Apiary Nord", "Jura", "FR-0042", ""); err != nil {
		t.Fatalf("register producer: %v", err)
	}
	if err := node.SetProducerAuthorization(admin, producerAddr, true); err != nil {
		t.Fatalf("authorize producer: %v", err)
	}
	if err := node.SetApprovalForAll(producerAddr, ClaimOperator(), true); err != nil {
		t.Fatalf("approve operator: %v", err)
	}
	record, err := node.CreateBatch(producerAddr, "Spring Harvest", "", supply, codes.tree.Root())
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	return record
}

func TestGenesisOwnerSurvivesRestart(t *testing.T) {
	db := storage.NewMemDB()
	node, err := NewNode(db, owner)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	if err := node.TransferOwnership(owner, addr(0x09)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// Reopening with the original owner argument must not roll the
	// transfer back.
	reopened, err := NewNode(db, owner)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Owner()
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if got != addr(0x09) {
		t.Fatalf("restart reverted ownership: %x", got)
	}
}

func TestGenesisRejectsZeroOwner(t *testing.T) {
	if _, err := NewNode(storage.NewMemDB(), [20]byte{}); !errors.Is(err, access.ErrInvalidOwner) {
		t.Fatalf("expected ErrInvalidOwner, got %v", err)
	}
}

func TestFullClaimFlow(t *testing.T) {
	node := newTestNode(t)
	codes := newCodeSet(t, 4)
	record := setupBatch(t, node, codes, 4)

	if record.ID != 1 {
		t.Fatalf("first batch id: %d", record.ID)
	}

	leaf, err := node.Claim(consumer, record.ID, codes.codes[0], codes.proof(t, 0))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if leaf != merkle.HashCode(codes.codes[0]) {
		t.Fatalf("leaf mismatch: %s", leaf.Hex())
	}

	balance, err := node.BalanceOf(consumer, record.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("consumer balance: %s", balance)
	}
	remaining, err := node.BalanceOf(producerAddr, record.ID)
	if err != nil {
		t.Fatalf("producer balance: %v", err)
	}
	if remaining.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("producer balance: %s", remaining)
	}

	if _, err := node.Claim(consumer, record.ID, codes.codes[0], codes.proof(t, 0)); !errors.Is(err, claim.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestClaimWithoutOperatorApprovalFails(t *testing.T) {
	node := newTestNode(t)
	codes := newCodeSet(t, 2)
	if err := node.AddAdmin(owner, admin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if _, err := node.RegisterProducer(producerAddr, "Apiary Nord", "", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := node.SetProducerAuthorization(admin, producerAddr, true); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	record, err := node.CreateBatch(producerAddr, "Spring Harvest", "", 2, codes.tree.Root())
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	// The producer never approved the claim operator, so the transfer leg
	// fails and the whole claim rolls back.
	if _, err := node.Claim(consumer, record.ID, codes.codes[0], codes.proof(t, 0)); err == nil {
		t.Fatalf("expected claim failure without operator approval")
	}
	claimed, err := node.IsCodeClaimed(record.ID, codes.codes[0])
	if err != nil {
		t.Fatalf("claimed lookup: %v", err)
	}
	if claimed {
		t.Fatalf("rolled-back claim left the code marked")
	}
	balance, err := node.BalanceOf(consumer, record.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("rolled-back claim moved tokens: %s", balance)
	}
}

func TestSupplyDrainAcrossTransfers(t *testing.T) {
	node := newTestNode(t)
	codes := newCodeSet(t, 10)
	record := setupBatch(t, node, codes, 10)

	// Producer hands 7 units to a distributor; only 3 stay claimable.
	distributor := addr(0x05)
	if err := node.Transfer(producerAddr, producerAddr, distributor, record.ID, big.NewInt(7)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := node.Claim(addr(byte(0x10+i)), record.ID, codes.codes[i], codes.proof(t, i)); err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
	}
	if _, err := node.Claim(addr(0x20), record.ID, codes.codes[3], codes.proof(t, 3)); !errors.Is(err, claim.ErrNoSupply) {
		t.Fatalf("expected ErrNoSupply, got %v", err)
	}
	// Total units in circulation still equal the minted supply.
	total := big.NewInt(0)
	for _, holder := range [][20]byte{producerAddr, distributor, addr(0x10), addr(0x11), addr(0x12)} {
		balance, err := node.BalanceOf(holder, record.ID)
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		total.Add(total, balance)
	}
	if total.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("supply not conserved: %s", total)
	}
}

func TestSelfTransferConservesSupply(t *testing.T) {
	node := newTestNode(t)
	codes := newCodeSet(t, 5)
	record := setupBatch(t, node, codes, 5)

	if err := node.Transfer(producerAddr, producerAddr, producerAddr, record.ID, big.NewInt(2)); err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	balance, err := node.BalanceOf(producerAddr, record.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("self transfer changed supply: expected 5, got %s", balance)
	}
}

func TestReviewFlow(t *testing.T) {
	node := newTestNode(t)
	codes := newCodeSet(t, 4)
	record := setupBatch(t, node, codes, 4)

	if _, err := node.AddReview(consumer, record.ID, 5, ""); !errors.Is(err, review.ErrNotHolder) {
		t.Fatalf("expected ErrNotHolder before claiming, got %v", err)
	}
	if _, err := node.Claim(consumer, record.ID, codes.codes[0], codes.proof(t, 0)); err != nil {
		t.Fatalf("claim: %v", err)
	}
	entry, err := node.AddReview(consumer, record.ID, 5, "ipfs://review")
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	if entry.Reviewer != consumer || entry.Rating != 5 {
		t.Fatalf("entry mismatch: %+v", entry)
	}
	count, err := node.GetReviewCount(record.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 review, got %d", count)
	}
	list, err := node.GetReviews(record.ID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].MetadataRef != "ipfs://review" {
		t.Fatalf("list mismatch: %+v", list)
	}
	byConsumer, err := node.GetReviewCountBy(record.ID, consumer)
	if err != nil {
		t.Fatalf("count by: %v", err)
	}
	if byConsumer != 1 {
		t.Fatalf("expected 1 by consumer, got %d", byConsumer)
	}
}

func TestFailedOperationEmitsNoEvents(t *testing.T) {
	node := newTestNode(t)
	recorder := &events.Recorder{}
	node.SetEmitter(recorder)

	if err := node.AddAdmin(addr(0x08), admin); !errors.Is(err, access.ErrOwnerOnly) {
		t.Fatalf("expected ErrOwnerOnly, got %v", err)
	}
	if len(recorder.Events) != 0 {
		t.Fatalf("failed operation forwarded %d events", len(recorder.Events))
	}

	if err := node.AddAdmin(owner, admin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if len(recorder.Events) != 1 || recorder.Events[0].EventType() != access.EventTypeAdminAdded {
		t.Fatalf("expected one admin.added event, got %+v", recorder.Events)
	}
}

func TestBatchIDsAreSequentialAcrossProducers(t *testing.T) {
	node := newTestNode(t)
	codes := newCodeSet(t, 2)
	setupBatch(t, node, codes, 2)

	other := addr(0x06)
	if _, err := node.RegisterProducer(other, "Apiary Sud", "", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := node.SetProducerAuthorization(admin, other, true); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	record, err := node.CreateBatch(other, "Summer Harvest", "", 2, codes.tree.Root())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.ID != 2 {
		t.Fatalf("expected id 2, got %d", record.ID)
	}
}

func TestNodeOptionsPropagate(t *testing.T) {
	node := newTestNode(t, WithMaxBatchSize(3), WithReviewCap(1))
	codes := newCodeSet(t, 4)
	if err := node.AddAdmin(owner, admin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if _, err := node.RegisterProducer(producerAddr, "Apiary Nord", "", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := node.SetProducerAuthorization(admin, producerAddr, true); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if err := node.SetApprovalForAll(producerAddr, ClaimOperator(), true); err != nil {
		t.Fatalf("approve operator: %v", err)
	}
	if _, err := node.CreateBatch(producerAddr, "Spring Harvest", "", 4, codes.tree.Root()); !errors.Is(err, batch.ErrSupplyTooLarge) {
		t.Fatalf("expected ErrSupplyTooLarge at custom limit, got %v", err)
	}
	record, err := node.CreateBatch(producerAddr, "Spring Harvest", "", 3, codes.tree.Root())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := node.Claim(consumer, record.ID, codes.codes[0], codes.proof(t, 0)); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := node.AddReview(consumer, record.ID, 5, ""); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := node.AddReview(consumer, record.ID, 4, ""); !errors.Is(err, review.ErrReviewLimit) {
		t.Fatalf("expected ErrReviewLimit at custom cap, got %v", err)
	}
}
