package merkle

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func codeLeaves(n int) []common.Hash {
	leaves := make([]common.Hash, n)
	for i := range leaves {
		leaves[i] = HashCode(fmt.Sprintf("BEE-test-%03d", i))
	}
	return leaves
}

func TestProofRoundTripAllIndexes(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8, 10, 33} {
		leaves := codeLeaves(n)
		tree, err := NewTree(leaves)
		if err != nil {
			t.Fatalf("size %d: build failed: %v", n, err)
		}
		for i, leaf := range leaves {
			proof, err := tree.Proof(i)
			if err != nil {
				t.Fatalf("size %d: proof %d failed: %v", n, i, err)
			}
			if !VerifyProof(leaf, proof, tree.Root()) {
				t.Fatalf("size %d: valid proof rejected for leaf %d", n, i)
			}
		}
	}
}

func TestSingleLeafRootEqualsLeaf(t *testing.T) {
	leaf := HashCode("BEE-single")
	tree, err := NewTree([]common.Hash{leaf})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if tree.Root() != leaf {
		t.Fatalf("single-leaf root should equal the leaf")
	}
	if !VerifyProof(leaf, nil, tree.Root()) {
		t.Fatalf("empty proof rejected for single-leaf tree")
	}
}

func TestTamperedLeafRejected(t *testing.T) {
	leaves := codeLeaves(8)
	tree, err := NewTree(leaves)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	proof, err := tree.Proof(3)
	if err != nil {
		t.Fatalf("proof failed: %v", err)
	}
	if VerifyProof(HashCode("BEE-forged"), proof, tree.Root()) {
		t.Fatalf("foreign leaf accepted")
	}
	tampered := leaves[3]
	tampered[0] ^= 0xff
	if VerifyProof(tampered, proof, tree.Root()) {
		t.Fatalf("tampered leaf accepted")
	}
}

func TestProofBoundToRoot(t *testing.T) {
	treeA, err := NewTree(codeLeaves(6))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	leavesB := make([]common.Hash, 6)
	for i := range leavesB {
		leavesB[i] = HashCode(fmt.Sprintf("BEE-other-%03d", i))
	}
	treeB, err := NewTree(leavesB)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	proof, err := treeB.Proof(0)
	if err != nil {
		t.Fatalf("proof failed: %v", err)
	}
	if VerifyProof(leavesB[0], proof, treeA.Root()) {
		t.Fatalf("proof accepted against unrelated root")
	}
}

func TestProofIndexOutOfRange(t *testing.T) {
	tree, err := NewTree(codeLeaves(4))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, err := tree.Proof(4); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := tree.Proof(-1); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestEmptyLeafSetRejected(t *testing.T) {
	if _, err := NewTree(nil); err != ErrNoLeaves {
		t.Fatalf("expected ErrNoLeaves, got %v", err)
	}
}
