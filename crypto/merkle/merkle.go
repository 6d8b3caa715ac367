// Package merkle implements the sorted-pair keccak256 commitment scheme used
// for batch claim codes. Sibling nodes are ordered by byte value before
// hashing, so proofs carry no left/right position tags. A lone node at the end
// of an odd level is promoted to the parent level unhashed, matching the
// convention of the tooling that producers use to build commitment roots.
package merkle

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrNoLeaves        = errors.New("merkle: at least one leaf required")
	ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")
)

// HashCode maps a secret code onto its tree leaf.
func HashCode(code string) common.Hash {
	return ethcrypto.Keccak256Hash([]byte(code))
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return ethcrypto.Keccak256Hash(a[:], b[:])
}

// Tree is a fully materialized commitment tree. It exists for proof
// generation (CLI, tests); verification never needs it.
type Tree struct {
	levels [][]common.Hash
}

// NewTree builds a tree over the provided leaf hashes, preserving leaf order.
func NewTree(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}
	levels := [][]common.Hash{append([]common.Hash(nil), leaves...)}
	for level := levels[0]; len(level) > 1; {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{levels: levels}, nil
}

// Root returns the commitment root binding the whole leaf set.
func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Len returns the number of leaves committed to.
func (t *Tree) Len() int {
	return len(t.levels[0])
}

// Proof returns the sibling path for the leaf at the given index. A promoted
// odd node contributes no sibling at that level.
func (t *Tree) Proof(index int) ([]common.Hash, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return nil, ErrIndexOutOfRange
	}
	proof := make([]common.Hash, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		index /= 2
	}
	return proof, nil
}

// VerifyProof recomputes the root from a leaf and its sibling path. It is a
// pure function with no mutable state.
func VerifyProof(leaf common.Hash, proof []common.Hash, root common.Hash) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}
	return computed == root
}
