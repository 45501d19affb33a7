package merkle

import (
	"bytes"
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoLeaves is returned when a tree is requested over an empty leaf set.
var ErrNoLeaves = errors.New("merkle: no leaves")

// Tree is a binary Merkle tree over keccak256 hashes using the sorted-pair
// combination rule: every internal node hashes the concatenation of its two
// children ordered smaller-first. Leaves are sorted and de-duplicated before
// construction, so the root is independent of input iteration order and
// proofs verify without left/right position flags. This matches the
// OpenZeppelin MerkleProof convention, so proofs generated here validate in
// the mint contract's whitelist check.
type Tree struct {
	// levels[0] is the sorted leaf row, levels[len-1] the single root.
	levels [][]common.Hash
}

// HashAddress computes the leaf hash for an address: keccak256 of its
// canonical 20-byte form.
func HashAddress(addr common.Address) common.Hash {
	return crypto.Keccak256Hash(addr.Bytes())
}

// NewTree builds a tree over the supplied leaf hashes. An odd node at any
// level is promoted unchanged to the next level.
func NewTree(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}
	row := make([]common.Hash, len(leaves))
	copy(row, leaves)
	sort.Slice(row, func(i, j int) bool {
		return bytes.Compare(row[i][:], row[j][:]) < 0
	})
	row = dedupe(row)

	levels := [][]common.Hash{row}
	for len(row) > 1 {
		next := make([]common.Hash, 0, (len(row)+1)/2)
		for i := 0; i < len(row); i += 2 {
			if i+1 == len(row) {
				next = append(next, row[i])
				continue
			}
			next = append(next, hashPair(row[i], row[i+1]))
		}
		levels = append(levels, next)
		row = next
	}
	return &Tree{levels: levels}, nil
}

// Root returns the tree's root hash.
func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Len reports the number of distinct leaves.
func (t *Tree) Len() int {
	return len(t.levels[0])
}

// Proof returns the ordered sibling hashes proving membership of leaf,
// bottom up. The boolean is false when the leaf is not in the tree.
func (t *Tree) Proof(leaf common.Hash) ([]common.Hash, bool) {
	leaves := t.levels[0]
	idx := sort.Search(len(leaves), func(i int) bool {
		return bytes.Compare(leaves[i][:], leaf[:]) >= 0
	})
	if idx == len(leaves) || leaves[idx] != leaf {
		return nil, false
	}
	proof := make([]common.Hash, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		idx /= 2
	}
	return proof, true
}

// Verify recombines leaf with proof under the sorted-pair rule and compares
// the result against root.
func Verify(root, leaf common.Hash, proof []common.Hash) bool {
	acc := leaf
	for _, sibling := range proof {
		acc = hashPair(acc, sibling)
	}
	return acc == root
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

func dedupe(sorted []common.Hash) []common.Hash {
	out := sorted[:1]
	for _, h := range sorted[1:] {
		if h != out[len(out)-1] {
			out = append(out, h)
		}
	}
	return out
}
