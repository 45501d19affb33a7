// Package proofs answers Merkle whitelist proof queries for the phased
// mint allow lists.
package proofs

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/allowlist"
	"mintgate/merkle"
)

var (
	// ErrUnknownPhase indicates the requested phase has no configured allow list.
	ErrUnknownPhase = errors.New("proofs: unknown phase")
	// ErrInvalidAddress indicates the queried address is not a valid hex address.
	ErrInvalidAddress = errors.New("proofs: invalid address")
)

// Service memoizes one Merkle tree per phase. The allow list is immutable
// for the process lifetime, so the trees are built eagerly at construction
// and shared read-only across requests.
type Service struct {
	trees map[string]*merkle.Tree
}

// NewService builds the per-phase trees from the supplied allow-list store.
func NewService(store *allowlist.Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("proofs: allow-list store required")
	}
	svc := &Service{trees: make(map[string]*merkle.Tree)}
	for _, phase := range store.Phases() {
		addrs, _ := store.Addresses(phase)
		leaves := make([]common.Hash, len(addrs))
		for i, addr := range addrs {
			leaves[i] = merkle.HashAddress(addr)
		}
		tree, err := merkle.NewTree(leaves)
		if err != nil {
			return nil, fmt.Errorf("proofs: build phase %q: %w", phase, err)
		}
		svc.trees[phase] = tree
	}
	return svc, nil
}

// Root returns the Merkle root published for phase.
func (s *Service) Root(phase string) (common.Hash, error) {
	tree, ok := s.trees[phase]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
	}
	return tree.Root(), nil
}

// Phases returns the phases the service holds trees for.
func (s *Service) Phases() []string {
	out := make([]string, 0, len(s.trees))
	for phase := range s.trees {
		out = append(out, phase)
	}
	return out
}

// Proof returns the sibling hashes proving that address is allow-listed for
// phase. Absence from the list is not an error: the proof is nil and
// eligible is false, leaving the rejection to the on-chain whitelist check.
func (s *Service) Proof(phase, address string) (proof []common.Hash, eligible bool, err error) {
	tree, ok := s.trees[phase]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
	}
	if !common.IsHexAddress(address) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	leaf := merkle.HashAddress(common.HexToAddress(address))
	proof, eligible = tree.Proof(leaf)
	return proof, eligible, nil
}
