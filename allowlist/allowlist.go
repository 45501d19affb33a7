// Package allowlist loads the static phase-to-address mint allow lists.
// The lists are read once at startup and never mutated afterwards.
package allowlist

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Store holds the immutable per-phase allow lists.
type Store struct {
	phases map[string][]common.Address
}

type fileFormat struct {
	Phases map[string][]string `yaml:"phases"`
}

// Load reads the YAML allow-list file at path. Every entry must be a valid
// hex address; addresses are normalized to their canonical 20-byte form.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("allowlist: read %s: %w", path, err)
	}
	var parsed fileFormat
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("allowlist: parse %s: %w", path, err)
	}
	if len(parsed.Phases) == 0 {
		return nil, fmt.Errorf("allowlist: %s defines no phases", path)
	}
	return New(parsed.Phases)
}

// New builds a store from a phase-to-addresses mapping.
func New(phases map[string][]string) (*Store, error) {
	store := &Store{phases: make(map[string][]common.Address, len(phases))}
	for phase, entries := range phases {
		phase = strings.TrimSpace(phase)
		if phase == "" {
			return nil, fmt.Errorf("allowlist: empty phase identifier")
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("allowlist: phase %q has no addresses", phase)
		}
		addrs := make([]common.Address, 0, len(entries))
		for _, entry := range entries {
			trimmed := strings.TrimSpace(entry)
			if !common.IsHexAddress(trimmed) {
				return nil, fmt.Errorf("allowlist: phase %q: invalid address %q", phase, entry)
			}
			addrs = append(addrs, common.HexToAddress(trimmed))
		}
		store.phases[phase] = addrs
	}
	return store, nil
}

// Phases returns the configured phase identifiers in sorted order.
func (s *Store) Phases() []string {
	out := make([]string, 0, len(s.phases))
	for phase := range s.phases {
		out = append(out, phase)
	}
	sort.Strings(out)
	return out
}

// Addresses returns the addresses allow-listed for phase. The returned slice
// is a copy; callers may not mutate store state through it.
func (s *Store) Addresses(phase string) ([]common.Address, bool) {
	addrs, ok := s.phases[phase]
	if !ok {
		return nil, false
	}
	return append([]common.Address(nil), addrs...), true
}
