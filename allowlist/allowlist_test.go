package allowlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

const sampleYAML = `phases:
  "1":
    - "0x1111111111111111111111111111111111111111"
    - "0x2222222222222222222222222222222222222222"
  "2":
    - "0x3333333333333333333333333333333333333333"
`

func writeTempList(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allowlist.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write allowlist: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	store, err := Load(writeTempList(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	phases := store.Phases()
	if len(phases) != 2 || phases[0] != "1" || phases[1] != "2" {
		t.Fatalf("unexpected phases %v", phases)
	}
	addrs, ok := store.Addresses("1")
	if !ok {
		t.Fatalf("phase 1 missing")
	}
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addrs))
	}
	want := common.HexToAddress("0x1111111111111111111111111111111111111111")
	if addrs[0] != want {
		t.Fatalf("expected %s, got %s", want.Hex(), addrs[0].Hex())
	}
}

func TestLoadUnknownPhase(t *testing.T) {
	store, err := Load(writeTempList(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := store.Addresses("9"); ok {
		t.Fatalf("expected unknown phase to be absent")
	}
}

func TestLoadInvalidAddress(t *testing.T) {
	_, err := Load(writeTempList(t, "phases:\n  \"1\":\n    - \"not-an-address\"\n"))
	if err == nil {
		t.Fatalf("expected error for invalid address")
	}
}

func TestLoadEmptyPhaseList(t *testing.T) {
	_, err := Load(writeTempList(t, "phases:\n  \"1\": []\n"))
	if err == nil {
		t.Fatalf("expected error for empty phase list")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAddressesReturnsCopy(t *testing.T) {
	store, err := Load(writeTempList(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	addrs, _ := store.Addresses("2")
	addrs[0] = common.Address{}
	again, _ := store.Addresses("2")
	if again[0] == (common.Address{}) {
		t.Fatalf("store state mutated through returned slice")
	}
}
