package ledger

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	ownerAddr    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

// stubCaller answers bound-contract calls with ABI-encoded fixtures.
type stubCaller struct {
	abi       abi.ABI
	available bool
	phase     uint8
	price     *big.Int
	err       error
}

func newStubCaller(t *testing.T) *stubCaller {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	return &stubCaller{abi: parsed, available: true, phase: 1, price: big.NewInt(50000000000000000)}
}

func (s *stubCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (s *stubCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	method, err := s.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "ownerOf":
		return method.Outputs.Pack(ownerAddr)
	case "availableTokens":
		return method.Outputs.Pack(s.available)
	case "currentPhase":
		return method.Outputs.Pack(s.phase)
	case "price":
		return method.Outputs.Pack(s.price)
	}
	return nil, errors.New("unexpected method " + method.Name)
}

func newTestClient(t *testing.T, caller *stubCaller) *Client {
	t.Helper()
	client, err := NewClient(caller, contractAddr)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresAddress(t *testing.T) {
	if _, err := NewClient(newStubCaller(t), common.Address{}); err == nil {
		t.Fatalf("expected error for zero contract address")
	}
}

func TestDialRequiresEndpoint(t *testing.T) {
	if _, err := Dial("  ", contractAddr); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}

func TestOwnerOf(t *testing.T) {
	client := newTestClient(t, newStubCaller(t))
	owner, err := client.OwnerOf(context.Background(), 42)
	if err != nil {
		t.Fatalf("ownerOf: %v", err)
	}
	if owner != ownerAddr {
		t.Fatalf("expected %s, got %s", ownerAddr.Hex(), owner.Hex())
	}
}

func TestTokenAvailable(t *testing.T) {
	caller := newStubCaller(t)
	client := newTestClient(t, caller)
	avail, err := client.TokenAvailable(context.Background(), 7)
	if err != nil {
		t.Fatalf("availableTokens: %v", err)
	}
	if !avail {
		t.Fatalf("expected available")
	}
	caller.available = false
	avail, err = client.TokenAvailable(context.Background(), 7)
	if err != nil {
		t.Fatalf("availableTokens: %v", err)
	}
	if avail {
		t.Fatalf("expected unavailable")
	}
}

func TestPhaseAndPrice(t *testing.T) {
	client := newTestClient(t, newStubCaller(t))
	phase, err := client.CurrentPhase(context.Background())
	if err != nil {
		t.Fatalf("currentPhase: %v", err)
	}
	if phase != 1 {
		t.Fatalf("expected phase 1, got %d", phase)
	}
	price, err := client.Price(context.Background())
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if price.String() != "50000000000000000" {
		t.Fatalf("unexpected price %s", price)
	}
}

func TestCallErrorsAreWrapped(t *testing.T) {
	caller := newStubCaller(t)
	caller.err = errors.New("connection refused")
	client := newTestClient(t, caller)
	if _, err := client.OwnerOf(context.Background(), 1); err == nil {
		t.Fatalf("expected wrapped rpc error")
	}
}

func TestTreasuryIsContractAddress(t *testing.T) {
	client := newTestClient(t, newStubCaller(t))
	if client.Treasury() != contractAddr {
		t.Fatalf("treasury should be the contract address")
	}
}
