// Package ledger reads mint state from the NFT contract. The service never
// submits transactions; minting happens through wallet-signed transactions
// outside this process.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Ledger is the subset of contract reads the service depends on.
type Ledger interface {
	OwnerOf(ctx context.Context, tokenID int64) (common.Address, error)
	TokenAvailable(ctx context.Context, tokenID int64) (bool, error)
	CurrentPhase(ctx context.Context) (uint8, error)
	Price(ctx context.Context) (*big.Int, error)
}

const contractABI = `[
  {"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"availableTokens","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"currentPhase","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"price","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

// Client implements Ledger against a deployed mint contract.
type Client struct {
	contract *bind.BoundContract
	address  common.Address
}

// Dial connects to the RPC endpoint and binds the mint contract.
func Dial(endpoint string, contractAddr common.Address) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, errors.New("ledger: rpc endpoint required")
	}
	eth, err := ethclient.Dial(trimmed)
	if err != nil {
		return nil, fmt.Errorf("ledger: dial %s: %w", trimmed, err)
	}
	return NewClient(eth, contractAddr)
}

// NewClient binds the mint contract on an existing backend. Only the caller
// side is bound; this service never signs or submits transactions.
func NewClient(caller bind.ContractCaller, contractAddr common.Address) (*Client, error) {
	if (contractAddr == common.Address{}) {
		return nil, errors.New("ledger: contract address required")
	}
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("ledger: parse abi: %w", err)
	}
	return &Client{
		contract: bind.NewBoundContract(contractAddr, parsed, caller, nil, nil),
		address:  contractAddr,
	}, nil
}

// Treasury returns the address unminted tokens sit at: the contract itself.
func (c *Client) Treasury() common.Address {
	return c.address
}

// OwnerOf returns the current owner of tokenID.
func (c *Client) OwnerOf(ctx context.Context, tokenID int64) (common.Address, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", new(big.Int).SetInt64(tokenID))
	if err != nil {
		return common.Address{}, fmt.Errorf("ledger: ownerOf(%d): %w", tokenID, err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// TokenAvailable returns the contract's own availability flag for tokenID.
func (c *Client) TokenAvailable(ctx context.Context, tokenID int64) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "availableTokens", new(big.Int).SetInt64(tokenID))
	if err != nil {
		return false, fmt.Errorf("ledger: availableTokens(%d): %w", tokenID, err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// CurrentPhase returns the active mint phase.
func (c *Client) CurrentPhase(ctx context.Context) (uint8, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "currentPhase"); err != nil {
		return 0, fmt.Errorf("ledger: currentPhase: %w", err)
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// Price returns the mint price in wei for the active phase.
func (c *Client) Price(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "price"); err != nil {
		return nil, fmt.Errorf("ledger: price: %w", err)
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}
