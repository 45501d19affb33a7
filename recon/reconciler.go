// Package recon resolves the off-chain availability record against on-chain
// truth after mint transactions.
package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/ledger"
	"mintgate/models"
	"mintgate/observability/metrics"
	"mintgate/store"
)

// Outcome classifies what reconciliation did for one token ID.
type Outcome string

const (
	// OutcomeMarked: the chain confirmed the mint and the store row flipped.
	OutcomeMarked Outcome = "marked_unavailable"
	// OutcomeAlreadyUnavailable: the chain confirmed the mint but the row
	// had already been flipped by an earlier call.
	OutcomeAlreadyUnavailable Outcome = "already_unavailable"
	// OutcomeStillAvailable: the chain does not yet show a completed mint,
	// so the row is left untouched.
	OutcomeStillAvailable Outcome = "still_available"
	// OutcomeError: a ledger or store call failed; the token is skipped.
	OutcomeError Outcome = "error"
)

// ErrEmptyBatch is returned when Reconcile is called without token IDs.
var ErrEmptyBatch = errors.New("recon: no token ids supplied")

const defaultCallTimeout = 10 * time.Second

// ItemResult reports the outcome for a single token ID.
type ItemResult struct {
	TokenID int     `json:"token_id"`
	Outcome Outcome `json:"outcome"`
	Error   string  `json:"error,omitempty"`
}

// Summary aggregates a reconciliation batch.
type Summary struct {
	Results []ItemResult `json:"results"`
	Marked  int          `json:"marked"`
	Errors  int          `json:"errors"`
}

// Config captures the dependencies required to construct a Reconciler.
type Config struct {
	Store       *store.Availability
	Ledger      ledger.Ledger
	Treasury    common.Address
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Reconciler verifies client-reported mints against the chain and updates
// the availability store. It never trusts the client's claim: a token is
// marked unavailable only if the ledger shows it owned by a non-treasury
// address AND the ledger's own availability flag reads false. Either signal
// alone is treated as a transient inconsistency and left for a later call.
type Reconciler struct {
	store    *store.Availability
	ledger   ledger.Ledger
	treasury common.Address
	timeout  time.Duration
	logger   *slog.Logger
}

// NewReconciler builds a configured reconciler.
func NewReconciler(cfg Config) (*Reconciler, error) {
	if cfg.Store == nil {
		return nil, errors.New("recon: store is required")
	}
	if cfg.Ledger == nil {
		return nil, errors.New("recon: ledger is required")
	}
	if (cfg.Treasury == common.Address{}) {
		return nil, errors.New("recon: treasury address is required")
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:    cfg.Store,
		ledger:   cfg.Ledger,
		treasury: cfg.Treasury,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Reconcile processes each token ID independently. A ledger failure for one
// ID skips that ID and continues with the rest; the batch is never atomic.
func (r *Reconciler) Reconcile(ctx context.Context, tokenIDs []int) (*Summary, error) {
	if len(tokenIDs) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, id := range tokenIDs {
		if id < 0 || id > models.MaxTokenID {
			return nil, fmt.Errorf("recon: token id %d out of range [0,%d]", id, models.MaxTokenID)
		}
	}
	summary := &Summary{Results: make([]ItemResult, 0, len(tokenIDs))}
	for _, id := range tokenIDs {
		res := r.reconcileOne(ctx, id)
		metrics.Mint().ObserveReconcile(string(res.Outcome))
		switch res.Outcome {
		case OutcomeMarked:
			summary.Marked++
		case OutcomeError:
			summary.Errors++
		}
		summary.Results = append(summary.Results, res)
	}
	return summary, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, id int) ItemResult {
	owner, err := r.ownerOf(ctx, id)
	if err != nil {
		r.logger.Warn("ledger owner lookup failed", "token_id", id, "err", err)
		return ItemResult{TokenID: id, Outcome: OutcomeError, Error: err.Error()}
	}
	available, err := r.tokenAvailable(ctx, id)
	if err != nil {
		r.logger.Warn("ledger availability lookup failed", "token_id", id, "err", err)
		return ItemResult{TokenID: id, Outcome: OutcomeError, Error: err.Error()}
	}
	if owner == r.treasury || available {
		return ItemResult{TokenID: id, Outcome: OutcomeStillAvailable}
	}
	marked, err := r.store.MarkUnavailable(ctx, id)
	if err != nil {
		r.logger.Warn("store update failed", "token_id", id, "err", err)
		return ItemResult{TokenID: id, Outcome: OutcomeError, Error: err.Error()}
	}
	if !marked {
		return ItemResult{TokenID: id, Outcome: OutcomeAlreadyUnavailable}
	}
	r.logger.Info("token marked unavailable", "token_id", id, "owner", owner.Hex())
	return ItemResult{TokenID: id, Outcome: OutcomeMarked}
}

func (r *Reconciler) ownerOf(ctx context.Context, id int) (common.Address, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.ledger.OwnerOf(callCtx, int64(id))
}

func (r *Reconciler) tokenAvailable(ctx context.Context, id int) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.ledger.TokenAvailable(callCtx, int64(id))
}
