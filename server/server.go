// Package server exposes the mint availability and whitelist-proof HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"mintgate/ledger"
	"mintgate/models"
	"mintgate/observability/metrics"
	"mintgate/proofs"
	"mintgate/recon"
	"mintgate/store"
)

const defaultLedgerTimeout = 10 * time.Second

// Config captures the dependencies required to construct the server.
type Config struct {
	Store         *store.Availability
	Proofs        *proofs.Service
	Reconciler    *recon.Reconciler
	Ledger        ledger.Ledger
	LedgerTimeout time.Duration
	UpdateRate    rate.Limit
	UpdateBurst   int
	Logger        *slog.Logger
}

// Server holds the request handlers and their dependencies.
type Server struct {
	store         *store.Availability
	proofs        *proofs.Service
	reconciler    *recon.Reconciler
	ledger        ledger.Ledger
	ledgerTimeout time.Duration
	limiter       *rate.Limiter
	logger        *slog.Logger

	router http.Handler
}

// New constructs the configured HTTP router.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.LedgerTimeout
	if timeout <= 0 {
		timeout = defaultLedgerTimeout
	}
	var limiter *rate.Limiter
	if cfg.UpdateRate > 0 {
		burst := cfg.UpdateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.UpdateRate, burst)
	}
	srv := &Server{
		store:         cfg.Store,
		proofs:        cfg.Proofs,
		reconciler:    cfg.Reconciler,
		ledger:        cfg.Ledger,
		ledgerTimeout: timeout,
		limiter:       limiter,
		logger:        logger,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/available", s.handleAvailable)
		api.Get("/amountMinted", s.handleAmountMinted)
		api.Get("/proof", s.handleProof)
		api.Get("/phase", s.handlePhase)
		api.With(s.throttle).Post("/update", s.handleUpdate)
	})
	return r
}

// handleAvailable returns every token ID still available plus the derived
// minted count. The field names are part of the front-end contract.
func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListAvailable(r.Context())
	if err != nil {
		s.logger.Error("availability scan failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load availability")
		return
	}
	metrics.Mint().SetAvailableSupply(len(ids))
	s.writeJSON(w, http.StatusOK, struct {
		TokenIDs     []int `json:"token_ids"`
		AmountMinted int   `json:"amountMinted"`
	}{TokenIDs: ids, AmountMinted: models.TokenUniverse - len(ids)})
}

func (s *Server) handleAmountMinted(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountAvailable(r.Context())
	if err != nil {
		s.logger.Error("availability count failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to count availability")
		return
	}
	metrics.Mint().SetAvailableSupply(count)
	s.writeJSON(w, http.StatusOK, struct {
		AmountMinted int `json:"amountMinted"`
	}{AmountMinted: models.TokenUniverse - count})
}

func (s *Server) handleProof(w http.ResponseWriter, r *http.Request) {
	phase := strings.TrimSpace(r.URL.Query().Get("phase"))
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if phase == "" {
		s.writeError(w, http.StatusBadRequest, "Phase is required")
		return
	}
	if address == "" {
		s.writeError(w, http.StatusBadRequest, "Address is required")
		return
	}
	proof, eligible, err := s.proofs.Proof(phase, address)
	switch {
	case errors.Is(err, proofs.ErrUnknownPhase):
		metrics.Mint().ObserveProof(phase, "unknown_phase")
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown phase %q", phase))
		return
	case errors.Is(err, proofs.ErrInvalidAddress):
		metrics.Mint().ObserveProof(phase, "invalid_address")
		s.writeError(w, http.StatusBadRequest, "invalid address")
		return
	case err != nil:
		s.logger.Error("proof generation failed", "phase", phase, "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to generate proof")
		return
	}
	// An ineligible address gets an empty proof, not an error; the on-chain
	// whitelist check is the authority that rejects it.
	message := "Proof generated"
	outcome := "eligible"
	if !eligible {
		message = "Address is not allow-listed for this phase"
		outcome = "not_eligible"
	}
	metrics.Mint().ObserveProof(phase, outcome)
	encoded := make([]string, len(proof))
	for i, h := range proof {
		encoded[i] = h.Hex()
	}
	s.writeJSON(w, http.StatusOK, struct {
		Message string   `json:"message"`
		Proof   []string `json:"proof"`
	}{Message: message, Proof: encoded})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TokenIDs []string `json:"token_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.TokenIDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "token_ids is required")
		return
	}
	ids := make([]int, 0, len(req.TokenIDs))
	for _, raw := range req.TokenIDs {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || id < 0 || id > models.MaxTokenID {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid token id %q", raw))
			return
		}
		ids = append(ids, id)
	}
	summary, err := s.reconciler.Reconcile(r.Context(), ids)
	if err != nil {
		if errors.Is(err, recon.ErrEmptyBatch) {
			s.writeError(w, http.StatusBadRequest, "token_ids is required")
			return
		}
		s.logger.Error("reconciliation failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to reconcile tokens")
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Message string             `json:"message"`
		Results []recon.ItemResult `json:"results"`
	}{
		Message: fmt.Sprintf("%d of %d tokens marked unavailable", summary.Marked, len(ids)),
		Results: summary.Results,
	})
}

// handlePhase surfaces the contract's phase and price accessors so the
// front-end can render the mint UI without a wallet connection.
func (s *Server) handlePhase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.ledgerTimeout)
	defer cancel()
	phase, err := s.ledger.CurrentPhase(ctx)
	if err != nil {
		s.logger.Error("phase lookup failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read phase")
		return
	}
	price, err := s.ledger.Price(ctx)
	if err != nil {
		s.logger.Error("price lookup failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read price")
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Phase    uint8  `json:"phase"`
		PriceWei string `json:"price_wei"`
	}{Phase: phase, PriceWei: price.String()})
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.writeError(w, http.StatusTooManyRequests, "too many update requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		metrics.Mint().ObserveRequest(r.URL.Path, strconv.Itoa(ww.Status()))
		s.logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
