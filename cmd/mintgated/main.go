package main

import (
	"log"
	"net/http"

	"golang.org/x/time/rate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mintgate/allowlist"
	"mintgate/config"
	"mintgate/ledger"
	"mintgate/models"
	"mintgate/observability/logging"
	"mintgate/proofs"
	"mintgate/recon"
	"mintgate/server"
	"mintgate/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.Setup("mintgated", cfg.Env)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}
	if err := models.Seed(db); err != nil {
		log.Fatalf("seed error: %v", err)
	}

	lists, err := allowlist.Load(cfg.AllowlistPath)
	if err != nil {
		log.Fatalf("allowlist error: %v", err)
	}
	proofSvc, err := proofs.NewService(lists)
	if err != nil {
		log.Fatalf("proof service error: %v", err)
	}
	for _, phase := range lists.Phases() {
		root, _ := proofSvc.Root(phase)
		logger.Info("merkle root", "phase", phase, "root", root.Hex())
	}

	chain, err := ledger.Dial(cfg.RPCURL, cfg.ContractAddress)
	if err != nil {
		log.Fatalf("ledger client error: %v", err)
	}

	avail := store.New(db)
	reconciler, err := recon.NewReconciler(recon.Config{
		Store:       avail,
		Ledger:      chain,
		Treasury:    chain.Treasury(),
		CallTimeout: cfg.LedgerTimeout,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("reconciler init error: %v", err)
	}

	srv := server.New(server.Config{
		Store:         avail,
		Proofs:        proofSvc,
		Reconciler:    reconciler,
		Ledger:        chain,
		LedgerTimeout: cfg.LedgerTimeout,
		UpdateRate:    rate.Limit(float64(cfg.UpdateRatePerMinute) / 60.0),
		UpdateBurst:   cfg.UpdateBurst,
		Logger:        logger,
	})

	addr := ":" + cfg.Port
	logger.Info("starting mintgated", "addr", addr, "contract", cfg.ContractAddress.Hex())
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
