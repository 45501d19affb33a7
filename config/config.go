// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config represents runtime configuration for the mint gateway service.
type Config struct {
	Port                string
	Env                 string
	DatabaseURL         string
	RPCURL              string
	ContractAddress     common.Address
	AllowlistPath       string
	LedgerTimeout       time.Duration
	UpdateRatePerMinute int
	UpdateBurst         int
}

// FromEnv loads configuration from environment variables required by the
// service.
func FromEnv() (*Config, error) {
	port := getEnvDefault("MINTGATE_PORT", "8080")

	dbURL := os.Getenv("MINTGATE_DB_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("MINTGATE_DB_URL is required")
	}

	rpcURL := os.Getenv("MINTGATE_RPC_URL")
	if rpcURL == "" {
		return nil, fmt.Errorf("MINTGATE_RPC_URL is required")
	}

	contractRaw := strings.TrimSpace(os.Getenv("MINTGATE_CONTRACT_ADDRESS"))
	if contractRaw == "" {
		return nil, fmt.Errorf("MINTGATE_CONTRACT_ADDRESS is required")
	}
	if !common.IsHexAddress(contractRaw) {
		return nil, fmt.Errorf("invalid MINTGATE_CONTRACT_ADDRESS %q", contractRaw)
	}

	allowlistPath := getEnvDefault("MINTGATE_ALLOWLIST", "ops/allowlist.yaml")

	timeoutSeconds := parseIntEnv("MINTGATE_LEDGER_TIMEOUT_SECONDS", 10)
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid MINTGATE_LEDGER_TIMEOUT_SECONDS %d", timeoutSeconds)
	}

	ratePerMinute := parseIntEnv("MINTGATE_UPDATE_RATE_PER_MINUTE", 60)
	if ratePerMinute < 0 {
		ratePerMinute = 0
	}
	burst := parseIntEnv("MINTGATE_UPDATE_BURST", 10)
	if burst <= 0 {
		burst = 1
	}

	return &Config{
		Port:                normalizePort(port),
		Env:                 getEnvDefault("MINTGATE_ENV", "dev"),
		DatabaseURL:         dbURL,
		RPCURL:              rpcURL,
		ContractAddress:     common.HexToAddress(contractRaw),
		AllowlistPath:       allowlistPath,
		LedgerTimeout:       time.Duration(timeoutSeconds) * time.Second,
		UpdateRatePerMinute: ratePerMinute,
		UpdateBurst:         burst,
	}, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func normalizePort(port string) string {
	if port == "" {
		return "8080"
	}
	if _, err := strconv.Atoi(port); err == nil {
		return port
	}
	// Allow values like ":8080".
	if port[0] == ':' {
		return port[1:]
	}
	return port
}

func parseIntEnv(key string, def int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return def
}
