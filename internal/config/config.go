package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// Config holds everything the server host needs: HTTP settings, token
// construction parameters, the store backend, and optional sink targets.
type Config struct {
	ListenAddr string
	RateLimit  float64 // requests per second, 0 disables limiting

	TokenName     string
	TokenSymbol   string
	TokenDecimals uint8
	InitialSupply uint64
	InitialHolder models.Address

	StoreBackend string // "memory" or "bolt"
	BoltPath     string

	KafkaBrokers []string // empty disables the Kafka sink
	KafkaTopic   string

	PostgresDSN string // empty disables the Postgres sink
}

// Load reads an optional .env file, then the environment. Missing variables
// fall back to defaults; only malformed values and a missing initial holder
// are errors.
func Load() (Config, error) {
	// Values already present in the environment win over the file.
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:   getEnv("LEDGER_LISTEN_ADDR", ":8080"),
		TokenName:    getEnv("LEDGER_TOKEN_NAME", "Test Token"),
		TokenSymbol:  getEnv("LEDGER_TOKEN_SYMBOL", "TEST"),
		StoreBackend: getEnv("LEDGER_STORE", "memory"),
		BoltPath:     getEnv("LEDGER_BOLT_PATH", "ledger.db"),
		KafkaTopic:   getEnv("LEDGER_KAFKA_TOPIC", "token_notifications"),
		PostgresDSN:  os.Getenv("LEDGER_POSTGRES_DSN"),
	}

	if brokers := os.Getenv("LEDGER_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	rateLimit, err := strconv.ParseFloat(getEnv("LEDGER_RATE_LIMIT", "0"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parsing LEDGER_RATE_LIMIT: %w", err)
	}
	cfg.RateLimit = rateLimit

	decimals, err := strconv.ParseUint(getEnv("LEDGER_TOKEN_DECIMALS", "18"), 10, 8)
	if err != nil {
		return Config{}, fmt.Errorf("parsing LEDGER_TOKEN_DECIMALS: %w", err)
	}
	cfg.TokenDecimals = uint8(decimals)

	supply, err := strconv.ParseUint(getEnv("LEDGER_INITIAL_SUPPLY", "1000000"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parsing LEDGER_INITIAL_SUPPLY: %w", err)
	}
	cfg.InitialSupply = supply

	holder := os.Getenv("LEDGER_INITIAL_HOLDER")
	if holder == "" {
		return Config{}, fmt.Errorf("LEDGER_INITIAL_HOLDER is required")
	}
	cfg.InitialHolder, err = models.ParseAddress(holder)
	if err != nil {
		return Config{}, fmt.Errorf("parsing LEDGER_INITIAL_HOLDER: %w", err)
	}

	switch cfg.StoreBackend {
	case "memory", "bolt":
	default:
		return Config{}, fmt.Errorf("unknown LEDGER_STORE %q (want memory or bolt)", cfg.StoreBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
