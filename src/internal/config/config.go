package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultStoreDriver = "postgres"
const defaultSQLitePath = "ledger.db"
const defaultHTTPAddr = ":8080"
const defaultChannelID = "LedgerApp"
const defaultChannelKey = "LedgerKey001"
const defaultTaxRate = "-0.001"
const defaultTaxJobInterval = 24 * time.Hour
const defaultTaxJobWorkers = 1
const defaultImportDir = "import"

type Config struct {
	StoreDriver    string
	DatabaseDSN    string
	SQLitePath     string
	HTTPAddr       string
	ChannelID      string
	ChannelKeyHash string
	RatesFile      string
	TaxRate        decimal.Decimal
	TaxJobInterval time.Duration
	TaxJobWorkers  int
	ImportDir      string
	Debug          bool
}

// Load reads the optional env file (ENV_FILE, default .env) and then the
// process environment, falling back to defaults for unset keys.
func Load() (Config, error) {
	envFile := envOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %q: %w", envFile, err)
	}

	storeDriver := strings.ToLower(envOrDefault("STORE_DRIVER", defaultStoreDriver))
	switch storeDriver {
	case "postgres", "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be postgres, sqlite or memory, got %q", storeDriver)
	}

	taxRate, err := decimal.NewFromString(envOrDefault("TAX_RATE", defaultTaxRate))
	if err != nil {
		return Config{}, fmt.Errorf("parse TAX_RATE: %w", err)
	}

	interval := defaultTaxJobInterval
	if raw := strings.TrimSpace(os.Getenv("TAX_JOB_INTERVAL")); raw != "" {
		interval, err = time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse TAX_JOB_INTERVAL: %w", err)
		}
		if interval <= 0 {
			return Config{}, fmt.Errorf("TAX_JOB_INTERVAL must be positive, got %s", interval)
		}
	}

	workers := defaultTaxJobWorkers
	if raw := strings.TrimSpace(os.Getenv("TAX_JOB_WORKERS")); raw != "" {
		workers, err = strconv.Atoi(raw)
		if err != nil || workers < 1 {
			return Config{}, fmt.Errorf("TAX_JOB_WORKERS must be a positive integer, got %q", raw)
		}
	}

	keyHash, err := channelKeyHash()
	if err != nil {
		return Config{}, err
	}

	debug, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("DEBUG")))

	return Config{
		StoreDriver:    storeDriver,
		DatabaseDSN:    normalizeConnectionString(envOrDefault("DATABASE_DSN", defaultConnectionString)),
		SQLitePath:     envOrDefault("SQLITE_PATH", defaultSQLitePath),
		HTTPAddr:       envOrDefault("HTTP_ADDR", defaultHTTPAddr),
		ChannelID:      envOrDefault("CHANNEL_ID", defaultChannelID),
		ChannelKeyHash: keyHash,
		RatesFile:      strings.TrimSpace(os.Getenv("RATES_FILE")),
		TaxRate:        taxRate,
		TaxJobInterval: interval,
		TaxJobWorkers:  workers,
		ImportDir:      envOrDefault("IMPORT_DIR", defaultImportDir),
		Debug:          debug,
	}, nil
}

// channelKeyHash prefers a ready bcrypt hash and otherwise hashes the plain
// CHANNEL_KEY (or the default key) once at startup.
func channelKeyHash() (string, error) {
	if hash := strings.TrimSpace(os.Getenv("CHANNEL_KEY_HASH")); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return "", fmt.Errorf("CHANNEL_KEY_HASH is not a bcrypt hash: %w", err)
		}
		return hash, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(envOrDefault("CHANNEL_KEY", defaultChannelKey)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash channel key: %w", err)
	}
	return string(hash), nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func normalizeConnectionString(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
