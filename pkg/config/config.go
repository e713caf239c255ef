// Package config loads the relayer's process-wide configuration from the
// environment and its per-chain configuration from YAML files, following
// the layered env+file approach used elsewhere in this lineage's services.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds process-wide settings that apply across all configured
// chains.
type Config struct {
	ListenAddr  string
	MetricsAddr string

	DatabaseURL         string
	DatabaseMaxConns    int
	DatabaseMinConns    int
	DatabaseMaxIdleTime time.Duration
	DatabaseMaxLifetime time.Duration

	// SupportedChains lists the chain names whose YAML file (under
	// ChainConfigDir/<name>.yaml) is loaded at startup.
	SupportedChains []string
	ChainConfigDir  string

	APIOnlyMode      bool
	EnableCleanupCron bool
	CleanQueuedTime   time.Duration
	CleanFinalizedTime time.Duration

	WormholeGuardianRPC string
	WormholeRPCTimeout  time.Duration

	FirestoreEnabled        bool
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	LogLevel string
}

// Load reads process configuration from the environment, applying the same
// defaults-with-explicit-override convention as the rest of this stack.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  getEnv("APP_HOST", "0.0.0.0") + ":" + getEnv("APP_PORT", "8080"),
		MetricsAddr: getEnv("APP_HOST", "0.0.0.0") + ":" + getEnv("METRICS_PORT", "9090"),

		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:    getEnvInt("DATABASE_MAX_CONNS", 25),
		DatabaseMinConns:    getEnvInt("DATABASE_MIN_CONNS", 5),
		DatabaseMaxIdleTime: getEnvDuration("DATABASE_MAX_IDLE_TIME", 5*time.Minute),
		DatabaseMaxLifetime: getEnvDuration("DATABASE_MAX_LIFETIME", time.Hour),

		SupportedChains: splitCSV(getEnv("SUPPORTED_CHAINS", "")),
		ChainConfigDir:  getEnv("CHAIN_CONFIG_DIR", "./config/chains"),

		APIOnlyMode:        getEnvBool("API_ONLY_MODE", false),
		EnableCleanupCron:  getEnvBool("ENABLE_CLEANUP_CRON", true),
		CleanQueuedTime:    getEnvDuration("CLEAN_QUEUED_TIME", 48*time.Hour),
		CleanFinalizedTime: getEnvDuration("CLEAN_FINALIZED_TIME", 720*time.Hour),

		WormholeGuardianRPC: getEnv("WORMHOLE_GUARDIAN_RPC", ""),
		WormholeRPCTimeout:  getEnvDuration("WORMHOLE_RPC_TIMEOUT", 30*time.Second),

		FirestoreEnabled:        getEnvBool("FIRESTORE_ENABLED", false),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Validate enforces the minimum configuration required to start the
// relayer in production.
func (c *Config) Validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required but not set")
	}
	if len(c.SupportedChains) == 0 {
		errs = append(errs, "SUPPORTED_CHAINS is required but not set")
	}
	if !c.APIOnlyMode && c.WormholeGuardianRPC == "" {
		errs = append(errs, "WORMHOLE_GUARDIAN_RPC is required unless API_ONLY_MODE is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Dump renders the effective process configuration as YAML, for startup
// diagnostics. PrivateKey fields live on ChainConfig, not Config, so this
// never risks logging a signer key.
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("config: dump config: %w", err)
	}
	return string(out), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
