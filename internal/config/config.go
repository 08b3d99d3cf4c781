// Package config handles application configuration from environment variables and files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Server ServerConfig
	Store  StoreConfig
	Search SearchConfig
	Sync   SyncConfig
	Lookup LookupConfig
	Auth   AuthConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	// Environment is the deployment environment (development, staging, production)
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string
	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing a response
	WriteTimeout time.Duration
	// IdleTimeout is the maximum keep-alive wait time
	IdleTimeout time.Duration
}

// StoreConfig holds the SQLite store configuration.
type StoreConfig struct {
	// Path is the SQLite database file (default: ~/ReadingKG/readingkg.db)
	Path string
}

// SearchConfig holds book search configuration.
type SearchConfig struct {
	// Limit is the per-source external result cap (default: 5)
	Limit int
	// AutoOnline enables the automatic external fallback when the local
	// catalog has no strong match
	AutoOnline bool
}

// SyncConfig holds offline queue replay configuration.
type SyncConfig struct {
	// MaxRetries is the retry cap before a queued action is discarded (default: 5)
	MaxRetries int
	// Interval is the periodic drain interval (default: 30s)
	Interval time.Duration
	// Backoff is the retry backoff kind (fixed, exponential)
	Backoff string
	// BackoffBase is the base retry delay (default: 5s)
	BackoffBase time.Duration
}

// LookupConfig holds external book source configuration.
type LookupConfig struct {
	// GoogleBooksAPIKey is optional; unauthenticated requests work with
	// tighter quotas
	GoogleBooksAPIKey string
}

// AuthConfig holds the single-owner authentication configuration.
type AuthConfig struct {
	// OwnerID identifies the single owner all data belongs to
	OwnerID string
	// Token is the bearer token required on API requests; empty disables auth
	Token string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	storePath := flag.String("store-path", "", "Path to the SQLite database file")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	searchLimit := flag.String("search-limit", "", "Per-source external search result cap (default: 5)")
	autoOnline := flag.String("auto-online", "", "Fall back to external search automatically (default: true)")

	syncMaxRetries := flag.String("sync-max-retries", "", "Offline action retry cap (default: 5)")
	syncInterval := flag.String("sync-interval", "", "Offline queue drain interval (default: 30s)")
	syncBackoff := flag.String("sync-backoff", "", "Retry backoff kind (fixed, exponential)")
	syncBackoffBase := flag.String("sync-backoff-base", "", "Base retry delay (default: 5s)")

	ownerID := flag.String("owner-id", "", "Owner identity for all data (default: owner-local)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Store: StoreConfig{
			Path: getConfigValue(*storePath, "STORE_PATH", ""),
		},
		Search: SearchConfig{
			Limit:      getIntConfigValue(*searchLimit, "SEARCH_LIMIT", 5),
			AutoOnline: getBoolConfigValue(*autoOnline, "SEARCH_AUTO_ONLINE", true),
		},
		Sync: SyncConfig{
			MaxRetries: getIntConfigValue(*syncMaxRetries, "SYNC_MAX_RETRIES", 5),
			Backoff:    getConfigValue(*syncBackoff, "SYNC_BACKOFF", "fixed"),
		},
		Lookup: LookupConfig{
			GoogleBooksAPIKey: getConfigValue("", "GOOGLE_BOOKS_API_KEY", ""),
		},
		Auth: AuthConfig{
			OwnerID: getConfigValue(*ownerID, "OWNER_ID", "owner-local"),
			Token:   getConfigValue("", "API_TOKEN", ""),
		},
	}

	// Parse durations.
	var err error
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	cfg.Sync.Interval, err = parseDurationValue(*syncInterval, "SYNC_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}
	cfg.Sync.BackoffBase, err = parseDurationValue(*syncBackoffBase, "SYNC_BACKOFF_BASE", "5s")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandStorePath(); err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.Path == "" {
		return errors.New("store path cannot be empty after expansion")
	}

	if c.Search.Limit < 1 {
		return fmt.Errorf("invalid search limit: %d (must be at least 1)", c.Search.Limit)
	}

	if c.Sync.MaxRetries < 1 {
		return fmt.Errorf("invalid sync max retries: %d (must be at least 1)", c.Sync.MaxRetries)
	}
	if c.Sync.Backoff != "fixed" && c.Sync.Backoff != "exponential" {
		return fmt.Errorf("invalid sync backoff: %s (must be fixed or exponential)", c.Sync.Backoff)
	}

	if c.Auth.OwnerID == "" {
		return errors.New("owner ID is required")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStorePath expands ~ and makes the path absolute.
// Defaults to ~/ReadingKG/readingkg.db if not specified.
func (c *Config) expandStorePath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "ReadingKG", "readingkg.db")

	expanded, err := expandPath(c.Store.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Store.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
