package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Port: "8080"},
		Store:  StoreConfig{Path: "/tmp/readingkg.db"},
		Search: SearchConfig{Limit: 5, AutoOnline: true},
		Sync:   SyncConfig{MaxRetries: 5, Interval: 30 * time.Second, Backoff: "fixed", BackoffBase: 5 * time.Second},
		Auth:   AuthConfig{OwnerID: "owner-local"},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty environment", func(c *Config) { c.App.Environment = "" }},
		{"unknown environment", func(c *Config) { c.App.Environment = "testing" }},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"zero search limit", func(c *Config) { c.Search.Limit = 0 }},
		{"zero max retries", func(c *Config) { c.Sync.MaxRetries = 0 }},
		{"bad backoff kind", func(c *Config) { c.Sync.Backoff = "jittered" }},
		{"empty owner", func(c *Config) { c.Auth.OwnerID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("READINGKG_TEST_VALUE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "READINGKG_TEST_VALUE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "READINGKG_TEST_VALUE", "default"))
	assert.Equal(t, "default", getConfigValue("", "READINGKG_TEST_UNSET", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, getBoolConfigValue(tt.value, "READINGKG_TEST_UNSET", !tt.want))
		})
	}

	// Empty everywhere falls back to the default.
	assert.True(t, getBoolConfigValue("", "READINGKG_TEST_UNSET", true))
}

func TestGetIntConfigValue(t *testing.T) {
	assert.Equal(t, 7, getIntConfigValue("7", "READINGKG_TEST_UNSET", 5))
	assert.Equal(t, 5, getIntConfigValue("", "READINGKG_TEST_UNSET", 5))
	assert.Equal(t, 5, getIntConfigValue("seven", "READINGKG_TEST_UNSET", 5))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("45s", "READINGKG_TEST_UNSET", "30s")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	d, err = parseDurationValue("", "READINGKG_TEST_UNSET", "30s")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	_, err = parseDurationValue("soon", "READINGKG_TEST_UNSET", "30s")
	assert.Error(t, err)
}

func TestExpandStorePath_Default(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.expandStorePath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "ReadingKG", "readingkg.db"), cfg.Store.Path)
}

func TestExpandStorePath_Tilde(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Path: "~/data/books.db"}}
	require.NoError(t, cfg.expandStorePath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "books.db"), cfg.Store.Path)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n\nREADINGKG_ENVFILE_A=hello\nREADINGKG_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("READINGKG_ENVFILE_A", "")
	t.Setenv("READINGKG_ENVFILE_B", "")
	os.Unsetenv("READINGKG_ENVFILE_A")
	os.Unsetenv("READINGKG_ENVFILE_B")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("READINGKG_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("READINGKG_ENVFILE_B"))
}

func TestLoadEnvFile_DoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("READINGKG_ENVFILE_C=from-file\n"), 0o600))

	t.Setenv("READINGKG_ENVFILE_C", "from-env")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("READINGKG_ENVFILE_C"))
}

func TestLoadEnvFile_BadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("not a pair\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}
