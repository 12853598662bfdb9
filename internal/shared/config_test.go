package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 5050 {
			t.Errorf("expected server port 5050, got %d", config.Server.Port)
		}

		if config.Output.DefaultFormat != "markdown" {
			t.Errorf("expected default format markdown, got %s", config.Output.DefaultFormat)
		}

		if !strings.HasSuffix(config.Output.Dir, filepath.Join("Documents", "Exportify", "Playlists")) {
			t.Errorf("unexpected output dir %s", config.Output.Dir)
		}

		if strings.HasPrefix(config.Output.Dir, "~") {
			t.Errorf("expected ~ to be expanded, got %s", config.Output.Dir)
		}

		if config.API.PageSize != 100 || config.API.MaxPages != 1000 {
			t.Errorf("unexpected api defaults %+v", config.API)
		}

		if config.API.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %s", config.API.Timeout())
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.HasCredentials() {
			t.Error("placeholder credentials should not count as configured")
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Output.Dir != defaultConfig.Output.Dir {
			t.Errorf("created config output dir doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("CreateConfigFile YAML", func(t *testing.T) {
		for _, name := range []string{"config.yaml", "config.yml"} {
			configPath := filepath.Join(t.TempDir(), name)
			if err := CreateConfigFile(configPath); err != nil {
				t.Fatalf("failed to create %s: %v", name, err)
			}

			config, err := LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to load created %s: %v", name, err)
			}

			want := DefaultConfig()
			if config.Output.Dir != want.Output.Dir || config.Server.Port != want.Server.Port || config.API.PageSize != want.API.PageSize {
				t.Errorf("%s does not round-trip the defaults: %+v", name, config)
			}
			if config.Credentials.Spotify.ClientID != want.Credentials.Spotify.ClientID {
				t.Errorf("%s client_id = %q, want %q", name, config.Credentials.Spotify.ClientID, want.Credentials.Spotify.ClientID)
			}
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[output]
dir = "/tmp/exports"
default_format = "csv"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 8080 || config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected server 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if !config.HasCredentials() {
			t.Error("expected credentials to be configured")
		}

		if config.Output.DefaultFormat != "csv" || config.Output.Dir != "/tmp/exports" {
			t.Errorf("unexpected output config %+v", config.Output)
		}

		if config.API.PageSize != 100 {
			t.Errorf("missing keys should keep defaults, got page size %d", config.API.PageSize)
		}
	})

	t.Run("LoadConfig YAML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		testConfig := `credentials:
  spotify:
    client_id: yaml_id
    client_secret: yaml_secret
api:
  page_size: 50
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "yaml_id" {
			t.Errorf("expected yaml_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.API.PageSize != 50 {
			t.Errorf("expected page size 50, got %d", config.API.PageSize)
		}
		if config.Server.Port != 5050 {
			t.Errorf("missing keys should keep defaults, got port %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig Missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Config)
		}{
			{"empty dir", func(c *Config) { c.Output.Dir = "" }},
			{"page size too large", func(c *Config) { c.API.PageSize = 101 }},
			{"page size zero", func(c *Config) { c.API.PageSize = 0 }},
			{"max pages zero", func(c *Config) { c.API.MaxPages = 0 }},
			{"rate limit zero", func(c *Config) { c.API.RateLimit = 0 }},
			{"negative timeout", func(c *Config) { c.API.TimeoutSeconds = -1 }},
			{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvClientID, "env_id")
		t.Setenv(EnvClientSecret, "env_secret")
		t.Setenv(EnvOutputDir, "/srv/exports")
		t.Setenv(EnvFormat, "json")

		config := DefaultConfig()
		if err := ApplyEnv(config, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("missing .env should be ignored, got %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env_id" || config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected env credentials, got %+v", config.Credentials.Spotify)
		}
		if config.Output.Dir != "/srv/exports" || config.Output.DefaultFormat != "json" {
			t.Errorf("expected env output overrides, got %+v", config.Output)
		}
	})

	t.Run("ApplyEnv From File", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		t.Setenv(EnvClientSecret, "")
		os.Unsetenv(EnvClientID)
		os.Unsetenv(EnvClientSecret)

		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("SPOTIFY_CLIENT_ID=file_id\nSPOTIFY_CLIENT_SECRET=file_secret\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}

		config := DefaultConfig()
		if err := ApplyEnv(config, envPath); err != nil {
			t.Fatalf("failed to apply env: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "file_id" {
			t.Errorf("expected file_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if !config.HasCredentials() {
			t.Error("expected credentials from .env")
		}
	})
}
