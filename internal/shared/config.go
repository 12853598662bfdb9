package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override file configuration.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvOutputDir    = "EXPORTIFY_OUTPUT_DIR"
	EnvFormat       = "EXPORTIFY_FORMAT"
)

// MaxPageSize is the largest page the playlist tracks endpoint accepts.
const MaxPageSize = 100

// Config represents the application configuration loaded from a TOML (or YAML) file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials" yaml:"credentials"`
	Output      OutputConfig      `toml:"output" yaml:"output"`
	API         APIConfig         `toml:"api" yaml:"api"`
	Server      ServerConfig      `toml:"server" yaml:"server"`
	Log         LogConfig         `toml:"log" yaml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify" yaml:"spotify"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" yaml:"client_id"`
	ClientSecret string `toml:"client_secret" yaml:"client_secret"`
}

// Map returns the credentials in the map form accepted by services.NewSpotifyService.
func (c SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
	}
}

// OutputConfig controls where and how exports are written.
type OutputConfig struct {
	Dir           string `toml:"dir" yaml:"dir"`
	DefaultFormat string `toml:"default_format" yaml:"default_format"`
}

// APIConfig tunes requests against the remote API.
type APIConfig struct {
	PageSize       int     `toml:"page_size" yaml:"page_size"`
	MaxPages       int     `toml:"max_pages" yaml:"max_pages"`
	RateLimit      float64 `toml:"rate_limit" yaml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the per-request timeout as a [time.Duration].
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServerConfig contains local web page settings.
type ServerConfig struct {
	Host        string `toml:"host" yaml:"host"`
	Port        int    `toml:"port" yaml:"port"`
	OpenBrowser bool   `toml:"open_browser" yaml:"open_browser"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
// Values missing from the file keep the defaults from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch {
	case isYAML(path):
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	}

	config.Output.Dir = ExpandPath(config.Output.Dir)
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.Output.Dir = ExpandPath(config.Output.Dir)
	return &config
}

// CreateConfigFile writes the embedded example config to path.
//
// YAML paths get a YAML rendering of the same values; any other path gets the TOML template as is.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	data := exampleConf
	if isYAML(path) {
		var config Config
		if err := toml.Unmarshal(exampleConf, &config); err != nil {
			return fmt.Errorf("failed to parse embedded default config: %w", err)
		}
		out, err := yaml.Marshal(&config)
		if err != nil {
			return fmt.Errorf("failed to encode config as YAML: %w", err)
		}
		data = out
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// ApplyEnv loads the given .env files (".env" when none are given) and overrides
// credentials and output settings from the process environment.
//
// Missing .env files are not an error.
func ApplyEnv(config *Config, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	if v := os.Getenv(EnvClientID); v != "" {
		config.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		config.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		config.Output.Dir = ExpandPath(v)
	}
	if v := os.Getenv(EnvFormat); v != "" {
		config.Output.DefaultFormat = v
	}
	return nil
}

// Validate checks numeric ranges and required fields.
//
// Credentials are not checked here; their absence surfaces as an authentication failure.
func (c *Config) Validate() error {
	var problems []string

	if c.Output.Dir == "" {
		problems = append(problems, "output.dir must be set")
	}
	if c.API.PageSize < 1 || c.API.PageSize > MaxPageSize {
		problems = append(problems, fmt.Sprintf("api.page_size must be between 1 and %d", MaxPageSize))
	}
	if c.API.MaxPages < 1 {
		problems = append(problems, "api.max_pages must be positive")
	}
	if c.API.RateLimit <= 0 {
		problems = append(problems, "api.rate_limit must be positive")
	}
	if c.API.TimeoutSeconds < 0 {
		problems = append(problems, "api.timeout_seconds must not be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// HasCredentials reports whether both Spotify client credentials are present and not the example placeholders.
func (c *Config) HasCredentials() bool {
	s := c.Credentials.Spotify
	if s.ClientID == "" || s.ClientSecret == "" {
		return false
	}
	return s.ClientID != "your_spotify_client_id" && s.ClientSecret != "your_spotify_client_secret"
}
