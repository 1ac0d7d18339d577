// Package config loads service configuration from defaults, an optional YAML
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the variable that points at a YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
var ErrMissingCredentials = errors.New("please set SPOTIFY_ID and SPOTIFY_SECRET environment variables")

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	LastFM    LastFMConfig    `koanf:"lastfm"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	RedirectURI  string        `koanf:"redirect_uri" validate:"required,url"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	CORSOrigins  []string      `koanf:"cors_origins"`
}

// SpotifyConfig holds OAuth client credentials and circuit breaker settings.
type SpotifyConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	BaseURL      string        `koanf:"base_url" validate:"omitempty,url"` // empty uses the public API
	Breaker      BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker around Spotify API calls.
type BreakerConfig struct {
	MaxFailures uint32        `koanf:"max_failures" validate:"gte=1"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	Interval    time.Duration `koanf:"interval"`
}

// LastFMConfig enables the genre fallback. An empty APIKey disables it.
type LastFMConfig struct {
	APIKey string `koanf:"api_key"`
}

// DatabaseConfig enables run history. An empty URL disables it.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// RecommendConfig sets playlist naming and detail lookup fan-out.
type RecommendConfig struct {
	PlaylistName        string `koanf:"playlist_name" validate:"required"`
	PlaylistDescription string `koanf:"playlist_description"`
	DetailConcurrency   int    `koanf:"detail_concurrency" validate:"gte=1,lte=50"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:         "127.0.0.1:8888",
			RedirectURI:  "http://127.0.0.1:8888/callback",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
			CORSOrigins:  []string{"*"},
		},
		Spotify: SpotifyConfig{
			Breaker: BreakerConfig{
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			PlaylistName:        "algorithm or should i say algo-rhytm?",
			PlaylistDescription: "https://github.com/baristaner",
			DetailConcurrency:   5,
		},
	}
}

// envMappings maps environment variables (lowercased) to koanf paths.
// Variables not listed are ignored.
var envMappings = map[string]string{
	"spotify_id":           "spotify.client_id",
	"spotify_secret":       "spotify.client_secret",
	"spotify_base_url":     "spotify.base_url",
	"spotify_breaker_max":  "spotify.breaker.max_failures",
	"spotify_breaker_wait": "spotify.breaker.timeout",
	"lastfm_api_key":       "lastfm.api_key",
	"database_url":         "database.url",
	"log_level":            "logging.level",
	"log_format":           "logging.format",
	"http_addr":            "server.addr",
	"redirect_uri":         "server.redirect_uri",
	"cors_origins":         "server.cors_origins",
	"playlist_name":        "recommend.playlist_name",
	"playlist_description": "recommend.playlist_description",
	"detail_concurrency":   "recommend.detail_concurrency",
	"server_read_timeout":  "server.read_timeout",
	"server_write_timeout": "server.write_timeout",
	"server_idle_timeout":  "server.idle_timeout",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// sliceConfigPaths are split on commas when they arrive as a plain string.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// Load builds the configuration and validates it. Spotify credentials are
// required.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	return cfg, nil
}

func load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	path, err := findConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// findConfigFile returns the file named by CONFIG_PATH, which must exist,
// or the first of DefaultConfigPaths present. "" means none.
func findConfigFile() (string, error) {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s: %w", p, err)
		}
		return p, nil
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("setting %s: %w", path, err)
		}
	}
	return nil
}
