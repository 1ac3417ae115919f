package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"astrografia/src/models"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

var (
	knownAdapters     = map[string]bool{"meeus": true, "remote": true, "approx": true}
	knownHouseSystems = map[string]bool{"porphyry": true, "equal": true, "whole_sign": true}
	knownNarrators    = map[string]bool{"template": true, "openai": true, "gemini": true}
)

// envOverrides maps environment variables to the secret they replace.
var envOverrides = []struct {
	name  string
	apply func(c *models.MConfig, v string)
}{
	{"ASTRO_JWT_SECRET", func(c *models.MConfig, v string) { c.Auth.JWTSecret = v }},
	{"ASTRO_DATABASE_URL", func(c *models.MConfig, v string) { c.Storage.DBConnectionString = v }},
	{"ASTRO_EPHEMERIS_PATH", func(c *models.MConfig, v string) { c.Ephemeris.EphemerisPath = v }},
	{"ASTRO_REMOTE_API_KEY", func(c *models.MConfig, v string) { c.Ephemeris.RemoteAPIKey = v }},
	{"OPENAI_API_KEY", func(c *models.MConfig, v string) {
		if c.Narrative.Provider == "openai" {
			c.Narrative.APIKey = v
		}
	}},
	{"GEMINI_API_KEY", func(c *models.MConfig, v string) {
		if c.Narrative.Provider == "gemini" {
			c.Narrative.APIKey = v
		}
	}},
	{"OPENCAGE_API_KEY", func(c *models.MConfig, v string) { c.Geocoding.OpenCageKey = v }},
	{"ASTRO_REDIS_ADDR", func(c *models.MConfig, v string) { c.Cache.RedisAddr = v }},
}

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML or TOML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if isTOML(configPath) {
		if err := toml.Unmarshal(data, &modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from TOML: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Defaults, then secrets from the environment
	config.ApplyDefaults()
	config.ApplyEnv(os.LookupEnv)

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every unset knob with its default value
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 15
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = "astrografia/1.0"
	}
	if len(c.Ephemeris.Adapters) == 0 {
		c.Ephemeris.Adapters = []string{"meeus", "approx"}
	}
	if c.Ephemeris.IncludePluto == nil {
		withPluto := true
		c.Ephemeris.IncludePluto = &withPluto
	}
	if c.Ephemeris.HouseSystem == "" {
		c.Ephemeris.HouseSystem = "porphyry"
	}
	if c.Ephemeris.Language == "" {
		c.Ephemeris.Language = "en"
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 1024
	}
	if c.Cache.RedisTTLSeconds == 0 {
		c.Cache.RedisTTLSeconds = 86400
	}
	if c.Auth.AccessTTLMinutes == 0 {
		c.Auth.AccessTTLMinutes = 60
	}
	if c.Auth.RefreshTTLDays == 0 {
		c.Auth.RefreshTTLDays = 30
	}
	if c.Narrative.Provider == "" {
		c.Narrative.Provider = "template"
	}
	if c.Narrative.Model == "" {
		switch c.Narrative.Provider {
		case "gemini":
			c.Narrative.Model = "gemini-2.0-flash"
		default:
			c.Narrative.Model = "gpt-4o"
		}
	}
	if c.Narrative.MaxTokens == 0 {
		c.Narrative.MaxTokens = 400
	}
	if c.Narrative.Temperature == 0 {
		c.Narrative.Temperature = 0.85
	}
	if c.Narrative.Retries == 0 {
		c.Narrative.Retries = 2
	}
	if c.Geocoding.OpenCageURL == "" {
		c.Geocoding.OpenCageURL = "https://api.opencagedata.com/geocode/v1/json"
	}
	if c.Geocoding.NominatimURL == "" {
		c.Geocoding.NominatimURL = "https://nominatim.openstreetmap.org/search"
	}
	if c.Sky.IntervalSeconds == 0 {
		c.Sky.IntervalSeconds = 60
	}
	if c.Sky.Timezone == "" {
		c.Sky.Timezone = "UTC"
	}
	if c.Sky.HistorySize == 0 {
		c.Sky.HistorySize = 120
	}
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides secrets with environment values when present
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, o := range envOverrides {
		if v, ok := lookup(o.name); ok && v != "" {
			o.apply(c.MConfig, v)
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unknown database type: %q", c.Storage.DBType)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Ephemeris
	for _, a := range c.Ephemeris.Adapters {
		if !knownAdapters[a] {
			return fmt.Errorf("unknown ephemeris adapter: %q", a)
		}
		if a == "remote" && c.Ephemeris.RemoteURL == "" {
			return fmt.Errorf("remote ephemeris adapter requires remote_url")
		}
	}
	if !knownHouseSystems[c.Ephemeris.HouseSystem] {
		return fmt.Errorf("unknown house system: %q", c.Ephemeris.HouseSystem)
	}

	// Cache
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be greater than 0")
	}
	if c.Cache.RedisEnabled && c.Cache.RedisAddr == "" {
		return fmt.Errorf("redis cache enabled without redis_addr")
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret cannot be empty (set auth.jwt_secret or ASTRO_JWT_SECRET)")
	}
	if c.Auth.AccessTTLMinutes <= 0 || c.Auth.RefreshTTLDays <= 0 {
		return fmt.Errorf("token lifetimes must be greater than 0")
	}

	// Narrative
	if !knownNarrators[c.Narrative.Provider] {
		return fmt.Errorf("unknown narrative provider: %q", c.Narrative.Provider)
	}
	if c.Narrative.Provider != "template" && c.Narrative.APIKey == "" {
		return fmt.Errorf("narrative provider %q requires an api key", c.Narrative.Provider)
	}

	// Sky feed
	if c.Sky.Enabled {
		if c.Sky.IntervalSeconds <= 0 {
			return fmt.Errorf("sky interval must be greater than 0")
		}
		if c.Sky.Latitude < -90 || c.Sky.Latitude > 90 {
			return fmt.Errorf("sky latitude out of range: %v", c.Sky.Latitude)
		}
		if c.Sky.Longitude < -180 || c.Sky.Longitude > 180 {
			return fmt.Errorf("sky longitude out of range: %v", c.Sky.Longitude)
		}
		if _, err := time.LoadLocation(c.Sky.Timezone); err != nil {
			return fmt.Errorf("invalid sky timezone %q: %w", c.Sky.Timezone, err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration; the extension picks YAML or TOML
func (c *Config) Save(configPath string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(configPath) {
		data, err = toml.Marshal(c.MConfig)
	} else {
		data, err = yaml.Marshal(c.MConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// AccessTTL returns the access token lifetime
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.Auth.AccessTTLMinutes) * time.Minute
}

// -----------------------------------------------------------------------------

// RefreshTTL returns the refresh token lifetime
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTTLDays) * 24 * time.Hour
}
