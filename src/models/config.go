package models

// MConfig Structure
type MConfig struct {
	Name        string           `yaml:"name" toml:"name"`
	Host        string           `yaml:"host" toml:"host"`
	Port        int              `yaml:"port" toml:"port"`
	LogLevel    string           `yaml:"log_level" toml:"log_level"`
	LogFormat   string           `yaml:"log_format" toml:"log_format"`
	GrpcHost    string           `yaml:"grpc_host" toml:"grpc_host"`
	GrpcPort    int              `yaml:"grpc_port" toml:"grpc_port"`
	CORSOrigins []string         `yaml:"cors_origins" toml:"cors_origins"`
	Storage     MStorageConfig   `yaml:"storage" toml:"storage"`
	Network     MNetworkConfig   `yaml:"network" toml:"network"`
	Ephemeris   MEphemerisConfig `yaml:"ephemeris" toml:"ephemeris"`
	Cache       MCacheConfig     `yaml:"cache" toml:"cache"`
	Auth        MAuthConfig      `yaml:"auth" toml:"auth"`
	Narrative   MNarrativeConfig `yaml:"narrative" toml:"narrative"`
	Geocoding   MGeocodingConfig `yaml:"geocoding" toml:"geocoding"`
	Sky         MSkyConfig       `yaml:"sky" toml:"sky"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" toml:"db_type"`
	DBPath             string `yaml:"db_path" toml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string" toml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout" toml:"timeout"`
	MaxRetries     int    `yaml:"retries" toml:"retries"`
	UserAgent      string `yaml:"user_agent" toml:"user_agent"`
}

// MEphemerisConfig selects and tunes the position providers.
// Adapters are tried in order: "meeus", "remote", "approx".
type MEphemerisConfig struct {
	Adapters      []string `yaml:"adapters" toml:"adapters"`
	EphemerisPath string   `yaml:"ephemeris_path" toml:"ephemeris_path"`
	IncludePluto  *bool    `yaml:"include_pluto" toml:"include_pluto"`
	HouseSystem   string   `yaml:"house_system" toml:"house_system"`
	RemoteURL     string   `yaml:"remote_url" toml:"remote_url"`
	RemoteAPIKey  string   `yaml:"remote_api_key" toml:"remote_api_key"`
	Language      string   `yaml:"language" toml:"language"`
}

// WithPluto reports whether Pluto belongs to the body list (default true).
func (e MEphemerisConfig) WithPluto() bool {
	return e.IncludePluto == nil || *e.IncludePluto
}

type MCacheConfig struct {
	Size            int    `yaml:"size" toml:"size"`
	RedisEnabled    bool   `yaml:"redis_enabled" toml:"redis_enabled"`
	RedisAddr       string `yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword   string `yaml:"redis_password" toml:"redis_password"`
	RedisDB         int    `yaml:"redis_db" toml:"redis_db"`
	RedisTTLSeconds int    `yaml:"redis_ttl_seconds" toml:"redis_ttl_seconds"`
}

type MAuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret" toml:"jwt_secret"`
	AccessTTLMinutes int    `yaml:"access_ttl_minutes" toml:"access_ttl_minutes"`
	RefreshTTLDays   int    `yaml:"refresh_ttl_days" toml:"refresh_ttl_days"`
}

type MNarrativeConfig struct {
	Provider    string  `yaml:"provider" toml:"provider"`
	Model       string  `yaml:"model" toml:"model"`
	APIKey      string  `yaml:"api_key" toml:"api_key"`
	BaseURL     string  `yaml:"base_url" toml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens" toml:"max_tokens"`
	Temperature float64 `yaml:"temperature" toml:"temperature"`
	Retries     int     `yaml:"retries" toml:"retries"`
}

type MGeocodingConfig struct {
	OpenCageKey  string `yaml:"opencage_key" toml:"opencage_key"`
	OpenCageURL  string `yaml:"opencage_url" toml:"opencage_url"`
	NominatimURL string `yaml:"nominatim_url" toml:"nominatim_url"`
}

// MSkyConfig describes the observatory used by the live sky feed.
type MSkyConfig struct {
	Enabled         bool    `yaml:"enabled" toml:"enabled"`
	IntervalSeconds int     `yaml:"interval_seconds" toml:"interval_seconds"`
	Latitude        float64 `yaml:"latitude" toml:"latitude"`
	Longitude       float64 `yaml:"longitude" toml:"longitude"`
	Timezone        string  `yaml:"timezone" toml:"timezone"`
	HistorySize     int     `yaml:"history_size" toml:"history_size"`
}

// LogSettings exposes the logging knobs to the logger package.
func (c *MConfig) LogSettings() (string, string) {
	if c == nil {
		return "", ""
	}
	return c.LogLevel, c.LogFormat
}
