package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Auth modes
const (
	AuthLocal  = "local"
	AuthHosted = "hosted"
)

// Store drivers
const (
	StoreBolt   = "bolt"
	StoreHosted = "hosted"
)

// Completion providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Duration is a time.Duration that decodes from TOML strings like "8s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ServerConfig struct {
	Port         int      `toml:"port"`
	BodyLimit    int      `toml:"body_limit"`     // bytes
	RateLimit    int      `toml:"rate_limit"`     // requests per minute per IP, all routes; 0 is off
	AIRateLimit  int      `toml:"ai_rate_limit"`  // requests per minute per IP, generate/analyze; 0 is off
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

type AuthConfig struct {
	Mode      string   `toml:"mode"`       // local | hosted
	JWTSecret string   `toml:"jwt_secret"` // signs local tokens; verifies hosted tokens when set
	TokenTTL  Duration `toml:"token_ttl"`
	CacheTTL  Duration `toml:"cache_ttl"` // how long a remotely verified token is trusted
}

// HostedConfig points at the hosted auth + database project
type HostedConfig struct {
	URL     string   `toml:"url"`
	AnonKey string   `toml:"anon_key"`
	Timeout Duration `toml:"timeout"`
}

type StoreConfig struct {
	Driver  string `toml:"driver"` // bolt | hosted
	DataDir string `toml:"data_dir"`
}

type CompletionConfig struct {
	Provider string   `toml:"provider"` // openai | gemini
	Model    string   `toml:"model"`
	BaseURL  string   `toml:"base_url"`
	APIKey   string   `toml:"api_key"`
	Timeout  Duration `toml:"timeout"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // json | console
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type EditorConfig struct {
	AutosaveInterval Duration `toml:"autosave_interval"`
}

type SSLConfig struct {
	Enabled    bool   `toml:"enabled"`
	CertFile   string `toml:"cert_file"`    // Path to fullchain.pem
	KeyFile    string `toml:"key_file"`     // Path to privkey.pem
	Domain     string `toml:"domain"`       // Domain name for HSTS
	HSTSMaxAge int    `toml:"hsts_max_age"` // Max age for HSTS in seconds
}

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Auth       AuthConfig       `toml:"auth"`
	Hosted     HostedConfig     `toml:"hosted"`
	Store      StoreConfig      `toml:"store"`
	Completion CompletionConfig `toml:"completion"`
	Log        LogConfig        `toml:"log"`
	Editor     EditorConfig     `toml:"editor"`
	SSL        SSLConfig        `toml:"ssl"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	var config Config

	config.Server.Port = 3000
	config.Server.BodyLimit = 1 << 20
	config.Server.RateLimit = 100
	config.Server.AIRateLimit = 10
	config.Server.ReadTimeout = Duration{30 * time.Second}
	config.Server.WriteTimeout = Duration{90 * time.Second}

	config.Auth.Mode = AuthLocal
	config.Auth.TokenTTL = Duration{time.Hour}
	config.Auth.CacheTTL = Duration{time.Minute}

	config.Hosted.Timeout = Duration{15 * time.Second}

	config.Store.Driver = StoreBolt
	config.Store.DataDir = "./data"

	config.Completion.Provider = ProviderOpenAI
	config.Completion.Timeout = Duration{60 * time.Second}

	config.Log.Level = "info"
	config.Log.Format = "console"
	config.Log.MaxSizeMB = 50
	config.Log.MaxBackups = 3
	config.Log.MaxAgeDays = 28

	config.Editor.AutosaveInterval = Duration{8 * time.Second}

	config.SSL.HSTSMaxAge = 31536000 // 1 year

	return &config
}

// LoadConfig reads filepath over the defaults and applies environment overrides.
// A missing file is not an error.
func LoadConfig(filepath string) (*Config, error) {
	config := Default()

	if filepath != "" {
		if _, err := toml.DecodeFile(filepath, config); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", filepath, err)
		}
	}

	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("AUTH_MODE"); v != "" {
		c.Auth.Mode = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Store.DataDir = v
	}
	if v := os.Getenv("HOSTED_URL"); v != "" {
		c.Hosted.URL = v
	}
	if v := os.Getenv("HOSTED_ANON_KEY"); v != "" {
		c.Hosted.AnonKey = v
	}
	if v := os.Getenv("COMPLETION_PROVIDER"); v != "" {
		c.Completion.Provider = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	// Provider keys only apply to their own provider
	switch c.Completion.Provider {
	case ProviderOpenAI:
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			c.Completion.APIKey = v
		}
	case ProviderGemini:
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			c.Completion.APIKey = v
		}
	}
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthLocal:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth: jwt_secret is required in local mode")
		}
		if c.Store.Driver != StoreBolt {
			return fmt.Errorf("auth: local mode requires the bolt store")
		}
	case AuthHosted:
		if c.Hosted.URL == "" || c.Hosted.AnonKey == "" {
			return fmt.Errorf("auth: hosted mode requires hosted.url and hosted.anon_key")
		}
	default:
		return fmt.Errorf("auth: unknown mode %q", c.Auth.Mode)
	}

	switch c.Store.Driver {
	case StoreBolt:
		if c.Store.DataDir == "" {
			return fmt.Errorf("store: data_dir is required for bolt")
		}
	case StoreHosted:
		if c.Auth.Mode != AuthHosted {
			return fmt.Errorf("store: hosted driver requires hosted auth")
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}

	switch c.Completion.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("completion: unknown provider %q", c.Completion.Provider)
	}

	if c.Auth.TokenTTL.Duration <= 0 {
		return fmt.Errorf("auth: token_ttl must be positive")
	}
	if c.Server.RateLimit < 0 || c.Server.AIRateLimit < 0 {
		return fmt.Errorf("server: rate limits must be 0 (off) or positive")
	}
	if c.Editor.AutosaveInterval.Duration <= 0 {
		return fmt.Errorf("editor: autosave_interval must be positive")
	}

	if c.SSL.Enabled {
		if err := c.ValidateSSL(); err != nil {
			return fmt.Errorf("SSL configuration error: %w", err)
		}
	}
	return nil
}

// ValidateSSL checks if the SSL configuration is valid
func (c *Config) ValidateSSL() error {
	if !c.SSL.Enabled {
		return nil
	}

	if c.SSL.CertFile == "" {
		return fmt.Errorf("SSL certificate file path is required")
	}

	if c.SSL.KeyFile == "" {
		return fmt.Errorf("SSL key file path is required")
	}

	// Try loading the certificates to verify they're valid
	_, err := tls.LoadX509KeyPair(c.SSL.CertFile, c.SSL.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load SSL certificates: %w", err)
	}

	return nil
}

// GetSecurityHeaders returns extra response headers for TLS deployments
func (c *Config) GetSecurityHeaders() map[string]string {
	headers := make(map[string]string)

	if c.SSL.Enabled && c.SSL.Domain != "" {
		headers["Strict-Transport-Security"] = fmt.Sprintf("max-age=%d; includeSubDomains", c.SSL.HSTSMaxAge)
	}

	return headers
}
