package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "SIGN_"

type Config struct {
	Server     ServerConfig     `yaml:"server" envPrefix:"SERVER_"`
	Log        LogConfig        `yaml:"log" envPrefix:"LOG_"`
	Store      StoreConfig      `yaml:"store" envPrefix:"STORE_"`
	Documents  DocumentsConfig  `yaml:"documents" envPrefix:"DOCUMENTS_"`
	Suggestion SuggestionConfig `yaml:"suggestion" envPrefix:"SUGGESTION_"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type StoreConfig struct {
	SeedDemo bool `yaml:"seed_demo" env:"SEED_DEMO"`
}

// Document backends
const (
	BackendDataURL = "dataurl"
	BackendMinio   = "minio"
)

type DocumentsConfig struct {
	Backend     string      `yaml:"backend" env:"BACKEND"`
	MaxUploadMB int64       `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
	Minio       MinioConfig `yaml:"minio" envPrefix:"MINIO_"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey  string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey  string `yaml:"secret_key" env:"SECRET_KEY"`
	Bucket     string `yaml:"bucket" env:"BUCKET"`
	UseSSL     bool   `yaml:"use_ssl" env:"USE_SSL"`
	Region     string `yaml:"region" env:"REGION"`
	ExpireDays int    `yaml:"expire_days" env:"EXPIRE_DAYS"`
}

type SuggestionConfig struct {
	APIURL         string        `yaml:"api_url" env:"API_URL"`
	APIKey         string        `yaml:"api_key" env:"API_KEY"`
	Model          string        `yaml:"model" env:"MODEL"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	DefaultMessage string        `yaml:"default_message" env:"DEFAULT_MESSAGE"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests" env:"REQUESTS"`
	Window   time.Duration `yaml:"window" env:"WINDOW"`
}

// DefaultMessage is used when no suggestion can be generated
const DefaultMessage = "Please review and sign the attached document at your earliest convenience."

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Documents: DocumentsConfig{
			Backend:     BackendDataURL,
			MaxUploadMB: 10,
			Minio: MinioConfig{
				Region:     "us-east-1",
				ExpireDays: 7,
			},
		},
		Suggestion: SuggestionConfig{
			APIURL:         "https://generativelanguage.googleapis.com/v1beta",
			Model:          "gemini-2.5-flash",
			Timeout:        15 * time.Second,
			DefaultMessage: DefaultMessage,
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// .env and SIGN_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Existing environment wins over .env values
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFallbacks restores defaults for values explicitly zeroed in the file
func (c *Config) applyFallbacks() {
	d := Default()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	c.Documents.Backend = strings.ToLower(strings.TrimSpace(c.Documents.Backend))
	if c.Documents.Backend == "" {
		c.Documents.Backend = d.Documents.Backend
	}
	if c.Documents.MaxUploadMB <= 0 {
		c.Documents.MaxUploadMB = d.Documents.MaxUploadMB
	}
	if c.Documents.Minio.Region == "" {
		c.Documents.Minio.Region = d.Documents.Minio.Region
	}
	if c.Documents.Minio.ExpireDays == 0 {
		c.Documents.Minio.ExpireDays = d.Documents.Minio.ExpireDays
	}
	if c.Suggestion.APIURL == "" {
		c.Suggestion.APIURL = d.Suggestion.APIURL
	}
	if c.Suggestion.Model == "" {
		c.Suggestion.Model = d.Suggestion.Model
	}
	if c.Suggestion.Timeout <= 0 {
		c.Suggestion.Timeout = d.Suggestion.Timeout
	}
	if c.Suggestion.DefaultMessage == "" {
		c.Suggestion.DefaultMessage = d.Suggestion.DefaultMessage
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = d.RateLimit.Window
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Documents.Backend {
	case BackendDataURL:
	case BackendMinio:
		m := c.Documents.Minio
		if m.Endpoint == "" || m.Bucket == "" {
			return errors.New("documents.minio endpoint and bucket are required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown documents.backend %q", c.Documents.Backend)
	}
	if c.RateLimit.Requests < 0 {
		return errors.New("rate_limit.requests must not be negative")
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes
func (c *DocumentsConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
