package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds folio's client and server settings.
type Config struct {
	APIURL          string        `env:"FOLIO_API_URL"`
	DataDir         string        `env:"FOLIO_DATA_DIR"`
	PageSize        int           `env:"FOLIO_PAGE_SIZE"`
	RequestTimeout  time.Duration `env:"FOLIO_REQUEST_TIMEOUT"`
	OfflineFallback bool          `env:"FOLIO_OFFLINE_FALLBACK"`
	RevalidateEvery time.Duration `env:"FOLIO_REVALIDATE_EVERY"`
	LogLevel        string        `env:"FOLIO_LOG_LEVEL"`
	LogFile         string        `env:"FOLIO_LOG_FILE"`
	LogFormat       string        `env:"FOLIO_LOG_FORMAT"`

	Server ServerConfig `envPrefix:"FOLIO_SERVER_"`
	S3     S3Config     `envPrefix:"FOLIO_S3_"`
}

// ServerConfig configures `folio serve`.
type ServerConfig struct {
	Port         string   `env:"PORT"`
	AllowOrigins []string `env:"ALLOW_ORIGINS" envSeparator:","`
	Backend      string   `env:"BACKEND"`
}

// S3Config configures the MinIO media backend.
type S3Config struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"`
	UseSSL    bool   `env:"USE_SSL"`
}

const (
	defaultConfigPath      = "~/.config/folio/config.toml"
	defaultAPIURL          = "http://localhost:5000/api/gallery"
	defaultDataDir         = "~/.local/share/folio"
	defaultPageSize        = 9
	defaultRequestTimeout  = 5 * time.Second
	defaultRevalidateEvery = 30 * time.Second
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultServerPort      = "5000"
	defaultBackend         = "memory"
	defaultBucket          = "gallery"
)

// Backends accepted by the server.
const (
	BackendMemory = "memory"
	BackendMinio  = "minio"
)

type rawConfig struct {
	APIURL          string `toml:"api_url"`
	DataDir         string `toml:"data_dir"`
	PageSize        int    `toml:"page_size"`
	RequestTimeout  string `toml:"request_timeout"`
	OfflineFallback *bool  `toml:"offline_fallback"`
	RevalidateEvery string `toml:"revalidate_every"`
	LogLevel        string `toml:"log_level"`
	LogFile         string `toml:"log_file"`
	LogFormat       string `toml:"log_format"`
	Server          struct {
		Port         string   `toml:"port"`
		AllowOrigins []string `toml:"allow_origins"`
		Backend      string   `toml:"backend"`
	} `toml:"server"`
	S3 struct {
		Endpoint  string `toml:"endpoint"`
		AccessKey string `toml:"access_key"`
		SecretKey string `toml:"secret_key"`
		Bucket    string `toml:"bucket"`
		UseSSL    bool   `toml:"use_ssl"`
	} `toml:"s3"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		DataDir:         defaultDataDir,
		PageSize:        defaultPageSize,
		RequestTimeout:  defaultRequestTimeout,
		OfflineFallback: true,
		RevalidateEvery: defaultRevalidateEvery,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
		Server: ServerConfig{
			Port:         defaultServerPort,
			AllowOrigins: []string{"*"},
			Backend:      defaultBackend,
		},
		S3: S3Config{Bucket: defaultBucket},
	}
}

// Load reads the TOML config at path (the default path when empty), applies
// FOLIO_* environment overrides and fills defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := raw.apply(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (raw rawConfig) apply(cfg *Config) error {
	cfg.APIURL = raw.APIURL
	cfg.DataDir = raw.DataDir
	cfg.PageSize = raw.PageSize
	cfg.LogLevel = raw.LogLevel
	cfg.LogFile = raw.LogFile
	cfg.LogFormat = raw.LogFormat
	if raw.OfflineFallback != nil {
		cfg.OfflineFallback = *raw.OfflineFallback
	}
	if d, err := parseDuration("request_timeout", raw.RequestTimeout); err != nil {
		return err
	} else if d > 0 {
		cfg.RequestTimeout = d
	}
	if d, err := parseDuration("revalidate_every", raw.RevalidateEvery); err != nil {
		return err
	} else if d > 0 {
		cfg.RevalidateEvery = d
	}

	cfg.Server.Port = raw.Server.Port
	cfg.Server.Backend = raw.Server.Backend
	if len(raw.Server.AllowOrigins) > 0 {
		cfg.Server.AllowOrigins = raw.Server.AllowOrigins
	}
	cfg.S3.Endpoint = raw.S3.Endpoint
	cfg.S3.AccessKey = raw.S3.AccessKey
	cfg.S3.SecretKey = raw.S3.SecretKey
	cfg.S3.UseSSL = raw.S3.UseSSL
	if strings.TrimSpace(raw.S3.Bucket) != "" {
		cfg.S3.Bucket = raw.S3.Bucket
	}
	return nil
}

func parseDuration(name, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// normalize trims values and replaces empty ones with defaults.
func (c *Config) normalize() {
	c.APIURL = orDefault(c.APIURL, defaultAPIURL)
	c.DataDir = mustExpand(orDefault(c.DataDir, defaultDataDir))
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.RevalidateEvery <= 0 {
		c.RevalidateEvery = defaultRevalidateEvery
	}
	c.LogLevel = strings.ToLower(orDefault(c.LogLevel, defaultLogLevel))
	c.LogFormat = strings.ToLower(orDefault(c.LogFormat, defaultLogFormat))
	c.LogFile = strings.TrimSpace(c.LogFile)
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "folio.log")
	} else {
		c.LogFile = mustExpand(c.LogFile)
	}

	c.Server.Port = orDefault(c.Server.Port, defaultServerPort)
	c.Server.Backend = strings.ToLower(orDefault(c.Server.Backend, defaultBackend))
	origins := c.Server.AllowOrigins[:0:0]
	for _, o := range c.Server.AllowOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.Server.AllowOrigins = origins

	c.S3.Endpoint = strings.TrimSpace(c.S3.Endpoint)
	c.S3.Bucket = orDefault(c.S3.Bucket, defaultBucket)
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch c.Server.Backend {
	case BackendMemory:
	case BackendMinio:
		if c.S3.Endpoint == "" {
			return fmt.Errorf("s3 endpoint is required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown server backend %q", c.Server.Backend)
	}
	return nil
}

// StorePath returns the directory of the persistent key/value store.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "store")
}

func orDefault(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
