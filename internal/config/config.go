package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kode4food/courier/pkg/api"
)

type (
	// Config holds configuration settings for the courier service
	Config struct {
		// API Server
		APIHost  string `yaml:"api_host"`
		APIPort  int    `yaml:"api_port"`
		LogLevel string `yaml:"log_level"`
		Mode     string `yaml:"mode"`

		// Event Transport
		SocketURL      string `yaml:"socket_url"`
		EventBatchSize int    `yaml:"event_batch_size"`

		// Flow
		ResetGracePeriod time.Duration `yaml:"reset_grace_period"`
		PrefetchTimeout  time.Duration `yaml:"prefetch_timeout"`
		ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`

		// Reference Data
		Cache     CacheConfig     `yaml:"cache"`
		Reference ReferenceConfig `yaml:"reference"`
	}

	// CacheConfig locates the Redis instance caching reference data. An
	// empty Addr disables caching
	CacheConfig struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		TTL      time.Duration `yaml:"ttl"`
	}

	// ReferenceConfig locates per-service reference data. BaseURL may be an
	// http(s) endpoint or a bucket URL (file://, mem://, s3://). An empty
	// BaseURL disables service prefetching
	ReferenceConfig struct {
		BaseURL          string        `yaml:"base_url"`
		RequiredServices []api.Service `yaml:"required_services"`
	}
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

const (
	DefaultAPIPort          = 8080
	DefaultAPIHost          = "0.0.0.0"
	DefaultLogLevel         = "info"
	DefaultMode             = ModeProduction
	DefaultEventBatchSize   = 16
	DefaultResetGracePeriod = 5 * time.Second
	DefaultPrefetchTimeout  = 3 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultCachePrefix      = "courier"
	DefaultCacheTTL         = 15 * time.Minute

	MaxTCPPort          = 65535
	MaxRedisDB          = 15
	MaxEventBatchSize   = 1024
	MaxResetGracePeriod = 10 * time.Minute
	MaxPrefetchTimeout  = time.Minute
	MaxShutdownTimeout  = 5 * time.Minute
	MaxCacheTTL         = 7 * 24 * time.Hour
)

var (
	ErrInvalidAPIPort          = errors.New("invalid API port")
	ErrInvalidMode             = errors.New("invalid mode")
	ErrInvalidLogLevel         = errors.New("invalid log level")
	ErrInvalidEventBatchSize   = errors.New("event batch size must be positive")
	ErrInvalidResetGracePeriod = errors.New(
		"reset grace period must be positive",
	)
	ErrInvalidPrefetchTimeout = errors.New("prefetch timeout must be positive")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidCacheTTL        = errors.New("cache TTL must be positive")
	ErrInvalidService         = errors.New("invalid required service")
	ErrInvalidEnv             = errors.New("invalid environment value")
)

// NewDefaultConfig creates a configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:          DefaultAPIHost,
		APIPort:          DefaultAPIPort,
		LogLevel:         DefaultLogLevel,
		Mode:             DefaultMode,
		EventBatchSize:   DefaultEventBatchSize,
		ResetGracePeriod: DefaultResetGracePeriod,
		PrefetchTimeout:  DefaultPrefetchTimeout,
		ShutdownTimeout:  DefaultShutdownTimeout,
		Cache: CacheConfig{
			Prefix: DefaultCachePrefix,
			TTL:    DefaultCacheTTL,
		},
	}
}

// IsDevelopment reports whether programmer errors should fail loudly
func (c *Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}

// LoadFromFile overlays values from a YAML file onto the configuration
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	loadEnvString("API_HOST", &c.APIHost)
	loadEnvString("LOG_LEVEL", &c.LogLevel)
	loadEnvString("COURIER_MODE", &c.Mode)
	loadEnvString("SOCKET_URL", &c.SocketURL)
	loadEnvString("CACHE_REDIS_ADDR", &c.Cache.Addr)
	loadEnvString("CACHE_REDIS_PASSWORD", &c.Cache.Password)
	loadEnvString("CACHE_REDIS_PREFIX", &c.Cache.Prefix)
	loadEnvString("REFERENCE_URL", &c.Reference.BaseURL)

	if req := os.Getenv("REFERENCE_REQUIRED"); req != "" {
		c.Reference.RequiredServices = parseServices(req)
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"EVENT_BATCH_SIZE", &c.EventBatchSize, 0, MaxEventBatchSize,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"CACHE_REDIS_DB", &c.Cache.DB, -1, MaxRedisDB,
	); err != nil {
		return err
	}

	if err := loadEnvDuration(
		"RESET_GRACE_PERIOD", &c.ResetGracePeriod, 0, MaxResetGracePeriod,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"PREFETCH_TIMEOUT", &c.PrefetchTimeout, 0, MaxPrefetchTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout, 0, MaxShutdownTimeout,
	); err != nil {
		return err
	}
	return loadEnvDuration("CACHE_TTL", &c.Cache.TTL, 0, MaxCacheTTL)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	if c.EventBatchSize <= 0 {
		return ErrInvalidEventBatchSize
	}

	if c.ResetGracePeriod <= 0 {
		return ErrInvalidResetGracePeriod
	}

	if c.PrefetchTimeout <= 0 {
		return ErrInvalidPrefetchTimeout
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if c.Cache.Addr != "" && c.Cache.TTL <= 0 {
		return ErrInvalidCacheTTL
	}

	for _, svc := range c.Reference.RequiredServices {
		if !svc.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidService, svc)
		}
	}
	return nil
}

// IsRequired reports whether a service's reference data must be loaded
// before its first step can render
func (c *Config) IsRequired(svc api.Service) bool {
	for _, s := range c.Reference.RequiredServices {
		if s == svc {
			return true
		}
	}
	return false
}

func parseServices(list string) []api.Service {
	var res []api.Service
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, api.Service(s))
		}
	}
	return res
}

func loadEnvString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("%w: %s=%d out of range [%d, %d]",
			ErrInvalidEnv, key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration reads key from the environment as a Go duration and sets
// *dst if the value is in the range (min, max]
func loadEnvDuration(
	key string, dst *time.Duration, min, max time.Duration,
) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, key, s)
	}
	if v <= min || v > max {
		return fmt.Errorf("%w: %s=%s out of range (%s, %s]",
			ErrInvalidEnv, key, v, min, max)
	}
	*dst = v
	return nil
}
