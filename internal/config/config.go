// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Export   ExportConfig   `mapstructure:"export"`
	Storage  StorageConfig  `mapstructure:"storage"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls the status HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// ScraperConfig governs the fetch orchestration engine.
type ScraperConfig struct {
	Concurrency     int     `mapstructure:"concurrency"`
	ChunkSize       int     `mapstructure:"chunk_size"`
	ChunkPauseMs    int     `mapstructure:"chunk_pause_ms"`
	MaxRetries      int     `mapstructure:"max_retries"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
	BackoffBaseMs   int     `mapstructure:"backoff_base_ms"`
	BackoffMaxMs    int     `mapstructure:"backoff_max_ms"`
	FailurePolicy   string  `mapstructure:"failure_policy"`
	DetailLimit     int     `mapstructure:"detail_limit"`
	UserAgent       string  `mapstructure:"user_agent"`
	PerHostQPS      float64 `mapstructure:"per_host_qps"`
}

// HTTPConfig configures the probe HTTP client. The client timeout caps one
// network exchange; the per-attempt budget in ScraperConfig is enforced
// separately by the fetch worker's context.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// CacheConfig selects and tunes the request cache backend.
type CacheConfig struct {
	Backend    string `mapstructure:"backend"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	RedisAddr  string `mapstructure:"redis_addr"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	MaxParallel    int     `mapstructure:"max_parallel"`
	NavTimeoutSec  int     `mapstructure:"nav_timeout_seconds"`
	DomainQPS      float64 `mapstructure:"domain_qps"`
	MinHTMLBytes   int     `mapstructure:"min_html_bytes"`
}

// ExportConfig sets the output artifact paths.
type ExportConfig struct {
	ExcelPath   string `mapstructure:"excel_path"`
	SummaryPath string `mapstructure:"summary_path"`
}

// StorageConfig selects the blob archive destination.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// DBConfig controls run persistence in Postgres.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

// PubSubConfig holds metadata for run-completed notifications.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("scraper.concurrency", 8)
	v.SetDefault("scraper.chunk_size", 25)
	v.SetDefault("scraper.chunk_pause_ms", 1000)
	v.SetDefault("scraper.max_retries", 3)
	v.SetDefault("scraper.timeout_seconds", 15)
	v.SetDefault("scraper.backoff_base_ms", 250)
	v.SetDefault("scraper.backoff_max_ms", 5000)
	v.SetDefault("scraper.failure_policy", "drop")
	v.SetDefault("scraper.detail_limit", 50)
	v.SetDefault("scraper.user_agent",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("scraper.per_host_qps", 2.0)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl_seconds", 900)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 2)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.domain_qps", 1.0)
	v.SetDefault("headless.min_html_bytes", 2048)
	v.SetDefault("export.excel_path", "movies.xlsx")
	v.SetDefault("export.summary_path", "summary.json")
	v.SetDefault("storage.backend", "none")
	v.SetDefault("storage.prefix", "runs")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.Concurrency <= 0 {
		return fmt.Errorf("scraper.concurrency must be > 0")
	}
	if c.Scraper.ChunkSize <= 0 {
		return fmt.Errorf("scraper.chunk_size must be > 0")
	}
	if c.Scraper.MaxRetries < 0 {
		return fmt.Errorf("scraper.max_retries must be >= 0")
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.timeout_seconds must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	switch c.Scraper.FailurePolicy {
	case "", "drop", "keep":
	default:
		return fmt.Errorf("scraper.failure_policy must be drop or keep, got %q", c.Scraper.FailurePolicy)
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be > 0")
	}
	switch c.Cache.Backend {
	case "", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr must be set for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	switch c.Storage.Backend {
	case "", "none", "memory":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set for the gcs backend")
		}
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir must be set for the local backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.DB.Enabled && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set when the database is enabled")
	}
	if c.PubSub.Enabled && (c.PubSub.ProjectID == "" || c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set when pubsub is enabled")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// RequestTimeout is the per-attempt fetch budget.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// HTTPTimeout caps a single probe HTTP exchange.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ChunkPause is the cooldown between target chunks.
func (c Config) ChunkPause() time.Duration {
	return time.Duration(c.Scraper.ChunkPauseMs) * time.Millisecond
}

// BackoffBase is the initial retry backoff delay.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.Scraper.BackoffBaseMs) * time.Millisecond
}

// BackoffMax caps the retry backoff delay.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.Scraper.BackoffMaxMs) * time.Millisecond
}

// CacheTTL is how long cached pages stay fresh.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// NavTimeout is the headless navigation budget.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}
