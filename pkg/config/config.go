package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"FinScope/pkg/logger"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		CORS            bool          `yaml:"cors" default:"true"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RateLimit       struct {
			RequestsPerMinute int `yaml:"requests_per_minute" default:"60"`
			Burst             int `yaml:"burst" default:"10"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Providers ProvidersConfig `yaml:"providers"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Cache     struct {
		TTL           time.Duration `yaml:"ttl" default:"60s"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"1000"`
		Redis         struct {
			Enabled      bool   `yaml:"enabled"`
			Host         string `yaml:"host" default:"localhost"`
			Port         int    `yaml:"port" default:"6379"`
			Password     string `yaml:"password"`
			DB           int    `yaml:"db"`
			Prefix       string `yaml:"prefix" default:"finscope:"`
			PoolSize     int    `yaml:"pool_size" default:"10"`
			MinIdleConns int    `yaml:"min_idle_conns" default:"2"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Backend struct {
		// Type selects where finished analyses are stored: none, sqlite or clickhouse.
		Type string `yaml:"type" default:"sqlite"`
	} `yaml:"backend"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		ResultsTopic  string   `yaml:"results_topic" default:"analysis.results"`
		RequestsTopic string   `yaml:"requests_topic" default:"analysis.requests"`
		RequiredAcks  int      `yaml:"required_acks" default:"-1"`
		Compression   string   `yaml:"compression" default:"snappy"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"50ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"finscope-scanner"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			DLQTopic   string        `yaml:"dlq_topic" default:"analysis.requests.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"1048576"`
			MaxWait    time.Duration `yaml:"max_wait" default:"500ms"`
			RetryMax   int           `yaml:"retry_max" default:"2"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finscope"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
		AsyncInsert      bool          `yaml:"async_insert"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	SQLite struct {
		Path string `yaml:"path" default:"data/finscope.db"`
	} `yaml:"sqlite"`
	Scanner struct {
		Enabled   bool     `yaml:"enabled"`
		Schedule  string   `yaml:"schedule" default:"*/15 * * * *"`
		Watchlist []string `yaml:"watchlist"`
	} `yaml:"scanner"`
}

// ProvidersConfig carries the upstream endpoints and credentials. It is copied into
// each provider at construction and never mutated afterwards.
type ProvidersConfig struct {
	Timeout   time.Duration `yaml:"timeout" default:"8s"`
	UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; FinScope/1.0)"`
	Yahoo     struct {
		QuoteURL string `yaml:"quote_url" default:"https://query1.finance.yahoo.com"`
		ChartURL string `yaml:"chart_url" default:"https://query2.finance.yahoo.com"`
	} `yaml:"yahoo"`
	Finnhub struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url" default:"https://finnhub.io/api/v1"`
	} `yaml:"finnhub"`
	AlphaVantage struct {
		APIKey            string `yaml:"api_key"`
		BaseURL           string `yaml:"base_url" default:"https://www.alphavantage.co"`
		RequestsPerMinute int    `yaml:"requests_per_minute" default:"5"`
	} `yaml:"alphavantage"`
	StockTwits struct {
		BaseURL string `yaml:"base_url" default:"https://api.stocktwits.com/api/2"`
	} `yaml:"stocktwits"`
	Breaker struct {
		MaxRequests         uint32        `yaml:"max_requests" default:"1"`
		Interval            time.Duration `yaml:"interval" default:"60s"`
		Timeout             time.Duration `yaml:"timeout" default:"30s"`
		ConsecutiveFailures uint32        `yaml:"consecutive_failures" default:"5"`
	} `yaml:"breaker"`
}

type ReasoningConfig struct {
	Enabled      bool          `yaml:"enabled"`
	URL          string        `yaml:"url" default:"https://api.anthropic.com/v1/messages"`
	APIKey       string        `yaml:"api_key"`
	APIKeyHeader string        `yaml:"api_key_header" default:"x-api-key"`
	APIVersion   string        `yaml:"api_version" default:"2023-06-01"`
	Model        string        `yaml:"model"`
	MaxTokens    int           `yaml:"max_tokens" default:"1500"`
	Temperature  float64       `yaml:"temperature" default:"0.3"`
	Timeout      time.Duration `yaml:"timeout" default:"20s"`
	Attempts     int           `yaml:"attempts" default:"1"`
}

type AnalysisConfig struct {
	Timeout         time.Duration `yaml:"timeout" default:"30s"`
	HistoryBars     int           `yaml:"history_bars" default:"100"`
	NewsLookback    time.Duration `yaml:"news_lookback" default:"168h"`
	IncludeSignals  bool          `yaml:"include_signals" default:"true"`
	SyntheticSeeded bool          `yaml:"synthetic_seeded" default:"true"`
}

// Default returns a configuration populated only from default tags.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML (when path is non-empty), overrides with
// environment variables and validates the result.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if path != "" {
		c, err = Load(path)
	} else {
		c, err = Default()
	}
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := getenv("REASONING_API_KEY"); v != "" {
		c.Reasoning.APIKey = v
		c.Reasoning.Enabled = true
	}
	if v := getenv("REASONING_URL"); v != "" {
		c.Reasoning.URL = v
	}
	if v := getenv("REASONING_MODEL"); v != "" {
		c.Reasoning.Model = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := getenv("WATCHLIST"); v != "" {
		c.Scanner.Watchlist = splitList(v)
		c.Scanner.Enabled = true
	}
	if v := getenv("SCANNER_SCHEDULE"); v != "" {
		c.Scanner.Schedule = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Backend.Type {
	case "none", "sqlite", "clickhouse":
	default:
		return fmt.Errorf("invalid backend.type %q: must be none, sqlite or clickhouse", c.Backend.Type)
	}
	if c.Backend.Type == "sqlite" && c.SQLite.Path == "" {
		return fmt.Errorf("sqlite.path is required for sqlite backend")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis.timeout must be positive")
	}
	if c.Analysis.HistoryBars < 26 {
		return fmt.Errorf("analysis.history_bars must be at least 26")
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("providers.timeout must be positive")
	}
	if c.Reasoning.Enabled && c.Reasoning.APIKey == "" {
		return fmt.Errorf("reasoning.api_key is required when reasoning is enabled")
	}
	if c.Scanner.Enabled && len(c.Scanner.Watchlist) == 0 {
		return fmt.Errorf("scanner.watchlist is required when scanner is enabled")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
