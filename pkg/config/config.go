package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Providers struct {
		Timeout   time.Duration `yaml:"timeout"`
		Marketaux struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"marketaux"`
		NewsAPI struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"newsapi"`
	} `yaml:"providers"`
	Cache struct {
		QuoteTTL         time.Duration `yaml:"quote_ttl"`
		DailyHistoryTTL  time.Duration `yaml:"daily_history_ttl"`
		WeeklyHistoryTTL time.Duration `yaml:"weekly_history_ttl"`
		NewsTTL          time.Duration `yaml:"news_ttl"`
		Redis            struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		QuoteLimit    int           `yaml:"quote_limit"`
		HistoryLimit  int           `yaml:"history_limit"`
		NewsLimit     int           `yaml:"news_limit"`
		InsightLimit  int           `yaml:"insight_limit"`
		WindowSeconds int           `yaml:"window_seconds"`
		CleanupAge    time.Duration `yaml:"cleanup_age"`
	} `yaml:"rate_limit"`
	Sentiment struct {
		RollupSchedule string   `yaml:"rollup_schedule"` // cron spec
		Watchlist      []string `yaml:"watchlist"`
		LookbackHours  int      `yaml:"lookback_hours"`
	} `yaml:"sentiment"`
	Ingest struct {
		Backend      string        `yaml:"backend"` // kafka or clickhouse
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
		Stream       struct {
			URL            string        `yaml:"url"`
			APIKey         string        `yaml:"api_key"`
			Symbols        []string      `yaml:"symbols"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
		} `yaml:"stream"`
	} `yaml:"ingest"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		LogsTopic    string   `yaml:"logs_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Provider API keys in particular are expected to come from the environment in
// deployed setups.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKETAUX_API_KEY"); v != "" {
		c.Providers.Marketaux.APIKey = v
	}
	if v := os.Getenv("NEWSAPI_API_KEY"); v != "" {
		c.Providers.NewsAPI.APIKey = v
	}
	if v := os.Getenv("STREAM_API_KEY"); v != "" {
		c.Ingest.Stream.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Ingest.Stream.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("INGEST_BACKEND"); v != "" {
		c.Ingest.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.QuoteTTL == 0 {
		c.Cache.QuoteTTL = 15 * time.Second
	}
	if c.Cache.DailyHistoryTTL == 0 {
		c.Cache.DailyHistoryTTL = 6 * time.Hour
	}
	if c.Cache.WeeklyHistoryTTL == 0 {
		c.Cache.WeeklyHistoryTTL = time.Hour
	}
	if c.Cache.NewsTTL == 0 {
		c.Cache.NewsTTL = 5 * time.Minute
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.RateLimit.QuoteLimit == 0 {
		c.RateLimit.QuoteLimit = 30
	}
	if c.RateLimit.HistoryLimit == 0 {
		c.RateLimit.HistoryLimit = 20
	}
	if c.RateLimit.NewsLimit == 0 {
		c.RateLimit.NewsLimit = 10
	}
	if c.RateLimit.InsightLimit == 0 {
		c.RateLimit.InsightLimit = 10
	}
	if c.RateLimit.CleanupAge == 0 {
		c.RateLimit.CleanupAge = 24 * time.Hour
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 10 * time.Second
	}
	if c.Sentiment.RollupSchedule == "" {
		c.Sentiment.RollupSchedule = "0 * * * *"
	}
	if c.Sentiment.LookbackHours == 0 {
		c.Sentiment.LookbackHours = 48
	}
	if c.Kafka.LogsTopic == "" {
		c.Kafka.LogsTopic = "marketpulse.logs"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Ingest.Backend != "" && c.Ingest.Backend != "kafka" && c.Ingest.Backend != "clickhouse" {
		return fmt.Errorf("ingest.backend must be 'kafka' or 'clickhouse', got '%s'", c.Ingest.Backend)
	}
	if c.Ingest.Backend == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with ingest.backend=kafka")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	return nil
}
