package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	RPC         RPCConfig         `mapstructure:"rpc"`
	Accrual     AccrualConfig     `mapstructure:"accrual"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Neo4J       Neo4JConfig       `mapstructure:"neo4j"`
	Health      HealthConfig      `mapstructure:"health"`
}

// AppConfig represents application-specific configuration
type AppConfig struct {
	Env            string `mapstructure:"env"`
	LogLevel       string `mapstructure:"log_level"`
	HTTPPort       int    `mapstructure:"http_port"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
}

// RPCConfig represents the Circles ledger RPC configuration. MaxAttempts and
// RetryBaseDelay drive the rate-limit backoff policy applied to every
// remote read.
type RPCConfig struct {
	URL            string        `mapstructure:"url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	MaxRetryDelay  time.Duration `mapstructure:"max_retry_delay"`
}

// AccrualConfig represents the accrual formula parameters. These mirror the
// ledger's issuance rules and are deployment-tunable rather than literals.
type AccrualConfig struct {
	HourlyRate     float64 `mapstructure:"hourly_rate"`
	MaxAccrualDays int     `mapstructure:"max_accrual_days"`
	DailyUnit      float64 `mapstructure:"daily_unit"`
}

// AggregationConfig represents aggregation pass tuning. A non-positive
// MaxConcurrentEnrichments runs one worker per counterpart.
type AggregationConfig struct {
	TrustLimit               int `mapstructure:"trust_limit"`
	HistoryLimit             int `mapstructure:"history_limit"`
	MaxConcurrentEnrichments int `mapstructure:"max_concurrent_enrichments"`
}

// NATSConfig represents NATS configuration
type NATSConfig struct {
	URL                string        `mapstructure:"url"`
	StreamName         string        `mapstructure:"stream_name"`
	SubjectPrefix      string        `mapstructure:"subject_prefix"`
	ConsumerGroup      string        `mapstructure:"consumer_group"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts  int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay     time.Duration `mapstructure:"reconnect_delay"`
	MaxPendingRequests int           `mapstructure:"max_pending_requests"`
	Enabled            bool          `mapstructure:"enabled"`
}

// Neo4JConfig represents the optional trust-graph archive configuration
type Neo4JConfig struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Database                     string        `mapstructure:"database"`
	ConnectTimeout               time.Duration `mapstructure:"connect_timeout"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout"`
	Enabled                      bool          `mapstructure:"enabled"`
}

// HealthConfig represents health check configuration
type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/circles-claim-reminder")

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")

	// Map environment variables to nested config keys
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Default values
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.http_port", 8080)
	viper.SetDefault("app.worker_pool_size", 4)

	// RPC defaults
	viper.SetDefault("rpc.url", "https://rpc.aboutcircles.com/")
	viper.SetDefault("rpc.timeout", "30s")
	viper.SetDefault("rpc.max_attempts", 3)
	viper.SetDefault("rpc.retry_base_delay", "1s")
	viper.SetDefault("rpc.max_retry_delay", "30s")

	// Accrual defaults: 1 CRC per hour, 7 day cap, 24 CRC daily unit
	viper.SetDefault("accrual.hourly_rate", 1.0)
	viper.SetDefault("accrual.max_accrual_days", 7)
	viper.SetDefault("accrual.daily_unit", 24.0)

	// Aggregation defaults
	viper.SetDefault("aggregation.trust_limit", 200)
	viper.SetDefault("aggregation.history_limit", 100)
	viper.SetDefault("aggregation.max_concurrent_enrichments", 0)

	// NATS defaults
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.stream_name", "REMINDERS")
	viper.SetDefault("nats.subject_prefix", "reminders")
	viper.SetDefault("nats.consumer_group", "claim-reminder")
	viper.SetDefault("nats.connect_timeout", "10s")
	viper.SetDefault("nats.reconnect_attempts", 5)
	viper.SetDefault("nats.reconnect_delay", "2s")
	viper.SetDefault("nats.max_pending_requests", 1024)
	viper.SetDefault("nats.enabled", true)

	// Neo4J archive defaults (disabled unless a deployment opts in)
	viper.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "password")
	viper.SetDefault("neo4j.database", "neo4j")
	viper.SetDefault("neo4j.connect_timeout", "10s")
	viper.SetDefault("neo4j.max_connection_pool_size", 50)
	viper.SetDefault("neo4j.connection_acquisition_timeout", "60s")
	viper.SetDefault("neo4j.enabled", false)

	// Health defaults
	viper.SetDefault("health.interval", "30s")
	viper.SetDefault("health.timeout", "5s")

	// Bind env for endpoints
	viper.BindEnv("rpc.url", "CIRCLES_RPC_URL")
	viper.BindEnv("nats.url", "NATS_URL")
}
