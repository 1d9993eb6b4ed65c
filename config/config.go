package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Log           LogConfig          `mapstructure:"log"`
	Symbols       []SymbolConfig     `mapstructure:"symbols"`
	Prices        PricesConfig       `mapstructure:"prices"`
	CoinGecko     CoinGeckoConfig    `mapstructure:"coingecko"`
	Binance       BinanceConfig      `mapstructure:"binance"`
	Schedule      ScheduleConfig     `mapstructure:"schedule"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Firebase      FirebaseConfig     `mapstructure:"firebase"`
	Thresholds    ThresholdsConfig   `mapstructure:"thresholds"`
	Publish       PublishConfig      `mapstructure:"publish"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// SymbolConfig describes one tracked asset and its ids on each price source.
type SymbolConfig struct {
	Symbol      string `mapstructure:"symbol"`
	Name        string `mapstructure:"name"`
	CoinGeckoID string `mapstructure:"coingecko_id"`
	BinancePair string `mapstructure:"binance_pair"`
}

type PricesConfig struct {
	Primary  string `mapstructure:"primary"`  // "coingecko" or "binance"
	Fallback string `mapstructure:"fallback"` // optional second source for missing symbols
}

type CoinGeckoConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	VsCurrency string        `mapstructure:"vs_currency"`
}

type BinanceConfig struct {
	REST RESTConfig `mapstructure:"rest"`
	WS   WSConfig   `mapstructure:"ws"`
}

type RESTConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WSConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// ScheduleConfig holds the cadence of the background tasks.
type ScheduleConfig struct {
	IngestInterval  time.Duration `mapstructure:"ingest_interval"`
	IngestRetry     time.Duration `mapstructure:"ingest_retry"`
	MonitorInterval time.Duration `mapstructure:"monitor_interval"`
	MonitorRetry    time.Duration `mapstructure:"monitor_retry"`
}

type NotificationConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	Topic       string        `mapstructure:"topic"`
	Title       string        `mapstructure:"title"`
	FCMEnabled  bool          `mapstructure:"fcm_enabled"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	NodeID      int64         `mapstructure:"node_id"` // snowflake node for message ids
}

type FirebaseConfig struct {
	ServiceAccountPath  string        `mapstructure:"service_account_path"`
	ServiceAccountParam string        `mapstructure:"service_account_param"` // SSM parameter used in prod
	Collection          string        `mapstructure:"collection"`
	FirestoreBaseURL    string        `mapstructure:"firestore_base_url"`
	FCMBaseURL          string        `mapstructure:"fcm_base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

type ThresholdsConfig struct {
	Backend string                     `mapstructure:"backend"` // "firestore", "sql" or "static"
	SQL     SQLConfig                  `mapstructure:"sql"`
	Static  map[string]StaticThreshold `mapstructure:"static"`
}

type StaticThreshold struct {
	Low  *float64 `mapstructure:"low"`
	High *float64 `mapstructure:"high"`
}

type SQLConfig struct {
	Driver         string         `mapstructure:"driver"` // "postgres" or "mysql"
	Postgres       PostgresConfig `mapstructure:"postgres"`
	MySQLDSN       string         `mapstructure:"mysql_dsn"`
	CreateDatabase bool           `mapstructure:"create_database"`
}

type PublishConfig struct {
	NATS  NATSConfig  `mapstructure:"nats"`
	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Channel string `mapstructure:"channel"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Environment returns the deployment environment ("dev" or "prod").
func (c *Config) Environment() string {
	return c.Log.Environment
}

// SymbolIDs returns the tracked symbol identifiers in configuration order.
func (c *Config) SymbolIDs() []string {
	out := make([]string, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		out = append(out, s.Symbol)
	}
	return out
}

// Load reads configuration from a yaml file (explicit path, or config.yaml in
// the usual locations) and overrides it with environment variables.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
	}

	// Support environment variables with dot notation (e.g., NOTIFICATIONS_INTERVAL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	if len(c.Symbols) == 0 {
		c.Symbols = DefaultSymbols()
	}
	for i := range c.Symbols {
		c.Symbols[i].Symbol = strings.ToLower(strings.TrimSpace(c.Symbols[i].Symbol))
		c.Symbols[i].BinancePair = strings.ToUpper(c.Symbols[i].BinancePair)
	}

	static := make(map[string]StaticThreshold, len(c.Thresholds.Static))
	for sym, th := range c.Thresholds.Static {
		static[strings.ToLower(sym)] = th
	}
	c.Thresholds.Static = static
}

// Validate rejects configurations the service can't run with.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("config: no symbols configured")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if s.Symbol == "" {
			return errors.New("config: symbol with empty id")
		}
		if seen[s.Symbol] {
			return fmt.Errorf("config: duplicate symbol %q", s.Symbol)
		}
		seen[s.Symbol] = true
	}

	durations := map[string]time.Duration{
		"schedule.ingest_interval":  c.Schedule.IngestInterval,
		"schedule.ingest_retry":     c.Schedule.IngestRetry,
		"schedule.monitor_interval": c.Schedule.MonitorInterval,
		"schedule.monitor_retry":    c.Schedule.MonitorRetry,
		"notifications.interval":    c.Notifications.Interval,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", key, d)
		}
	}

	switch c.Thresholds.Backend {
	case "firestore", "sql", "static":
	default:
		return fmt.Errorf("config: unknown thresholds backend %q", c.Thresholds.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("prices.primary", "coingecko")
	v.SetDefault("prices.fallback", "binance")

	v.SetDefault("coingecko.base_url", "https://api.coingecko.com")
	v.SetDefault("coingecko.timeout", 10*time.Second)
	v.SetDefault("coingecko.vs_currency", "brl")

	v.SetDefault("binance.rest.base_url", "https://api.binance.com")
	v.SetDefault("binance.rest.timeout", 15*time.Second)
	v.SetDefault("binance.ws.enabled", false)
	v.SetDefault("binance.ws.url", "wss://stream.binance.com:9443/stream")
	v.SetDefault("binance.ws.timeout", 60*time.Second)
	v.SetDefault("binance.ws.reconnect_delay", 3*time.Second)

	v.SetDefault("schedule.ingest_interval", 60*time.Second)
	v.SetDefault("schedule.ingest_retry", 30*time.Second)
	v.SetDefault("schedule.monitor_interval", time.Second)
	v.SetDefault("schedule.monitor_retry", 5*time.Second)

	v.SetDefault("notifications.interval", 30*time.Second)
	v.SetDefault("notifications.topic", "crypto_alerts")
	v.SetDefault("notifications.title", "CRYPTO ANALYSER")
	v.SetDefault("notifications.fcm_enabled", true)
	v.SetDefault("notifications.send_timeout", 30*time.Second)
	v.SetDefault("notifications.node_id", 1)

	v.SetDefault("firebase.service_account_path", "service-account.json")
	v.SetDefault("firebase.service_account_param", "")
	v.SetDefault("firebase.collection", "coins")
	v.SetDefault("firebase.firestore_base_url", "https://firestore.googleapis.com")
	v.SetDefault("firebase.fcm_base_url", "https://fcm.googleapis.com")
	v.SetDefault("firebase.timeout", 30*time.Second)

	v.SetDefault("thresholds.backend", "firestore")
	v.SetDefault("thresholds.sql.driver", "postgres")
	v.SetDefault("thresholds.sql.mysql_dsn", "")
	v.SetDefault("thresholds.sql.create_database", false)
	v.SetDefault("thresholds.sql.postgres.host", "localhost")
	v.SetDefault("thresholds.sql.postgres.port", 5432)
	v.SetDefault("thresholds.sql.postgres.user", "postgres")
	v.SetDefault("thresholds.sql.postgres.password", "")
	v.SetDefault("thresholds.sql.postgres.dbname", "cryptopusher")
	v.SetDefault("thresholds.sql.postgres.sslmode", "disable")
	v.SetDefault("thresholds.sql.postgres.timezone", "UTC")
	v.SetDefault("thresholds.sql.postgres.host_param", "/cryptopusher/db/host")
	v.SetDefault("thresholds.sql.postgres.user_param", "/cryptopusher/db/user")
	v.SetDefault("thresholds.sql.postgres.password_param", "/cryptopusher/db/password")

	v.SetDefault("publish.nats.enabled", false)
	v.SetDefault("publish.nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("publish.nats.subject", "crypto.alerts")
	v.SetDefault("publish.redis.enabled", false)
	v.SetDefault("publish.redis.addr", "localhost:6379")
	v.SetDefault("publish.redis.channel", "crypto_alerts")
	v.SetDefault("publish.kafka.enabled", false)
	v.SetDefault("publish.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("publish.kafka.topic", "crypto-alerts")
}
