package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	FX       FXConfig       `mapstructure:"fx"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// GatewayConfig holds the external payment gateway settings. Channels maps a
// pay method key ("CARD", "EASY_PAY:KAKAOPAY", ...) to the gateway channel key.
type GatewayConfig struct {
	BaseURL       string            `mapstructure:"base_url"`
	APISecret     string            `mapstructure:"api_secret"`
	StoreID       string            `mapstructure:"store_id"`
	Channels      map[string]string `mapstructure:"channels"`
	Timeout       time.Duration     `mapstructure:"timeout"`
	FetchRetries  int               `mapstructure:"fetch_retries"`
	RetryBaseWait time.Duration     `mapstructure:"retry_base_wait"`
}

// FXConfig holds the exchange-rate provider settings.
type FXConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	PruneAge        time.Duration `mapstructure:"prune_age"`
	FallbackRate    float64       `mapstructure:"fallback_rate"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: DPS_ (Digital Payment Service).
// Nested keys use underscore: DPS_DATABASE_HOST, DPS_GATEWAY_API_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "digital_payments")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "digital-payment-service")
	v.SetDefault("gateway.base_url", "https://api.portone.io")
	v.SetDefault("gateway.api_secret", "")
	v.SetDefault("gateway.store_id", "")
	v.SetDefault("gateway.timeout", "5s")
	v.SetDefault("gateway.fetch_retries", 2)
	v.SetDefault("gateway.retry_base_wait", "500ms")
	v.SetDefault("fx.base_url", "https://open.er-api.com/v6")
	v.SetDefault("fx.refresh_interval", "24h")
	v.SetDefault("fx.prune_age", "720h") // 30 days
	v.SetDefault("fx.fallback_rate", 1300.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: DPS_GATEWAY_STORE_ID -> gateway.store_id
	v.SetEnvPrefix("DPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional, env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
