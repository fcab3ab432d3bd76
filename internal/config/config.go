package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/pricewatch-hq/pricewatch/internal/storage"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	AdaptersFile  string `mapstructure:"adapters_file"`
	NotifiersFile string `mapstructure:"notifiers_file"`

	FetchTimeoutSeconds    int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout           time.Duration `mapstructure:"-"`
	RefreshIntervalSeconds int64         `mapstructure:"refresh_interval_seconds"`
	RefreshInterval        time.Duration `mapstructure:"-"`

	ThrottlePath            string        `mapstructure:"throttle_path"`
	ThrottleTTLSeconds      int64         `mapstructure:"refresh_throttle_seconds"`
	ThrottleCleanupSeconds  int64         `mapstructure:"throttle_cleanup_interval_seconds"`
	ThrottleTTL             time.Duration `mapstructure:"-"`
	ThrottleCleanupInterval time.Duration `mapstructure:"-"`

	DBHost     string `mapstructure:"db_host"`
	DBPort     int    `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBSSLMode  string `mapstructure:"db_sslmode"`
	DBPoolSize int32  `mapstructure:"db_pool_size"`
}

// Storage materializes the explicit Postgres connection settings handed to
// storage.Open at startup. Nothing else reads connection secrets ambiently.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Database: c.DBName,
		SSLMode:  c.DBSSLMode,
		PoolSize: c.DBPoolSize,
	}
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "pricewatch")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("adapters_file", "./configs/adapters.yaml")
	v.SetDefault("notifiers_file", "./configs/notifiers.yaml")
	v.SetDefault("fetch_timeout_seconds", 15)
	v.SetDefault("refresh_interval_seconds", int64((6*time.Hour)/time.Second))
	v.SetDefault("throttle_path", "./data/throttle.db")
	v.SetDefault("refresh_throttle_seconds", int64(time.Hour/time.Second))
	v.SetDefault("throttle_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "pricewatch")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "pricewatch")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_pool_size", 4)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.FetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second

	// refresh_interval_seconds = 0 disables the periodic refresh loop entirely,
	// leaving the original record-once-at-creation behavior.
	if cfg.RefreshIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid refresh_interval_seconds (must be >= 0)")
	}
	cfg.RefreshInterval = time.Duration(cfg.RefreshIntervalSeconds) * time.Second

	if cfg.ThrottleTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid refresh_throttle_seconds (must be positive seconds)")
	}
	if cfg.ThrottleCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid throttle_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.ThrottleTTL = time.Duration(cfg.ThrottleTTLSeconds) * time.Second
	cfg.ThrottleCleanupInterval = time.Duration(cfg.ThrottleCleanupSeconds) * time.Second

	if cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "" {
		return nil, fmt.Errorf("db_host, db_name and db_user must be set")
	}
	if cfg.DBPort <= 0 {
		return nil, fmt.Errorf("invalid db_port")
	}

	return &cfg, nil
}
