package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"sitetrack/internal/engine/tracking"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Site     SiteConfig     `mapstructure:"site"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SiteConfig struct {
	Title   string `mapstructure:"title"`
	HomeURL string `mapstructure:"home_url"`
}

// TrackingConfig mirrors the automation plugin options plus dispatch tuning.
type TrackingConfig struct {
	User        string        `mapstructure:"user"`
	Secret      string        `mapstructure:"secret"`
	URL         string        `mapstructure:"url"`
	Realm       string        `mapstructure:"realm"`
	Channel     string        `mapstructure:"channel"`
	Debug       bool          `mapstructure:"debug"`
	Async       bool          `mapstructure:"async"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxInFlight int64         `mapstructure:"max_in_flight"`
}

type DatabaseConfig struct {
	Path           string        `mapstructure:"path"`
	MaxConnections int           `mapstructure:"max_connections"`
	Retention      time.Duration `mapstructure:"retention"`
	PruneInterval  time.Duration `mapstructure:"prune_interval"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Submitter converts the tracking section into the submitter's config.
func (c TrackingConfig) Submitter() tracking.Config {
	return tracking.Config{
		User:    c.User,
		Secret:  c.Secret,
		BaseURL: c.URL,
		Realm:   c.Realm,
		Channel: c.Channel,
		Debug:   c.Debug,
		Timeout: c.Timeout,
	}
}

func (c TrackingConfig) Dispatcher() tracking.DispatcherConfig {
	return tracking.DispatcherConfig{
		Async:       c.Async,
		MaxInFlight: c.MaxInFlight,
		Timeout:     c.Timeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("site.title", "sitetrack")
	v.SetDefault("tracking.async", true)
	v.SetDefault("tracking.timeout", 10*time.Second)
	v.SetDefault("tracking.max_in_flight", 64)
	v.SetDefault("database.max_connections", 4)
	v.SetDefault("database.retention", 30*24*time.Hour)
	v.SetDefault("database.prune_interval", time.Hour)
	v.SetDefault("jwt.access_token_ttl", 15*time.Minute)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "sitetrack")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 28)
}

func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
