// internal/common/config/config.go
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Seed          SeedConfig         `mapstructure:"seed"`
	Registry      RegistryConfig     `mapstructure:"registry"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	StaticDir       string `mapstructure:"static_dir"`       // empty serves the embedded assets
	IndexPath       string `mapstructure:"index_path"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Seed sources.
const (
	SeedSourceEmbedded = "embedded"
	SeedSourceFile     = "file"
	SeedSourceRedis    = "redis"
)

// SeedConfig selects where the activity catalog is read from at startup.
type SeedConfig struct {
	Source   string `mapstructure:"source"`
	Path     string `mapstructure:"path"`
	RedisKey string `mapstructure:"redis_key"`
}

type RegistryConfig struct {
	EnforceCapacity bool `mapstructure:"enforce_capacity"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address     string `mapstructure:"address"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	DialTimeout int    `mapstructure:"dial_timeout"` // milliseconds, 0 uses the go-redis default
	ReadTimeout int    `mapstructure:"read_timeout"` // milliseconds, also used for writes
	PoolSize    int    `mapstructure:"pool_size"`
}

// NotificationConfig holds settings for roster-change confirmations.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		AWSRegion string `mapstructure:"aws_region"`
		Timeout   int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"email"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) String() string {
	return fmt.Sprintf("%s %s (%s) on %s, seed=%s", c.App.Name, c.App.Version, c.App.Environment, c.Server.Addr(), c.Seed.Source)
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
