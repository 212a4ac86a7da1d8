package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lazypower/pulse/internal/signal"
)

// Config holds all pulse configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Hooks    HooksConfig    `mapstructure:"hooks"`
}

type ServerConfig struct {
	Bind string `mapstructure:"bind"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // empty resolves to store.DefaultDBPath()
}

type CacheConfig struct {
	Type            string `mapstructure:"type"` // "sqlite", "memory", "mysql"
	TTLHours        int    `mapstructure:"ttl_hours"`
	CleanupSchedule string `mapstructure:"cleanup_schedule"` // cron spec
	RefreshSchedule string `mapstructure:"refresh_schedule"` // cron spec, empty disables
	MySQLDSN        string `mapstructure:"mysql_dsn"`
}

type AnalysisConfig struct {
	TimeframeDays         int                       `mapstructure:"timeframe_days"`
	SignificanceThreshold float64                   `mapstructure:"significance_threshold"`
	Severity              signal.SeverityThresholds `mapstructure:"severity"`
	Trend                 signal.TrendThresholds    `mapstructure:"trend"`
	QueryTimeout          time.Duration             `mapstructure:"query_timeout"`
	PageSize              int                       `mapstructure:"page_size"`
	MinMessages           int                       `mapstructure:"min_messages_for_confidence"`
	Timezone              string                    `mapstructure:"timezone"`
	LexiconFile           string                    `mapstructure:"lexicon_file"`
	RulesFile             string                    `mapstructure:"rules_file"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

type HooksConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // seconds
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Cache: CacheConfig{
			Type:            "sqlite",
			TTLHours:        24,
			CleanupSchedule: "@every 1h",
		},
		Analysis: AnalysisConfig{
			TimeframeDays:         30,
			SignificanceThreshold: signal.DefaultSignificance,
			Severity:              signal.DefaultSeverityThresholds(),
			Trend:                 signal.DefaultTrendThresholds(),
			QueryTimeout:          10 * time.Second,
			PageSize:              500,
			MinMessages:           50,
			Timezone:              "UTC",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Hooks: HooksConfig{
			Enabled: true,
			Timeout: 10,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.bind", d.Server.Bind)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.ttl_hours", d.Cache.TTLHours)
	v.SetDefault("cache.cleanup_schedule", d.Cache.CleanupSchedule)
	v.SetDefault("cache.refresh_schedule", d.Cache.RefreshSchedule)
	v.SetDefault("cache.mysql_dsn", d.Cache.MySQLDSN)

	v.SetDefault("analysis.timeframe_days", d.Analysis.TimeframeDays)
	v.SetDefault("analysis.significance_threshold", d.Analysis.SignificanceThreshold)
	v.SetDefault("analysis.severity.critical", d.Analysis.Severity.Critical)
	v.SetDefault("analysis.severity.high", d.Analysis.Severity.High)
	v.SetDefault("analysis.severity.medium", d.Analysis.Severity.Medium)
	v.SetDefault("analysis.trend.increasing", d.Analysis.Trend.Increasing)
	v.SetDefault("analysis.trend.decreasing", d.Analysis.Trend.Decreasing)
	v.SetDefault("analysis.query_timeout", d.Analysis.QueryTimeout)
	v.SetDefault("analysis.page_size", d.Analysis.PageSize)
	v.SetDefault("analysis.min_messages_for_confidence", d.Analysis.MinMessages)
	v.SetDefault("analysis.timezone", d.Analysis.Timezone)
	v.SetDefault("analysis.lexicon_file", d.Analysis.LexiconFile)
	v.SetDefault("analysis.rules_file", d.Analysis.RulesFile)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("hooks.enabled", d.Hooks.Enabled)
	v.SetDefault("hooks.timeout", d.Hooks.Timeout)
}

// NewViper returns a viper instance with defaults, the PULSE_ environment
// prefix and the standard config search paths.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("pulse")
	v.AddConfigPath("/etc/pulse/")
	v.AddConfigPath("$HOME/.pulse")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path, or from the search paths when path is
// empty. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates a typed Config.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.TimeframeDays <= 0 {
		return fmt.Errorf("analysis.timeframe_days must be positive, got %d", a.TimeframeDays)
	}
	if a.SignificanceThreshold < 0 {
		return fmt.Errorf("analysis.significance_threshold must not be negative, got %v", a.SignificanceThreshold)
	}
	if err := a.Severity.Validate(); err != nil {
		return fmt.Errorf("analysis.severity: %w", err)
	}
	if err := a.Trend.Validate(); err != nil {
		return fmt.Errorf("analysis.trend: %w", err)
	}
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		return fmt.Errorf("analysis.timezone: %w", err)
	}
	if c.Cache.TTLHours <= 0 {
		return fmt.Errorf("cache.ttl_hours must be positive, got %d", c.Cache.TTLHours)
	}
	switch c.Cache.Type {
	case "sqlite", "memory", "mysql":
	default:
		return fmt.Errorf("cache.type must be sqlite, memory or mysql, got %q", c.Cache.Type)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// CacheTTL returns the cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// Location returns the analysis timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analysis.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
