// Package config loads remindbot settings from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"remindbot/state"
)

// EnvPrefix prefixes environment overrides, e.g. REMINDBOT_HTTP_ADDR.
const EnvPrefix = "REMINDBOT"

// Config holds all settings.
type Config struct {
	Database  DatabaseConfig
	Logger    LoggerConfig
	Scheduler SchedulerConfig
	HTTP      HTTPConfig
	Parser    ParserConfig
	Watch     WatchConfig
	User      UserConfig
}

type DatabaseConfig struct {
	Path string
}

type LoggerConfig struct {
	Level    string
	Encoding string // console or json
}

type SchedulerConfig struct {
	Interval       time.Duration
	VacuumSchedule string
	Retention      time.Duration
}

type HTTPConfig struct {
	Addr            string
	Mode            string
	RateLimitPerMin int
}

type ParserConfig struct {
	RequireMessage bool
}

type WatchConfig struct {
	Paths []string
}

type UserConfig struct {
	Default string
}

func setDefaults(v *viper.Viper) error {
	dbPath, err := state.DefaultPath()
	if err != nil {
		return err
	}
	v.SetDefault("database.path", dbPath)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("scheduler.interval", "1s")
	v.SetDefault("scheduler.vacuum_schedule", "0 3 * * mon")
	v.SetDefault("scheduler.retention", "168h")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.mode", "release")
	v.SetDefault("http.rate_limit_per_min", 60)
	v.SetDefault("parser.require_message", false)
	v.SetDefault("watch.paths", []string{})
	v.SetDefault("user.default", "local")
	return nil
}

// Load reads the configuration. With an empty file it looks for
// remindbot.yaml in ./config, the working directory and ~/.remindbot; a
// missing file is not an error. Environment variables override both.
func Load(file string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("remindbot")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.remindbot")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Database.Path = v.GetString("database.path")
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Scheduler.Interval = v.GetDuration("scheduler.interval")
	cfg.Scheduler.VacuumSchedule = v.GetString("scheduler.vacuum_schedule")
	cfg.Scheduler.Retention = v.GetDuration("scheduler.retention")
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.Mode = v.GetString("http.mode")
	cfg.HTTP.RateLimitPerMin = v.GetInt("http.rate_limit_per_min")
	cfg.Parser.RequireMessage = v.GetBool("parser.require_message")
	cfg.Watch.Paths = v.GetStringSlice("watch.paths")
	cfg.User.Default = v.GetString("user.default")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive, got %v", c.Scheduler.Interval)
	}
	if c.Scheduler.Retention < 0 {
		return fmt.Errorf("scheduler.retention must not be negative, got %v", c.Scheduler.Retention)
	}
	if _, err := cron.ParseStandard(c.Scheduler.VacuumSchedule); err != nil {
		return fmt.Errorf("invalid scheduler.vacuum_schedule %q: %w", c.Scheduler.VacuumSchedule, err)
	}
	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("logger.encoding must be console or json, got %q", c.Logger.Encoding)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.User.Default == "" {
		return fmt.Errorf("user.default must not be empty")
	}
	return nil
}
