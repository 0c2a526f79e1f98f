// Package config loads the bot's settings from defaults, an optional
// config file and TAOBOT_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server     string        `mapstructure:"server"` // "na", "eu" or a websocket URL
	UserID     string        `mapstructure:"user_id"`
	Username   string        `mapstructure:"username"`
	Room       string        `mapstructure:"room"`
	ForceStart bool          `mapstructure:"force_start"`
	Interval   time.Duration `mapstructure:"interval"`
	Strategy   string        `mapstructure:"strategy"`
	TuningPath string        `mapstructure:"tuning"`
	LogLevel   string        `mapstructure:"log_level"`

	// Board mirrors. All are off unless set.
	Render       bool   `mapstructure:"render"`
	RedisURL     string `mapstructure:"redis_url"`
	FrameHistory int    `mapstructure:"frame_history"`
	SpectateAddr string `mapstructure:"spectate_addr"`
}

var defaults = map[string]any{
	"server":        "na",
	"username":      "taobot",
	"force_start":   true,
	"interval":      500 * time.Millisecond,
	"strategy":      "tao",
	"log_level":     "info",
	"render":        false,
	"frame_history": 0,
}

// New returns a viper instance with the defaults and environment binding
// in place. Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, k := range []string{"user_id", "room", "tuning", "redis_url", "spectate_addr"} {
		v.SetDefault(k, "")
	}
	v.SetEnvPrefix("TAOBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, when given, into v and decodes the
// result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings needed to join a match.
func (c *Config) Validate() error {
	var errs []error
	if c.UserID == "" {
		errs = append(errs, errors.New("user_id is required"))
	}
	if c.Room == "" {
		errs = append(errs, errors.New("room is required"))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.FrameHistory < 0 {
		errs = append(errs, fmt.Errorf("frame_history must not be negative, got %d", c.FrameHistory))
	}
	return errors.Join(errs...)
}
