// Package config provides YAML-based configuration loading for Waybill.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Waybill configuration, loaded from config.yaml.
type Config struct {
	Layout    string          `yaml:"layout"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// StorageConfig selects and configures the document store backend.
type StorageConfig struct {
	Driver   string `yaml:"driver"` // sqlite or mysql
	Path     string `yaml:"path"`   // sqlite only
	Host     string `yaml:"host"`   // mysql only
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// SchedulerConfig controls the automatic car-order generation loop.
type SchedulerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// NotifyConfig holds the optional Discord and Slack announcement targets.
// A target with an empty token is disabled.
type NotifyConfig struct {
	Discord DiscordConfig `yaml:"discord"`
	Slack   SlackConfig   `yaml:"slack"`
}

// DiscordConfig identifies a Discord bot and the channel it posts to.
type DiscordConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// SlackConfig identifies a Slack bot and the channel it posts to.
type SlackConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default builds the configuration used when no config file exists: a
// local SQLite layout with the scheduler off.
func Default() *Config {
	cfg := &Config{Layout: "layout"}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Path == "" && c.Layout != "" {
		c.Storage.Path = strings.ToLower(strings.ReplaceAll(c.Layout, " ", "_")) + ".db"
	}
	if c.Storage.Host == "" {
		c.Storage.Host = "127.0.0.1"
	}
	if c.Storage.Port == 0 {
		c.Storage.Port = 3306
	}
	if c.Storage.Database == "" && c.Layout != "" {
		c.Storage.Database = "waybill_" + strings.ToLower(strings.ReplaceAll(c.Layout, " ", "_"))
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8484
	}
	if c.Scheduler.Cron == "" {
		c.Scheduler.Cron = "0 3 * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Layout == "" {
		errs = append(errs, "layout is required")
	}
	switch c.Storage.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q is not sqlite or mysql", c.Storage.Driver))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Notify.Discord.Token != "" && c.Notify.Discord.Channel == "" {
		errs = append(errs, "notify.discord.channel is required when a token is set")
	}
	if c.Notify.Slack.Token != "" && c.Notify.Slack.Channel == "" {
		errs = append(errs, "notify.slack.channel is required when a token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
