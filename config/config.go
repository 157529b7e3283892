package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Load reads the service configuration from path, or from DefaultPath when
// path is empty. A missing file is created with defaults. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if cfg, err = writeDefault(path); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("could not read config file %s: %w", path, err)
	default:
		cfg = Default()
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("could not decode config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	dir, err := ExpandPath(cfg.Storage.Dir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.Dir = dir
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_LOG_CHANNEL_ID"); v != "" {
		cfg.Discord.LogChannelID = v
	}
	if v := os.Getenv("WELCOME_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("WELCOME_CONFIG_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		if cfg.Storage.Redis == nil {
			cfg.Storage.Redis = &ConnectionConfig{}
		}
		cfg.Storage.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		if cfg.Storage.Redis == nil {
			cfg.Storage.Redis = &ConnectionConfig{}
		}
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STATUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Status.Port = port
		}
	}
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord token is not set")
	}
	if c.Discord.CommandPrefix == "" {
		return errors.New("command prefix is empty")
	}
	switch strings.ToLower(c.Storage.Backend) {
	case BackendFile:
		if c.Storage.Dir == "" {
			return errors.New("storage dir is required for the file backend")
		}
	case BackendRedis:
		if c.Storage.Redis == nil || c.Storage.Redis.Addr == "" {
			return errors.New("redis addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
