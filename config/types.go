package config

// Storage backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the service configuration file.
type Config struct {
	Discord  DiscordConfig `json:"discord" yaml:"discord"`
	Storage  StorageConfig `json:"storage" yaml:"storage"`
	Status   StatusConfig  `json:"status" yaml:"status"`
	LogLevel string        `json:"log_level" yaml:"log_level"`
}

// DiscordConfig holds Discord-specific settings
type DiscordConfig struct {
	Token         string `json:"token" yaml:"token"`
	LogChannelID  string `json:"log_channel_id" yaml:"log_channel_id"`
	CommandPrefix string `json:"command_prefix" yaml:"command_prefix"`
}

// StorageConfig selects where server configs are persisted.
type StorageConfig struct {
	Backend string            `json:"backend" yaml:"backend"`
	Dir     string            `json:"dir" yaml:"dir"`
	Redis   *ConnectionConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// ConnectionConfig holds Redis connection details.
type ConnectionConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// StatusConfig configures the local HTTP status server. Port 0 disables it.
type StatusConfig struct {
	Port int `json:"port" yaml:"port"`
}

// Default returns the configuration written when no file exists.
func Default() *Config {
	return &Config{
		Discord: DiscordConfig{CommandPrefix: "!"},
		Storage: StorageConfig{
			Backend: BackendFile,
			Dir:     "~/Dexter/welcome/servers",
			Redis:   &ConnectionConfig{Addr: "localhost:6379"},
		},
		Status:   StatusConfig{Port: 8310},
		LogLevel: "info",
	}
}
