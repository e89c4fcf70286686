package models

import "time"

// StorageBackend names a durable slot implementation.
type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendBadger StorageBackend = "badger"
	BackendSQLite StorageBackend = "sqlite"
	BackendRedis  StorageBackend = "redis"
	BackendMemory StorageBackend = "memory"
)

// StorageConfig selects and configures the durable slot.
type StorageConfig struct {
	Backend   StorageBackend `yaml:"backend" mapstructure:"backend"`
	Path      string         `yaml:"path,omitempty" mapstructure:"path"`
	RedisAddr string         `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	Key       string         `yaml:"key" mapstructure:"key"`
}

// AssistantConfig configures the completion service used by the assistant.
type AssistantConfig struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Model    string        `yaml:"model" mapstructure:"model"`
	APIKey   string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// GlobalConfig holds settings read from .folioconfig via Viper.
type GlobalConfig struct {
	Storage       StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Assistant     AssistantConfig `yaml:"assistant" mapstructure:"assistant"`
	ConfirmDelete bool            `yaml:"confirm_delete" mapstructure:"confirm_delete"`
	CreatorMode   bool            `yaml:"creator_mode" mapstructure:"creator_mode"`
	ServerAddr    string          `yaml:"server_addr" mapstructure:"server_addr"`
	LogLevel      string          `yaml:"log_level" mapstructure:"log_level"`

	// HTTP chat sessions idle longer than ChatSessionTTL are dropped, and at
	// most MaxChatSessions are held in memory.
	ChatSessionTTL  time.Duration `yaml:"chat_session_ttl" mapstructure:"chat_session_ttl"`
	MaxChatSessions int           `yaml:"max_chat_sessions" mapstructure:"max_chat_sessions"`
}
