// Package core contains the business logic for flowfolio: the workflow
// catalog, the catalog editor, the portfolio assistant, catalog export, and
// configuration loading.
package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// ConfigFileName is the name of the global configuration file (YAML).
const ConfigFileName = ".folioconfig"

// ConfigurationManager loads and validates the .folioconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(config *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper.
type viperConfigManager struct {
	// basePath is the root directory where .folioconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with the defaults used
// when no .folioconfig exists.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Storage: models.StorageConfig{
			Backend:   models.BackendFile,
			RedisAddr: "localhost:6379",
			Key:       "portfolio_workflows",
		},
		Assistant: models.AssistantConfig{
			Endpoint: "https://generativelanguage.googleapis.com",
			Model:    "gemini-3-flash-preview",
			Timeout:  30 * time.Second,
		},
		ConfirmDelete: true,
		CreatorMode:   false,
		ServerAddr:    ":8080",
		LogLevel:      "info",

		ChatSessionTTL:  30 * time.Minute,
		MaxChatSessions: 1000,
	}
}

// LoadGlobalConfig reads .folioconfig from the base path. Missing files yield
// defaults. FOLIO_* environment variables override file values, e.g.
// FOLIO_STORAGE_BACKEND=sqlite.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.backend", string(cfg.Storage.Backend))
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.redis_addr", cfg.Storage.RedisAddr)
	v.SetDefault("storage.key", cfg.Storage.Key)
	v.SetDefault("assistant.endpoint", cfg.Assistant.Endpoint)
	v.SetDefault("assistant.model", cfg.Assistant.Model)
	v.SetDefault("assistant.api_key", "")
	v.SetDefault("assistant.timeout", cfg.Assistant.Timeout.String())
	v.SetDefault("catalog.confirm_delete", cfg.ConfirmDelete)
	v.SetDefault("creator_mode", cfg.CreatorMode)
	v.SetDefault("server.addr", cfg.ServerAddr)
	v.SetDefault("server.chat_session_ttl", cfg.ChatSessionTTL.String())
	v.SetDefault("server.max_chat_sessions", cfg.MaxChatSessions)
	v.SetDefault("log.level", cfg.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.Storage.Backend = models.StorageBackend(strings.ToLower(v.GetString("storage.backend")))
	cfg.Storage.Path = v.GetString("storage.path")
	cfg.Storage.RedisAddr = v.GetString("storage.redis_addr")
	cfg.Storage.Key = v.GetString("storage.key")
	cfg.Assistant.Endpoint = strings.TrimRight(v.GetString("assistant.endpoint"), "/")
	cfg.Assistant.Model = v.GetString("assistant.model")
	cfg.Assistant.APIKey = v.GetString("assistant.api_key")
	if cfg.Assistant.APIKey == "" {
		cfg.Assistant.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.Assistant.Timeout = v.GetDuration("assistant.timeout")
	cfg.ConfirmDelete = v.GetBool("catalog.confirm_delete")
	cfg.CreatorMode = v.GetBool("creator_mode")
	cfg.ServerAddr = v.GetString("server.addr")
	cfg.ChatSessionTTL = v.GetDuration("server.chat_session_ttl")
	cfg.MaxChatSessions = v.GetInt("server.max_chat_sessions")
	cfg.LogLevel = v.GetString("log.level")

	return cfg, nil
}

var validBackends = map[models.StorageBackend]bool{
	models.BackendFile:   true,
	models.BackendBadger: true,
	models.BackendSQLite: true,
	models.BackendRedis:  true,
	models.BackendMemory: true,
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"off":   true,
}

// ValidateConfig checks cfg and reports every invalid value in one error.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !validBackends[cfg.Storage.Backend] {
		errs = append(errs, fmt.Sprintf(
			"storage.backend %q is invalid, must be one of: file, badger, sqlite, redis, memory",
			cfg.Storage.Backend,
		))
	}
	if strings.TrimSpace(cfg.Storage.Key) == "" {
		errs = append(errs, "storage.key must not be empty")
	}
	if cfg.Storage.Backend == models.BackendRedis && cfg.Storage.RedisAddr == "" {
		errs = append(errs, "storage.redis_addr is required for the redis backend")
	}
	if cfg.Assistant.Endpoint == "" {
		errs = append(errs, "assistant.endpoint must not be empty")
	} else if !strings.HasPrefix(cfg.Assistant.Endpoint, "http://") && !strings.HasPrefix(cfg.Assistant.Endpoint, "https://") {
		errs = append(errs, fmt.Sprintf("assistant.endpoint %q must be an http(s) URL", cfg.Assistant.Endpoint))
	}
	if cfg.Assistant.Model == "" {
		errs = append(errs, "assistant.model must not be empty")
	}
	if cfg.Assistant.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("assistant.timeout must be positive, got %s", cfg.Assistant.Timeout))
	}
	if cfg.ServerAddr == "" {
		errs = append(errs, "server.addr must not be empty")
	}
	if cfg.ChatSessionTTL <= 0 {
		errs = append(errs, fmt.Sprintf("server.chat_session_ttl must be positive, got %s", cfg.ChatSessionTTL))
	}
	if cfg.MaxChatSessions <= 0 {
		errs = append(errs, fmt.Sprintf("server.max_chat_sessions must be positive, got %d", cfg.MaxChatSessions))
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, fmt.Sprintf(
			"log.level %q is invalid, must be one of: trace, debug, info, warn, error, off",
			cfg.LogLevel,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
