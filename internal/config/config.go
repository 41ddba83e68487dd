// Пакет config загружает конфигурацию сервиса слоями через Koanf:
// значения по умолчанию, затем необязательный YAML файл, затем переменные
// окружения с префиксом MOVINHOS_. Приоритет: ENV > файл > умолчания.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix префикс переменных окружения сервиса.
// MOVINHOS_SERVER_PORT -> server.port, MOVINHOS_AUTH_JWT_SECRET -> auth.jwt_secret.
const EnvPrefix = "MOVINHOS_"

// ConfigPathEnvVar переменная окружения с путем к YAML файлу конфигурации.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths пути, по которым ищется файл конфигурации.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/movinhos/config.yaml",
}

// ServerConfig настройки HTTP сервера.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig настройки хранилища. При InMemory = true сервис работает
// на хранилище в памяти и не трогает PostgreSQL (режим для разработки и тестов).
type DatabaseConfig struct {
	URL      string `koanf:"url"`
	InMemory bool   `koanf:"in_memory"`
}

// AuthConfig настройки аутентификации.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

// ModerationConfig настройки движка модерации.
type ModerationConfig struct {
	// AutoHideThreshold число жалоб, при достижении которого отзыв скрывается.
	AutoHideThreshold int `koanf:"auto_hide_threshold"`
}

// LoggingConfig настройки логирования.
type LoggingConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// APIConfig лимиты постраничной выдачи.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// Config корневая конфигурация сервиса.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Auth       AuthConfig       `koanf:"auth"`
	Moderation ModerationConfig `koanf:"moderation"`
	Logging    LoggingConfig    `koanf:"logging"`
	API        APIConfig        `koanf:"api"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			URL:      "",
			InMemory: false,
		},
		Auth: AuthConfig{
			JWTSecret: "",
			TokenTTL:  24 * time.Hour,
		},
		Moderation: ModerationConfig{
			AutoHideThreshold: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		API: APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     50,
		},
	}
}

// Load загружает конфигурацию из всех слоев и валидирует ее.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransform превращает MOVINHOS_SERVER_READ_TIMEOUT в server.read_timeout.
// Первый сегмент после префикса считается секцией, остаток - ключом.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate проверяет согласованность загруженной конфигурации.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !c.Database.InMemory && c.Database.URL == "" {
		return errors.New("database.url is required unless database.in_memory is set")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Moderation.AutoHideThreshold < 1 {
		return fmt.Errorf("moderation.auto_hide_threshold must be at least 1, got %d", c.Moderation.AutoHideThreshold)
	}
	if c.API.DefaultPageSize < 1 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("invalid api page size limits: default %d, max %d", c.API.DefaultPageSize, c.API.MaxPageSize)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
