package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	minSecretLength = 32
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	JWT      JWTConfig      `yaml:"jwt"`
	HTTP     HTTPConfig     `yaml:"http"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"TASKMANAGER_PORT"`
	Host            string        `yaml:"host" env:"TASKMANAGER_HOST"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver         string        `yaml:"driver" env:"TASKMANAGER_DB_DRIVER"` // "postgres" или "sqlite"
	URL            string        `yaml:"url" env:"TASKMANAGER_DB_URL"`
	Path           string        `yaml:"path" env:"TASKMANAGER_DB_PATH"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Migrate        bool          `yaml:"migrate" env:"TASKMANAGER_DB_MIGRATE"`
}

type LoggingConfig struct {
	Development bool   `yaml:"development" env:"TASKMANAGER_LOG_DEVELOPMENT"`
	Level       string `yaml:"level" env:"TASKMANAGER_LOG_LEVEL"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret" env:"TASKMANAGER_JWT_SECRET"`
	Issuer   string        `yaml:"issuer" env:"TASKMANAGER_JWT_ISSUER"`
	Audience string        `yaml:"audience" env:"TASKMANAGER_JWT_AUDIENCE"`
	TTL      time.Duration `yaml:"ttl" env:"TASKMANAGER_JWT_TTL"`
}

type HTTPConfig struct {
	RateLimit   int      `yaml:"rate_limit"`
	CORSOrigins []string `yaml:"cors_origins" env:"TASKMANAGER_CORS_ORIGINS" envSeparator:","`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Path:           "taskmanager.db",
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
			ConnectTimeout: 30 * time.Second,
			Migrate:        true,
		},
		JWT: JWTConfig{
			TTL: 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			RateLimit:   100,
			CORSOrigins: []string{"*"},
		},
	}
}

// Load читает yaml-файл поверх значений по умолчанию, затем применяет переменные окружения.
// Отсутствующий файл не ошибка: конфигурация может прийти целиком из окружения.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
		default:
			defer file.Close()
			decoder := yaml.NewDecoder(file)
			if err := decoder.Decode(&cfg); err != nil {
				return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.URL) == "" {
			return fmt.Errorf("database.url обязателен для драйвера %s", DriverPostgres)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database.path обязателен для драйвера %s", DriverSQLite)
		}
	default:
		return fmt.Errorf("неизвестный драйвер базы данных %q", c.Database.Driver)
	}

	if len(c.JWT.Secret) < minSecretLength {
		return fmt.Errorf("jwt.secret должен быть не короче %d байт", minSecretLength)
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl должен быть положительным")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
