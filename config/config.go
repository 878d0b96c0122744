package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config 进程级配置，全部来自环境变量（开发时可放 .env）
type Config struct {
	Port           string
	Env            string
	DBDriver       string // mysql / postgres / sqlite
	DatabaseURL    string
	RedisURL       string // 为空单节点运行
	JWTSecret      string
	AllowedOrigins []string
	NodeID         string
	LogMode        string
	LogLevel       string
}

const (
	devDatabaseURL = "file:localconnect.db?cache=shared&_fk=1"
	devJWTSecret   = "dev-insecure-secret"
)

// Load 读取环境变量；生产环境缺少 DATABASE_URL / JWT_SECRET 时返回错误
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		Env:         getEnv("ENV", "development"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		NodeID:      os.Getenv("NODE_ID"),
		LogMode:     os.Getenv("LOG_MODE"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, errors.New("DB_DRIVER must be one of mysql, postgres, sqlite")
	}

	if cfg.IsProduction() {
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == "" {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		if cfg.LogMode == "" {
			cfg.LogMode = "production"
		}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == "sqlite" {
		cfg.DatabaseURL = devDatabaseURL
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
