/*
Package config loads server configuration from the environment.

PURPOSE:
  One struct for every runtime knob. Values come from the process
  environment, optionally seeded from a .env file in the working directory.
  Command-line flags in cmd/server override Port and DBPath.

VARIABLES:
  PORT            HTTP listen port                 (8080)
  DB_PATH         SQLite database file             (./data/coinboard.db)
  JWT_SECRET      HMAC key for admin tokens        (dev default, change it)
  ADMIN_PASSWORD  Admin login password             (admin)
  TOKEN_TTL       Admin token lifetime             (24h)
  CORS_ORIGINS    Comma-separated allowed origins
  STATIC_DIR      Built frontend to serve at /     (./web/dist)
  LOG_LEVEL       logrus level                     (info)
  LOG_FORMAT      text | json                      (text)
*/
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DevJWTSecret is the fallback signing key. It is logged as a warning when
// used.
const DevJWTSecret = "dev-secret-change-in-production"

type Config struct {
	HTTP     HTTPConfig
	Database DBConfig
	Auth     AuthConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Port        int      `env:"PORT" env-default:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:3000,http://localhost:8080"`
	StaticDir   string   `env:"STATIC_DIR" env-default:"./web/dist"`
}

type DBConfig struct {
	Path string `env:"DB_PATH" env-default:"./data/coinboard.db"`
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET" env-default:"dev-secret-change-in-production"`
	AdminPassword string        `env:"ADMIN_PASSWORD" env-default:"admin"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" env-default:"24h"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}
	return &cfg, nil
}

// NewLogger builds a logrus logger from the log settings. Unknown levels
// fall back to info.
func NewLogger(c LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	if out == nil {
		out = os.Stdout
	}
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(c.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return log
}
