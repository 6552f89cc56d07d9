package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/backoffice/internal/format"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Backoffice"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"backoffice"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	}

	Auth struct {
		Secret   string        `envconfig:"JWT_SECRET"`
		TokenTTL time.Duration `envconfig:"JWT_TTL" default:"30m"`
	}

	// API is how the terminal tools reach the backend.
	API struct {
		BaseURL string        `envconfig:"API_URL" default:"http://localhost:8080/api/v1"`
		Token   string        `envconfig:"API_TOKEN"`
		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"15s"`
	}

	Cache struct {
		Path string `envconfig:"CACHE_PATH"`
	}

	Display struct {
		Locale   string `envconfig:"LOCALE" default:"de-DE"`
		Currency string `envconfig:"CURRENCY" default:"USD"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// CachePath is CACHE_PATH, or backoffice/cache.db under the user cache dir.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache dir: %w", err)
	}

	return filepath.Join(dir, "backoffice", "cache.db"), nil
}

func (c *Config) Formatter() (*format.Formatter, error) {
	return format.Parse(c.Display.Locale, c.Display.Currency)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
