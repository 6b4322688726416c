package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/akyairhashvil/tasktrack/internal/util"
)

// Config holds runtime settings resolved from the environment.
type Config struct {
	DBPath     string
	DBDriver   string
	Addr       string
	Timezone   string
	LogLevel   string
	LogFormat  string
	ReportsDir string
}

// Load reads an optional .env file and then the TASKTRACK_* environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		DBPath:     env("DB_PATH", filepath.Join(util.DataDir(AppName), DBFileName)),
		DBDriver:   env("DB_DRIVER", DefaultDriver),
		Addr:       env("ADDR", DefaultAddr),
		Timezone:   env("TIMEZONE", DefaultTimezone),
		LogLevel:   env("LOG_LEVEL", "info"),
		LogFormat:  env("LOG_FORMAT", "text"),
		ReportsDir: env("REPORTS_DIR", util.ReportsDir(AppName)),
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db path is empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the display timezone used for day grouping and dates.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func env(key, fallback string) string {
	return util.EnvOrDefault(EnvPrefix+key, fallback)
}
