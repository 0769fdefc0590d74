package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"hugopiglatin/internal/site"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	ContentDir string
	OutDir     string
	LogLevel   string

	Clean        bool
	WriteJSON    bool
	WriteTokens  bool
	WriteMarkdoc bool

	FrontMatterKeys []string
}

// Default returns the settings used when nothing is set in the environment.
func Default() *Config {
	return &Config{
		ContentDir:      "content",
		OutDir:          "out",
		LogLevel:        "info",
		Clean:           true,
		WriteJSON:       true,
		WriteTokens:     true,
		WriteMarkdoc:    true,
		FrontMatterKeys: []string{"title", "description"},
	}
}

// Load reads the configuration from the environment and validates it.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: load .env: %w", ErrInvalid, err)
	}

	cfg := Default()

	if v := os.Getenv("PIGLATIN_CONTENT_DIR"); v != "" {
		cfg.ContentDir = v
	}
	if v := os.Getenv("PIGLATIN_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("PIGLATIN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("PIGLATIN_FRONT_MATTER_KEYS"); ok {
		cfg.FrontMatterKeys = splitList(v)
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"PIGLATIN_CLEAN", &cfg.Clean},
		{"PIGLATIN_WRITE_JSON", &cfg.WriteJSON},
		{"PIGLATIN_WRITE_TOKENS", &cfg.WriteTokens},
		{"PIGLATIN_WRITE_MARKDOC", &cfg.WriteMarkdoc},
	}
	for _, b := range bools {
		v := os.Getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, b.key, v)
		}
		*b.dst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings. It is exported so callers can re-check after
// applying command-line overrides.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ContentDir) == "" {
		return fmt.Errorf("%w: content directory is required", ErrInvalid)
	}
	if strings.TrimSpace(c.OutDir) == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalid)
	}
	if err := site.CheckDirs(c.ContentDir, c.OutDir); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return level, nil
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
