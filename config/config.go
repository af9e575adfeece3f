package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/tournament-bracket/brackets"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort      int
	UpstreamURL     string
	UpstreamTimeout time.Duration
	ConfirmSecret   string
	ConfirmTTL      time.Duration
	AllowedOrigins  []string
	LogLevel        string

	Spacing      brackets.Spacing
	Theme        string
	SchoolColors map[string]string

	RateLimitEvery time.Duration
	RateLimitBurst int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// RenderContext returns the presentation settings for the bracket builder.
func (c *Config) RenderContext() brackets.RenderContext {
	return brackets.RenderContext{Theme: c.Theme, SchoolColors: c.SchoolColors}
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load() // .env не обязателен

	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	upstream := getenv("UPSTREAM_API_URL")
	if upstream == "" {
		return nil, fmt.Errorf("UPSTREAM_API_URL environment variable is not set")
	}

	secret := getenv("CONFIRM_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("CONFIRM_SECRET environment variable is not set")
	}

	port, err := intVar(getenv, "SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		ServerPort:     port,
		UpstreamURL:    upstream,
		ConfirmSecret:  secret,
		AllowedOrigins: listVar(getenv, "ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:       stringVar(getenv, "LOG_LEVEL", "info"),
		Theme:          stringVar(getenv, "THEME", brackets.ThemeLight),

		R2AccountID:       getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.Theme != brackets.ThemeLight && cfg.Theme != brackets.ThemeDark {
		return nil, fmt.Errorf("THEME must be %q or %q, got %q", brackets.ThemeLight, brackets.ThemeDark, cfg.Theme)
	}

	if cfg.UpstreamTimeout, err = durationVar(getenv, "UPSTREAM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ConfirmTTL, err = durationVar(getenv, "CONFIRM_TTL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitEvery, err = durationVar(getenv, "RATE_LIMIT_EVERY", time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = intVar(getenv, "RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	base, err := intVar(getenv, "SPACING_BASE", brackets.DefaultSpacingBase)
	if err != nil {
		return nil, err
	}
	factor, err := intVar(getenv, "SPACING_FACTOR", brackets.DefaultSpacingFactor)
	if err != nil {
		return nil, err
	}
	if base <= 0 || factor <= 0 {
		return nil, fmt.Errorf("SPACING_BASE and SPACING_FACTOR must be positive")
	}
	cfg.Spacing = brackets.Spacing{Base: base, Factor: factor}

	if cfg.SchoolColors, err = colorsVar(getenv, "SCHOOL_COLORS"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func stringVar(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func durationVar(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func listVar(getenv func(string) string, key string, def []string) []string {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// colorsVar parses "School A=#ff0000,School B=#00ff00".
func colorsVar(getenv func(string) string, key string) (map[string]string, error) {
	colors := make(map[string]string)
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return colors, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		school, color, ok := strings.Cut(pair, "=")
		school, color = strings.TrimSpace(school), strings.TrimSpace(color)
		if !ok || school == "" || color == "" {
			return nil, fmt.Errorf("invalid %s entry %q, expected school=color", key, pair)
		}
		colors[school] = color
	}
	return colors, nil
}
