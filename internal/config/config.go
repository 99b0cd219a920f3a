// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the server settings.
type Config struct {
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	Port             string
	AppEnv           string
	PublicURL        string
	SessionTTL       time.Duration
	WorkspaceIdleTTL time.Duration
	MigrationsDir    string
	CORSOrigins      []string
	RateLimit        int
}

var required = []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET"}

// Load reads the given env files (".env" when none are named) into the
// process environment without overriding it, then resolves every setting.
// Missing env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("WORKSPACE_IDLE_TTL", "30m")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("RATE_LIMIT", 60)

	var missing []string
	for _, k := range required {
		if v.GetString(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL %q", v.GetString("SESSION_TTL"))
	}

	idle, err := time.ParseDuration(v.GetString("WORKSPACE_IDLE_TTL"))
	if err != nil || idle <= 0 {
		return Config{}, fmt.Errorf("invalid WORKSPACE_IDLE_TTL %q", v.GetString("WORKSPACE_IDLE_TTL"))
	}

	rate := v.GetInt("RATE_LIMIT")
	if rate <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT %q", v.GetString("RATE_LIMIT"))
	}

	return Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		RedisURL:         v.GetString("REDIS_URL"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		Port:             v.GetString("PORT"),
		AppEnv:           v.GetString("APP_ENV"),
		PublicURL:        strings.TrimRight(v.GetString("PUBLIC_URL"), "/"),
		SessionTTL:       ttl,
		WorkspaceIdleTTL: idle,
		MigrationsDir:    v.GetString("MIGRATIONS_DIR"),
		CORSOrigins:      splitList(v.GetString("CORS_ORIGINS")),
		RateLimit:        rate,
	}, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "" || c.AppEnv == "development"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
