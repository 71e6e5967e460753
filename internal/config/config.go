package config

import (
	"os"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DatabaseURL      string
	SessionSecret    string
	SessionIssuer    string
	MediaStoragePath string
	MigrationsDir    string
	AdminEmail       string
	AdminPassword    string
	CorsOrigins      []string
}

func Load() Config {
	return Config{
		DatabaseURL:      mustEnv("DATABASE_URL"),
		SessionSecret:    mustEnv("SESSION_SECRET"),
		SessionIssuer:    envOr("SESSION_ISSUER", "digilib"),
		MediaStoragePath: envOr("MEDIA_STORAGE_PATH", "storage/media"),
		MigrationsDir:    envOr("MIGRATIONS_DIR", "migrations"),
		AdminEmail:       envOr("ADMIN_EMAIL", ""),
		AdminPassword:    envOr("ADMIN_PASSWORD", ""),
		CorsOrigins:      parseCSV(envOr("CORS_ORIGINS", "")),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
