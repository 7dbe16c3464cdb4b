// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Defaults are tuned for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/keyxmakerx/portfolio/internal/password"
)

// devAdminPassword is the fallback admin password outside production.
const devAdminPassword = "admin"

// Config holds all application configuration. Populated from environment
// variables at startup and passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 4000).
	Port int

	// BaseURL is the public-facing URL, also the default CORS origin.
	BaseURL string

	// StaticDir optionally points at the built admin/public UI. Empty disables
	// static serving.
	StaticDir string

	// CORSOrigins lists origins allowed to call the API cross-origin.
	CORSOrigins []string

	Storage StorageConfig
	Auth    AuthConfig
	Upload  UploadConfig
}

// StorageConfig locates the flat JSON files and the uploads tree.
type StorageConfig struct {
	// ProjectsFile holds the array of projects.
	ProjectsFile string

	// StoriesFile holds the array of stories.
	StoriesFile string

	// DBFile holds categories, messages, banned IPs, about, contact and the
	// admin password hash.
	DBFile string

	// UploadsDir is the root of every persisted media file.
	UploadsDir string
}

// AuthConfig holds admin authentication settings.
type AuthConfig struct {
	// DefaultAdminPassword seeds adminPasswordHash when db.json has none.
	DefaultAdminPassword string

	// JWTSecret signs admin bearer tokens.
	JWTSecret string

	// TokenTTL is how long an admin token stays valid.
	TokenTTL time.Duration
}

// UploadConfig holds file upload settings.
type UploadConfig struct {
	// MaxSize is the maximum upload file size in bytes.
	MaxSize int64
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error when production is missing required secrets.
func Load() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		Port:      getEnvInt("PORT", 4000),
		BaseURL:   getEnv("BASE_URL", "http://localhost:4000"),
		StaticDir: getEnv("STATIC_DIR", ""),

		Storage: StorageConfig{
			ProjectsFile: getEnv("PROJECTS_FILE", filepath.Join(dataDir, "projects.json")),
			StoriesFile:  getEnv("STORIES_FILE", filepath.Join(dataDir, "stories.json")),
			DBFile:       getEnv("DB_FILE", filepath.Join(dataDir, "db.json")),
			UploadsDir:   getEnv("UPLOADS_DIR", "./uploads"),
		},

		Auth: AuthConfig{
			DefaultAdminPassword: getEnv("ADMIN_PASSWORD", ""),
			JWTSecret:            getEnv("JWT_SECRET", ""),
			TokenTTL:             getEnvDuration("TOKEN_TTL", 12*time.Hour),
		},

		Upload: UploadConfig{
			MaxSize: getEnvInt64("MAX_UPLOAD_SIZE", 50*1024*1024), // 50MB, videos included
		},
	}
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", []string{cfg.BaseURL})

	if cfg.IsProduction() {
		if len(cfg.Auth.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if cfg.Auth.DefaultAdminPassword == "" || cfg.Auth.DefaultAdminPassword == devAdminPassword {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set to a non-default value in production")
		}
	}

	// Seeding hashes this with bcrypt whenever db.json has no hash.
	if len(cfg.Auth.DefaultAdminPassword) > password.MaxLength {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes", password.MaxLength)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-key-do-not-use-in-production!!"
	}
	if cfg.Auth.DefaultAdminPassword == "" {
		cfg.Auth.DefaultAdminPassword = devAdminPassword
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true for "production" or "prod", case-insensitively.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvInt64 reads an int64 env var or returns the default.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "12h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var, dropping blank entries.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
