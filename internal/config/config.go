package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the API server configuration.
type Config struct {
	ServerPort         int
	DatabasePath       string
	JWTSecret          string
	AllowedOrigins     []string
	DeadlineCron       string
	DeadlineWindowDays int
	Environment        string
	LogLevel           string
}

// ClientConfig holds the terminal client configuration.
type ClientConfig struct {
	APIURL      string
	SessionPath string
}

// IsProduction reports whether the server runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "5001"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	window, err := strconv.Atoi(getEnv("DEADLINE_WINDOW_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEADLINE_WINDOW_DAYS: %w", err)
	}
	if window <= 0 {
		return nil, fmt.Errorf("DEADLINE_WINDOW_DAYS must be positive, got %d", window)
	}

	cfg := &Config{
		ServerPort:         port,
		DatabasePath:       getEnv("DATABASE_PATH", "./confspotter.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AllowedOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DeadlineCron:       getEnv("DEADLINE_CRON", "0 8 * * *"),
		DeadlineWindowDays: window,
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "confspotter-dev-secret"
	}

	return cfg, nil
}

// LoadClient loads the terminal client configuration.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	sessionPath := getEnv("CONFSPOTTER_SESSION", "")
	if sessionPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		sessionPath = filepath.Join(home, ".confspotter", "session.json")
	}

	return &ClientConfig{
		APIURL:      strings.TrimRight(getEnv("CONFSPOTTER_API_URL", "http://localhost:5001"), "/"),
		SessionPath: sessionPath,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
