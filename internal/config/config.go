package config

import (
	"os"
	"strings"
	"time"
)

// Config holds runtime settings for the StudyBuds CLI.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API.
//   - RealtimeURL: websocket endpoint of the realtime change feed.
//   - HTTPTimeout: per-request timeout for REST calls.
//   - DatabasePath: path of the local sqlite store (credentials + session).
//   - LogLevel, LogFormat: logging settings (debug/info/warn/error, text/json).
type Config struct {
	APIBaseURL   string
	RealtimeURL  string
	HTTPTimeout  time.Duration
	DatabasePath string
	LogLevel     string
	LogFormat    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.RealtimeURL = "ws://127.0.0.1:8080/realtime"
	c.HTTPTimeout = 15 * time.Second
	c.DatabasePath = "budsapp.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// environment variables, JSON (if present) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}

func parseEnv(cfg *Config) {
	cfg.APIBaseURL = getEnvDefault("BUDSAPP_API_URL", cfg.APIBaseURL)
	cfg.RealtimeURL = getEnvDefault("BUDSAPP_REALTIME_URL", cfg.RealtimeURL)
	cfg.DatabasePath = getEnvDefault("BUDSAPP_DB_PATH", cfg.DatabasePath)
	cfg.LogLevel = getEnvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvDefault("LOG_FORMAT", cfg.LogFormat)
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
