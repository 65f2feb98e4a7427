package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.APIBaseURL)
	assert.Equal(t, "ws://127.0.0.1:8080/realtime", cfg.RealtimeURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "budsapp.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("BUDSAPP_API_URL", "https://api.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	// untouched fields keep defaults
	assert.Equal(t, "budsapp.db", cfg.DatabasePath)
}

func TestParseJSON_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_base_url":"https://json.example.com","http_timeout":"30s"}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"budsapp", "-c", path}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)

	assert.Equal(t, "https://json.example.com", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "ws://127.0.0.1:8080/realtime", cfg.RealtimeURL)
}

func TestParseJSON_NoFlag_NoChange(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"budsapp"}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.APIBaseURL)
}
