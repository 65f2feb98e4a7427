package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/AliAamir1/budsapp/internal/flagx"
	"github.com/AliAamir1/budsapp/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like "15s"
// or as integer nanoseconds. After parsing, values are copied into the runtime
// Config (which uses time.Duration).
type jsonConfig struct {
	APIBaseURL   string         `json:"api_base_url"`
	RealtimeURL  string         `json:"realtime_url"`
	HTTPTimeout  timex.Duration `json:"http_timeout"`
	DatabasePath string         `json:"database_path"`
	LogLevel     string         `json:"log_level"`
	LogFormat    string         `json:"log_format"`
}

// parseJSON overlays Config with values loaded from a JSON file. The file path
// comes from the -c/-config flags; when absent, no JSON is loaded. Read or
// unmarshal errors panic (caller may recover if desired). Empty JSON fields
// leave the current value untouched, so JSON files may be partial.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc jsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RealtimeURL != "" {
		cfg.RealtimeURL = jc.RealtimeURL
	}
	if jc.HTTPTimeout.Duration != 0 {
		cfg.HTTPTimeout = time.Duration(jc.HTTPTimeout.Duration)
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
}
