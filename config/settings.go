package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Settings is the optional JSON settings file. File values fill in where
// the corresponding environment variables are unset.
type Settings struct {
	Backends     []string          `json:"backends,omitempty"`
	DefaultVoice string            `json:"default_voice,omitempty"`
	Port         int               `json:"port,omitempty"`
	RateLimit    RateLimitSettings `json:"rate_limit"`
}

// RateLimitSettings tunes the fixed-window limiter.
type RateLimitSettings struct {
	Count     int `json:"count,omitempty"`
	WindowSec int `json:"window_sec,omitempty"`
}

// LoadSettings reads the settings file. A missing or malformed file is never
// fatal: malformed content logs a warning and the zero value is returned so
// callers fall back to defaults.
func LoadSettings(path string) Settings {
	var s Settings
	if path == "" {
		return s
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("settings file unreadable, using defaults",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return s
	}

	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Warn("settings file malformed, using defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return Settings{}
	}
	return s
}

// BridgePort exports the file's port for frame's HTTP server when HTTP_PORT
// is unset. Call before loading the frame configuration.
func (s Settings) BridgePort() {
	if s.Port > 0 && os.Getenv("HTTP_PORT") == "" {
		os.Setenv("HTTP_PORT", strconv.Itoa(s.Port))
	}
}

// Apply overlays file values onto config fields whose environment variables
// are unset. Environment always wins over the file.
func (s Settings) Apply(cfg *NotifyConfig) {
	if len(s.Backends) > 0 && os.Getenv("TTS_BACKENDS") == "" {
		cfg.TTSBackends = strings.Join(s.Backends, ",")
	}
	if s.DefaultVoice != "" && os.Getenv("DEFAULT_VOICE") == "" {
		cfg.DefaultVoice = s.DefaultVoice
	}
	if s.RateLimit.Count > 0 && os.Getenv("RATE_LIMIT_COUNT") == "" {
		cfg.RateLimitCount = s.RateLimit.Count
	}
	if s.RateLimit.WindowSec > 0 && os.Getenv("RATE_LIMIT_WINDOW_SEC") == "" {
		cfg.RateLimitWindowSec = s.RateLimit.WindowSec
	}
}
