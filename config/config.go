package config

import (
	"strconv"
	"strings"

	"github.com/pitabwire/frame/config"

	"github.com/voicenotify/voicenotify/pkg/events"
)

// NotifyConfig holds configuration for the notification voice service.
type NotifyConfig struct {
	config.ConfigurationDefault

	TTSBackends  string `envDefault:"elevenlabs,piper,say,gtranslate" env:"TTS_BACKENDS"`
	DefaultVoice string `envDefault:""                                env:"DEFAULT_VOICE"`
	DefaultAgent string `envDefault:"pai"                             env:"DEFAULT_AGENT"`
	SettingsFile string `envDefault:"./voicenotify.json"              env:"SETTINGS_FILE"`
	PersonaDir   string `envDefault:"./personas"                      env:"PERSONA_DIR"`

	PiperBinaryPath string `envDefault:"piper"                          env:"PIPER_BINARY_PATH"`
	PiperModelPath  string `envDefault:"./models/en_US-amy-medium.onnx" env:"PIPER_MODEL_PATH"`
	PiperSampleRate int    `envDefault:"22050"                          env:"PIPER_SAMPLE_RATE"`

	ElevenLabsAPIKey  string `envDefault:""                          env:"ELEVENLABS_API_KEY"`
	ElevenLabsModel   string `envDefault:"eleven_multilingual_v2"    env:"ELEVENLABS_MODEL"`
	ElevenLabsBaseURL string `envDefault:"https://api.elevenlabs.io" env:"ELEVENLABS_BASE_URL"`

	OpenAIAPIKey  string `envDefault:""                          env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envDefault:"https://api.openai.com/v1" env:"OPENAI_BASE_URL"`
	OpenAIModel   string `envDefault:"tts-1"                     env:"OPENAI_MODEL"`

	GoogleAPIKey  string `envDefault:""                                   env:"GOOGLE_API_KEY"`
	GoogleBaseURL string `envDefault:"https://texttospeech.googleapis.com" env:"GOOGLE_BASE_URL"`

	SayCommand        string `envDefault:""                             env:"SAY_COMMAND"`
	GTranslateBaseURL string `envDefault:"https://translate.google.com" env:"GTRANSLATE_BASE_URL"`
	PlayerCommand     string `envDefault:""                             env:"PLAYER_COMMAND"`

	CORSOrigin         string `envDefault:"http://localhost:3000" env:"CORS_ORIGIN"`
	RateLimitCount     int    `envDefault:"10"                    env:"RATE_LIMIT_COUNT"`
	RateLimitWindowSec int    `envDefault:"60"                    env:"RATE_LIMIT_WINDOW_SEC"`
	QueueCapacity      int    `envDefault:"256"                   env:"QUEUE_CAPACITY"`

	HookURL        string `envDefault:""     env:"HOOK_URL"`
	HookAuthType   string `envDefault:"none" env:"HOOK_AUTH_TYPE"`
	HookAuthSecret string `envDefault:""     env:"HOOK_AUTH_SECRET"`
	HookTimeoutSec int    `envDefault:"10"   env:"HOOK_TIMEOUT_SEC"`
	HookEvents     string `envDefault:""     env:"HOOK_EVENTS"`

	CBFailThreshold   int `envDefault:"5"  env:"CB_FAILURE_THRESHOLD"`
	CBResetTimeoutSec int `envDefault:"60" env:"CB_RESET_TIMEOUT_SEC"`
}

// BackendPreferences returns the ordered backend preference list.
func (c *NotifyConfig) BackendPreferences() []string {
	parts := strings.Split(c.TTSBackends, ",")
	prefs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}
	return prefs
}

// BackendSettings flattens the per-backend tunables into the config map the
// backend factories read.
func (c *NotifyConfig) BackendSettings() map[string]string {
	return map[string]string{
		"binary_path":         c.PiperBinaryPath,
		"model_path":          c.PiperModelPath,
		"sample_rate":         strconv.Itoa(c.PiperSampleRate),
		"elevenlabs_api_key":  c.ElevenLabsAPIKey,
		"elevenlabs_model":    c.ElevenLabsModel,
		"elevenlabs_base_url": c.ElevenLabsBaseURL,
		"openai_api_key":      c.OpenAIAPIKey,
		"openai_base_url":     c.OpenAIBaseURL,
		"openai_model":        c.OpenAIModel,
		"google_api_key":      c.GoogleAPIKey,
		"google_base_url":     c.GoogleBaseURL,
		"say_command":         c.SayCommand,
		"gtranslate_base_url": c.GTranslateBaseURL,
		"player_command":      c.PlayerCommand,
	}
}

// HookEventTypes parses the comma-separated hook event filter. Empty means
// the hook receives every event type.
func (c *NotifyConfig) HookEventTypes() []events.EventType {
	if strings.TrimSpace(c.HookEvents) == "" {
		return nil
	}
	parts := strings.Split(c.HookEvents, ",")
	types := make([]events.EventType, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			types = append(types, events.EventType(p))
		}
	}
	return types
}
