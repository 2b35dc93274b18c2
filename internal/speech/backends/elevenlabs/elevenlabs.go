package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/voicenotify/voicenotify/internal/audio"
	"github.com/voicenotify/voicenotify/internal/speech/backends/restutil"
	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/internal/speech/registry"
)

const defaultVoice = "21m00Tcm4TlvDq8ikWAM" // Rachel

func init() {
	registry.Backends.Register("elevenlabs", func(config map[string]string) (engine.Backend, error) {
		apiKey := config["elevenlabs_api_key"]
		if apiKey == "" {
			apiKey = config["api_key"]
		}
		if apiKey == "" {
			return nil, fmt.Errorf("elevenlabs API key required (set elevenlabs_api_key in config)")
		}
		model := config["elevenlabs_model"]
		if model == "" {
			model = "eleven_multilingual_v2"
		}
		baseURL := config["elevenlabs_base_url"]
		if baseURL == "" {
			baseURL = "https://api.elevenlabs.io"
		}
		return &ElevenLabs{
			apiKey:  apiKey,
			model:   model,
			baseURL: baseURL,
			player:  audio.NewPlayer(config["player_command"]),
		}, nil
	})
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ElevenLabs speaks through the ElevenLabs REST API. Synthesis returns
// compressed MP3 which is handed to the audio player.
type ElevenLabs struct {
	apiKey  string
	model   string
	baseURL string
	player  *audio.Player
}

// IsAvailable reports whether an API key is configured.
func (e *ElevenLabs) IsAvailable() bool {
	return e.apiKey != ""
}

// Speak synthesizes text and blocks until playback completes.
func (e *ElevenLabs) Speak(ctx context.Context, text string, voiceID string) error {
	if voiceID == "" {
		voiceID = defaultVoice
	}

	apiURL := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_44100_128", e.baseURL, voiceID)

	headers := map[string]string{
		"xi-api-key":   e.apiKey,
		"Content-Type": "application/json",
	}

	req := synthesisRequest{
		Text:    text,
		ModelID: e.model,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}

	body, err := restutil.DoRaw(ctx, "POST", apiURL, headers, marshalJSON(req))
	if err != nil {
		return &engine.SpeechError{Backend: "elevenlabs", Reason: "synthesis failed", Err: err}
	}
	defer body.Close()

	clip, err := io.ReadAll(body)
	if err != nil {
		return &engine.SpeechError{Backend: "elevenlabs", Reason: "read audio", Err: err}
	}

	if err := e.player.Play(ctx, clip, audio.FormatMP3); err != nil {
		return &engine.SpeechError{Backend: "elevenlabs", Reason: "playback failed", Err: err}
	}

	return nil
}

// Voices returns the stock ElevenLabs voices.
func (e *ElevenLabs) Voices() []engine.Voice {
	return []engine.Voice{
		{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Language: "en"},
		{ID: "AZnzlk1XvdvUeBnXmlld", Name: "Domi", Language: "en"},
		{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Bella", Language: "en"},
		{ID: "ErXwobaYiN019PkySvjV", Name: "Antoni", Language: "en"},
	}
}

// HealthInfo reports the API endpoint and current availability.
func (e *ElevenLabs) HealthInfo() map[string]string {
	return map[string]string{
		"api_url":     e.baseURL,
		"model":       e.model,
		"api_key_set": strconv.FormatBool(e.apiKey != ""),
		"available":   strconv.FormatBool(e.IsAvailable()),
	}
}

// Close releases backend resources.
func (e *ElevenLabs) Close() error {
	return nil
}

func marshalJSON(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}
