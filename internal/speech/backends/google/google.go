package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/voicenotify/voicenotify/internal/audio"
	"github.com/voicenotify/voicenotify/internal/speech/backends/restutil"
	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/internal/speech/registry"
)

const (
	defaultVoice = "en-US-Neural2-A"
	sampleRate   = 16000
)

func init() {
	registry.Backends.Register("google", func(config map[string]string) (engine.Backend, error) {
		apiKey := config["google_api_key"]
		if apiKey == "" {
			apiKey = config["api_key"]
		}
		if apiKey == "" {
			return nil, fmt.Errorf("google API key required (set google_api_key in config)")
		}
		baseURL := config["google_base_url"]
		if baseURL == "" {
			baseURL = "https://texttospeech.googleapis.com"
		}
		return NewGoogle(apiKey, baseURL, audio.NewPlayer(config["player_command"])), nil
	})
}

type synthesisRequest struct {
	Input       synthesisInput       `json:"input"`
	Voice       synthesisVoice       `json:"voice"`
	AudioConfig synthesisAudioConfig `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type synthesisVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type synthesisAudioConfig struct {
	AudioEncoding   string `json:"audioEncoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
}

type synthesisResponse struct {
	AudioContent string `json:"audioContent"` // base64-encoded
}

// Google speaks notifications through the Google Cloud Text-to-Speech REST
// API and plays the returned PCM locally.
type Google struct {
	apiKey  string
	baseURL string
	player  *audio.Player
}

// NewGoogle creates a Google Cloud TTS backend.
func NewGoogle(apiKey, baseURL string, player *audio.Player) *Google {
	return &Google{apiKey: apiKey, baseURL: baseURL, player: player}
}

// IsAvailable reports whether an API key is configured.
func (g *Google) IsAvailable() bool {
	return g.apiKey != ""
}

// Speak synthesizes text and blocks until local playback finishes.
func (g *Google) Speak(ctx context.Context, text string, voiceID string) error {
	if voiceID == "" {
		voiceID = defaultVoice
	}

	req := synthesisRequest{
		Input: synthesisInput{Text: text},
		Voice: synthesisVoice{
			LanguageCode: languageCode(voiceID),
			Name:         voiceID,
		},
		AudioConfig: synthesisAudioConfig{
			AudioEncoding:   "LINEAR16",
			SampleRateHertz: sampleRate,
		},
	}

	apiURL := g.baseURL + "/v1/text:synthesize?key=" + g.apiKey

	var resp synthesisResponse
	if err := restutil.DoJSON(ctx, http.MethodPost, apiURL, nil, req, &resp); err != nil {
		return &engine.SpeechError{Backend: "google", Reason: "synthesis failed", Err: err}
	}

	pcm, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return &engine.SpeechError{Backend: "google", Reason: "decode audio", Err: err}
	}

	var wav bytes.Buffer
	wav.Grow(44 + len(pcm))
	if err := audio.WriteWAVHeader(&wav, sampleRate, len(pcm)); err != nil {
		return &engine.SpeechError{Backend: "google", Reason: "wrap audio", Err: err}
	}
	wav.Write(pcm)

	if err := g.player.Play(ctx, wav.Bytes(), audio.FormatWAV); err != nil {
		return &engine.SpeechError{Backend: "google", Reason: "playback failed", Err: err}
	}
	return nil
}

// Voices lists a few stock Google Cloud voices.
func (g *Google) Voices() []engine.Voice {
	return []engine.Voice{
		{ID: "en-US-Neural2-A", Name: "Neural2 A (Female)", Language: "en-US"},
		{ID: "en-US-Neural2-C", Name: "Neural2 C (Female)", Language: "en-US"},
		{ID: "en-US-Studio-M", Name: "Studio M (Male)", Language: "en-US"},
		{ID: "en-US-Studio-O", Name: "Studio O (Female)", Language: "en-US"},
	}
}

// HealthInfo reports diagnostic details. It never fails.
func (g *Google) HealthInfo() map[string]string {
	return map[string]string{
		"api_url":     g.baseURL,
		"api_key_set": fmt.Sprintf("%t", g.apiKey != ""),
		"available":   fmt.Sprintf("%t", g.IsAvailable()),
	}
}

// Close releases nothing; the backend is stateless.
func (g *Google) Close() error {
	return nil
}

// languageCode extracts the BCP-47 prefix from voice names like
// "en-US-Neural2-A".
func languageCode(voiceID string) string {
	parts := strings.SplitN(voiceID, "-", 3)
	if len(parts) < 2 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}
