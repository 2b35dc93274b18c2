package openai

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

// The speech API returns 24kHz PCM; playback goes out at 16kHz after
// downsampling.
const playbackSampleRate = 16000

func init() {
	registry.Backends.Register("openai", func(config map[string]string) (engine.Backend, error) {
		apiKey := config["openai_api_key"]
		if apiKey == "" {
			apiKey = config["api_key"]
		}
		if apiKey == "" {
			return nil, fmt.Errorf("openai API key required (set openai_api_key in config)")
		}
		baseURL := config["openai_base_url"]
		if baseURL == "" {
			baseURL = config["base_url"]
		}
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		model := config["openai_model"]
		if model == "" {
			model = "tts-1"
		}
		return &OpenAI{
			apiKey:  apiKey,
			baseURL: baseURL,
			model:   model,
			player:  audio.NewPlayer(config["player_command"]),
		}, nil
	})
}

// OpenAI speaks through the OpenAI-compatible speech API.
type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	player  *audio.Player
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// IsAvailable reports whether an API key is configured.
func (o *OpenAI) IsAvailable() bool {
	return o.apiKey != ""
}

// Speak synthesizes text and blocks until playback completes.
func (o *OpenAI) Speak(ctx context.Context, text string, voiceID string) error {
	if voiceID == "" {
		voiceID = "alloy"
	}

	reqBody := speechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          voiceID,
		ResponseFormat: "pcm",
	}
	reqJSON, _ := json.Marshal(reqBody)

	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
		"Content-Type":  "application/json",
	}

	body, err := restutil.DoRaw(ctx, "POST", o.baseURL+"/audio/speech", headers, bytes.NewReader(reqJSON))
	if err != nil {
		return &engine.SpeechError{Backend: "openai", Reason: "synthesis failed", Err: err}
	}
	defer body.Close()

	// pcm format returns 24kHz 16-bit mono; downsample before wrapping.
	pcm24, err := io.ReadAll(body)
	if err != nil {
		return &engine.SpeechError{Backend: "openai", Reason: "read audio", Err: err}
	}
	pcm16 := resample24to16(pcm24)

	var wav bytes.Buffer
	wav.Grow(44 + len(pcm16))
	if err := audio.WriteWAVHeader(&wav, playbackSampleRate, len(pcm16)); err != nil {
		return &engine.SpeechError{Backend: "openai", Reason: "wrap audio", Err: err}
	}
	wav.Write(pcm16)

	if err := o.player.Play(ctx, wav.Bytes(), audio.FormatWAV); err != nil {
		return &engine.SpeechError{Backend: "openai", Reason: "playback failed", Err: err}
	}

	return nil
}

// Voices returns the stock OpenAI voices.
func (o *OpenAI) Voices() []engine.Voice {
	return []engine.Voice{
		{ID: "alloy", Name: "Alloy", Language: "en"},
		{ID: "echo", Name: "Echo", Language: "en"},
		{ID: "fable", Name: "Fable", Language: "en"},
		{ID: "onyx", Name: "Onyx", Language: "en"},
		{ID: "nova", Name: "Nova", Language: "en"},
		{ID: "shimmer", Name: "Shimmer", Language: "en"},
	}
}

// HealthInfo reports the API endpoint and current availability.
func (o *OpenAI) HealthInfo() map[string]string {
	return map[string]string{
		"api_url":     o.baseURL,
		"model":       o.model,
		"api_key_set": strconv.FormatBool(o.apiKey != ""),
		"available":   strconv.FormatBool(o.IsAvailable()),
	}
}

// Close releases backend resources.
func (o *OpenAI) Close() error {
	return nil
}
