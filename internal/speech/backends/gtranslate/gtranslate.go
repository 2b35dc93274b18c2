package gtranslate

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/hegedustibor/htgo-tts/voices"

	"github.com/voicenotify/voicenotify/internal/audio"
	"github.com/voicenotify/voicenotify/internal/speech/backends/restutil"
	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/internal/speech/registry"
)

// chunkSize is the longest text fragment the translate endpoint accepts.
const chunkSize = 200

func init() {
	registry.Backends.Register("gtranslate", func(config map[string]string) (engine.Backend, error) {
		baseURL := config["gtranslate_base_url"]
		if baseURL == "" {
			baseURL = "https://translate.google.com"
		}
		return &GTranslate{
			baseURL: baseURL,
			player:  audio.NewPlayer(config["player_command"]),
		}, nil
	})
}

// GTranslate speaks through the public Google Translate TTS endpoint. It
// needs no credentials. Longer messages are fetched in chunks and the MP3
// fragments concatenated before playback.
type GTranslate struct {
	baseURL string
	player  *audio.Player
}

// IsAvailable always reports true; the endpoint needs no credentials.
func (g *GTranslate) IsAvailable() bool {
	return true
}

// Speak fetches MP3 audio for the text and blocks until playback completes.
// The voice ID is a language code such as "en" or "es".
func (g *GTranslate) Speak(ctx context.Context, text string, voiceID string) error {
	if voiceID == "" {
		voiceID = voices.English
	}

	runes := []rune(text)
	var clip bytes.Buffer

	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk, err := g.fetchChunk(ctx, string(runes[start:end]), voiceID)
		if err != nil {
			return &engine.SpeechError{Backend: "gtranslate", Reason: "synthesis failed", Err: err}
		}
		clip.Write(chunk)
	}

	if err := g.player.Play(ctx, clip.Bytes(), audio.FormatMP3); err != nil {
		return &engine.SpeechError{Backend: "gtranslate", Reason: "playback failed", Err: err}
	}

	return nil
}

func (g *GTranslate) fetchChunk(ctx context.Context, text, voice string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("q", text)
	params.Set("tl", voice)
	params.Set("total", "1")
	params.Set("idx", "0")
	params.Set("textlen", strconv.Itoa(len([]rune(text))))

	headers := map[string]string{"User-Agent": "Mozilla/5.0"}

	body, err := restutil.DoRaw(ctx, "GET", g.baseURL+"/translate_tts?"+params.Encode(), headers, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return io.ReadAll(body)
}

// Voices returns the supported language codes.
func (g *GTranslate) Voices() []engine.Voice {
	return []engine.Voice{
		{ID: voices.English, Name: "English (US)", Language: voices.English},
		{ID: voices.EnglishUK, Name: "English (UK)", Language: voices.EnglishUK},
		{ID: voices.Spanish, Name: "Spanish", Language: voices.Spanish},
		{ID: voices.French, Name: "French", Language: voices.French},
		{ID: voices.German, Name: "German", Language: voices.German},
		{ID: voices.Portuguese, Name: "Portuguese", Language: voices.Portuguese},
	}
}

// HealthInfo reports the endpoint in use.
func (g *GTranslate) HealthInfo() map[string]string {
	return map[string]string{
		"api_url":   g.baseURL,
		"available": "true",
	}
}

// Close releases backend resources.
func (g *GTranslate) Close() error {
	return nil
}
