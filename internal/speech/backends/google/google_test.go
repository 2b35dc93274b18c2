package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voicenotify/voicenotify/internal/audio"
	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/internal/speech/registry"
)

func TestFactoryRequiresAPIKey(t *testing.T) {
	_, err := registry.Backends.Create("google", map[string]string{})
	if err == nil {
		t.Error("expected error when API key is missing")
	}
}

func TestSpeakSendsSynthesisRequest(t *testing.T) {
	var gotPath, gotKey string
	var gotReq synthesisRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(synthesisResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("PCMDATA")),
		})
	}))
	defer ts.Close()

	g := NewGoogle("test-key", ts.URL, audio.NewPlayer("true"))
	if err := g.Speak(context.Background(), "Build complete", ""); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if gotPath != "/v1/text:synthesize" {
		t.Errorf("path = %q, want %q", gotPath, "/v1/text:synthesize")
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want %q", gotKey, "test-key")
	}
	if gotReq.Input.Text != "Build complete" {
		t.Errorf("text = %q, want %q", gotReq.Input.Text, "Build complete")
	}
	if gotReq.Voice.Name != defaultVoice {
		t.Errorf("voice = %q, want default %q", gotReq.Voice.Name, defaultVoice)
	}
	if gotReq.AudioConfig.AudioEncoding != "LINEAR16" {
		t.Errorf("encoding = %q, want LINEAR16", gotReq.AudioConfig.AudioEncoding)
	}
}

func TestSpeakReportsAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	g := NewGoogle("bad-key", ts.URL, audio.NewPlayer("true"))
	err := g.Speak(context.Background(), "hello", "")
	if err == nil {
		t.Fatal("expected error for HTTP 403")
	}

	var speechErr *engine.SpeechError
	if !errors.As(err, &speechErr) {
		t.Fatalf("error type = %T, want *engine.SpeechError", err)
	}
	if speechErr.Backend != "google" {
		t.Errorf("backend = %q, want %q", speechErr.Backend, "google")
	}
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		voice string
		want  string
	}{
		{"en-US-Neural2-A", "en-US"},
		{"de-DE-Wavenet-B", "de-DE"},
		{"weird", "en-US"},
	}
	for _, tt := range tests {
		if got := languageCode(tt.voice); got != tt.want {
			t.Errorf("languageCode(%q) = %q, want %q", tt.voice, got, tt.want)
		}
	}
}
