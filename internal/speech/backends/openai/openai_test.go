package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voicenotify/voicenotify/internal/speech/registry"
)

func TestFactoryRequiresAPIKey(t *testing.T) {
	_, err := registry.Backends.Create("openai", map[string]string{})
	if err == nil {
		t.Fatal("Create() without API key returned nil error")
	}
}

func TestSpeakSendsSpeechRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq speechRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		// Six 24kHz samples of silence.
		w.Write(make([]byte, 12))
	}))
	defer server.Close()

	backend, err := registry.Backends.Create("openai", map[string]string{
		"openai_api_key":  "test-key",
		"openai_base_url": server.URL,
		"player_command":  "true",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer backend.Close()

	if err := backend.Speak(context.Background(), "Hello there", ""); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if gotPath != "/audio/speech" {
		t.Errorf("request path = %q, want /audio/speech", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotReq.Input != "Hello there" {
		t.Errorf("request input = %q, want %q", gotReq.Input, "Hello there")
	}
	if gotReq.Voice != "alloy" {
		t.Errorf("request voice = %q, want default alloy", gotReq.Voice)
	}
	if gotReq.ResponseFormat != "pcm" {
		t.Errorf("response_format = %q, want pcm", gotReq.ResponseFormat)
	}
}

func TestResample24to16(t *testing.T) {
	// Six input samples shrink to four.
	in := make([]byte, 12)
	out := resample24to16(in)
	if len(out) != 8 {
		t.Errorf("resampled %d bytes to %d, want 8", len(in), len(out))
	}

	if out := resample24to16(nil); out != nil {
		t.Errorf("resample of empty input = %v, want nil", out)
	}
}
