package engine

import (
	"context"
	"fmt"
)

// Voice describes an available speaking voice.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// Backend turns notification text into audible speech.
type Backend interface {
	// IsAvailable reports whether the backend can deliver speech right now.
	// It must be cheap and must never panic.
	IsAvailable() bool

	// Speak synthesizes text and blocks until playback completes or fails.
	// An empty voiceID selects the backend's default voice.
	Speak(ctx context.Context, text string, voiceID string) error

	// Voices lists the voices the backend can speak with.
	Voices() []Voice

	// HealthInfo reports diagnostic details for the health endpoint. It
	// must never fail.
	HealthInfo() map[string]string

	// Close releases any resources held by the backend.
	Close() error
}

// SpeechError reports a failed synthesis or playback attempt with a
// human-readable cause.
type SpeechError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *SpeechError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Reason)
}

func (e *SpeechError) Unwrap() error { return e.Err }
