package piper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/voicenotify/voicenotify/internal/audio"
	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/internal/speech/registry"
)

const defaultSampleRate = 22050

func init() {
	registry.Backends.Register("piper", func(config map[string]string) (engine.Backend, error) {
		binaryPath := config["binary_path"]
		if binaryPath == "" {
			binaryPath = "piper"
		}
		modelPath := config["model_path"]
		if modelPath == "" {
			modelPath = "./models/en_US-amy-medium.onnx"
		}
		sampleRate := defaultSampleRate
		if v := config["sample_rate"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("piper sample_rate %q: %w", v, err)
			}
			sampleRate = n
		}
		return NewPiper(binaryPath, modelPath, sampleRate, audio.NewPlayer(config["player_command"])), nil
	})
}

// Piper speaks through the local Piper neural TTS binary. Synthesis writes
// raw PCM to stdout, which is wrapped in a WAV header and handed to the
// system audio player.
type Piper struct {
	binaryPath string
	modelPath  string
	sampleRate int
	player     *audio.Player
}

// NewPiper creates a Piper backend.
func NewPiper(binaryPath, modelPath string, sampleRate int, player *audio.Player) *Piper {
	return &Piper{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		sampleRate: sampleRate,
		player:     player,
	}
}

// IsAvailable reports whether the binary and the voice model are present.
func (p *Piper) IsAvailable() bool {
	if _, err := exec.LookPath(p.binaryPath); err != nil {
		return false
	}
	if _, err := os.Stat(p.modelPath); err != nil {
		return false
	}
	return true
}

// Speak synthesizes text and blocks until the player process exits. The
// voice is fixed by the loaded model, so voiceID is ignored.
func (p *Piper) Speak(ctx context.Context, text string, _ string) error {
	cmd := exec.CommandContext(ctx, p.binaryPath,
		"--model", p.modelPath,
		"--output-raw",
	)

	cmd.Stdin = bytes.NewBufferString(text)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &engine.SpeechError{
			Backend: "piper",
			Reason:  "synthesis failed",
			Err:     fmt.Errorf("%w: %s", err, stderr.String()),
		}
	}

	var wav bytes.Buffer
	wav.Grow(44 + stdout.Len())
	if err := audio.WriteWAVHeader(&wav, p.sampleRate, stdout.Len()); err != nil {
		return &engine.SpeechError{Backend: "piper", Reason: "wrap audio", Err: err}
	}
	wav.Write(stdout.Bytes())

	if err := p.player.Play(ctx, wav.Bytes(), audio.FormatWAV); err != nil {
		return &engine.SpeechError{Backend: "piper", Reason: "playback failed", Err: err}
	}

	return nil
}

// Voices returns the single voice baked into the loaded model.
func (p *Piper) Voices() []engine.Voice {
	return []engine.Voice{
		{ID: "default", Name: "Default", Language: "en-US"},
	}
}

// HealthInfo reports the configured paths and current availability.
func (p *Piper) HealthInfo() map[string]string {
	return map[string]string{
		"binary":      p.binaryPath,
		"model":       p.modelPath,
		"sample_rate": strconv.Itoa(p.sampleRate),
		"available":   strconv.FormatBool(p.IsAvailable()),
	}
}

// Close releases backend resources.
func (p *Piper) Close() error {
	return nil
}
