package say

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/internal/speech/registry"
)

func init() {
	registry.Backends.Register("say", func(config map[string]string) (engine.Backend, error) {
		return NewSay(config["say_command"]), nil
	})
}

// Say speaks through the operating system's native speech command. There is
// no separate player process; the speech command plays audio itself and
// Speak waits for its exit.
type Say struct {
	override string // explicit command, empty means platform default
}

// NewSay creates an OS-native speech backend.
func NewSay(override string) *Say {
	return &Say{override: override}
}

// IsAvailable reports whether a platform speech command is installed.
func (s *Say) IsAvailable() bool {
	_, err := s.lookup()
	return err == nil
}

func (s *Say) lookup() (string, error) {
	if s.override != "" {
		return exec.LookPath(s.override)
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.LookPath("say")
	case "windows":
		return exec.LookPath("powershell")
	default:
		if bin, err := exec.LookPath("spd-say"); err == nil {
			return bin, nil
		}
		return exec.LookPath("espeak")
	}
}

// Speak runs the speech command with the text and blocks until it exits.
func (s *Say) Speak(ctx context.Context, text string, voiceID string) error {
	bin, err := s.lookup()
	if err != nil {
		return &engine.SpeechError{Backend: "say", Reason: "no speech command found", Err: err}
	}

	cmd := s.speakCommand(ctx, bin, text, voiceID)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &engine.SpeechError{
			Backend: "say",
			Reason:  "speech command failed",
			Err:     fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())),
		}
	}

	return nil
}

func (s *Say) speakCommand(ctx context.Context, bin, text, voiceID string) *exec.Cmd {
	if s.override != "" {
		return exec.CommandContext(ctx, bin, text)
	}

	switch runtime.GOOS {
	case "darwin":
		args := []string{}
		if voiceID != "" {
			args = append(args, "-v", voiceID)
		}
		args = append(args, text)
		return exec.CommandContext(ctx, bin, args...)

	case "windows":
		// Single quotes in the script are doubled; sanitized text cannot
		// carry any other PowerShell metacharacters.
		script := fmt.Sprintf(
			"Add-Type -AssemblyName System.Speech; (New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak('%s')",
			strings.ReplaceAll(text, "'", "''"))
		return exec.CommandContext(ctx, bin, "-NoProfile", "-Command", script)

	default:
		if strings.HasSuffix(bin, "spd-say") {
			return exec.CommandContext(ctx, bin, "--wait", text)
		}
		args := []string{}
		if voiceID != "" {
			args = append(args, "-v", voiceID)
		}
		args = append(args, text)
		return exec.CommandContext(ctx, bin, args...)
	}
}

// Voices returns the system default voice. Installed OS voices are selected
// by name through the voice ID.
func (s *Say) Voices() []engine.Voice {
	return []engine.Voice{
		{ID: "default", Name: "System Default", Language: "en"},
	}
}

// HealthInfo reports the resolved speech command and current availability.
func (s *Say) HealthInfo() map[string]string {
	info := map[string]string{
		"platform":  runtime.GOOS,
		"available": strconv.FormatBool(s.IsAvailable()),
	}
	if bin, err := s.lookup(); err == nil {
		info["command"] = bin
	}
	return info
}

// Close releases backend resources.
func (s *Say) Close() error {
	return nil
}
