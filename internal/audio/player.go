package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
	oto "github.com/hajimehoshi/oto/v2"
)

// Format identifies the container of a synthesized audio clip.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// Player plays short audio clips through a platform media player process and
// waits for the process to exit. When no player binary is installed and the
// clip is MP3, playback falls back to an in-process decoder.
type Player struct {
	command string // explicit player binary, empty means auto-detect
}

// NewPlayer creates a player. An empty command selects a platform default.
func NewPlayer(command string) *Player {
	return &Player{command: command}
}

// Play writes the clip to a temp file, hands it to the resolved player
// command and blocks until playback completes or the context is cancelled.
func (p *Player) Play(ctx context.Context, data []byte, format Format) error {
	if len(data) == 0 {
		return errors.New("no audio data")
	}

	f, err := os.CreateTemp("", "voicenotify-*."+string(format))
	if err != nil {
		return fmt.Errorf("create temp audio file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp audio file: %w", err)
	}

	cmd, ok := p.playerCommand(ctx, path, format)
	if !ok {
		if format == FormatMP3 {
			return p.playEmbedded(ctx, data)
		}
		return fmt.Errorf("no audio player found for %s playback", format)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("audio player %s: %w: %s",
			filepath.Base(cmd.Path), err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// playerCommand resolves the player process for the clip at path. The
// explicit override always wins; otherwise candidates are probed per
// platform and format.
func (p *Player) playerCommand(ctx context.Context, path string, format Format) (*exec.Cmd, bool) {
	if p.command != "" {
		return exec.CommandContext(ctx, p.command, path), true
	}

	switch runtime.GOOS {
	case "darwin":
		if bin, err := exec.LookPath("afplay"); err == nil {
			return exec.CommandContext(ctx, bin, path), true
		}

	case "windows":
		// SoundPlayer only understands WAV; MP3 uses the embedded decoder.
		if format == FormatWAV {
			if bin, err := exec.LookPath("powershell"); err == nil {
				script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", path)
				return exec.CommandContext(ctx, bin, "-NoProfile", "-Command", script), true
			}
		}

	default:
		var candidates [][]string
		if format == FormatMP3 {
			candidates = [][]string{
				{"mpg123", "-q"},
				{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
			}
		} else {
			candidates = [][]string{
				{"aplay", "-q"},
				{"paplay"},
				{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
			}
		}
		for _, c := range candidates {
			if bin, err := exec.LookPath(c[0]); err == nil {
				args := append(append([]string{}, c[1:]...), path)
				return exec.CommandContext(ctx, bin, args...), true
			}
		}
	}

	return nil, false
}

// playEmbedded decodes and plays an MP3 clip in-process.
func (p *Player) playEmbedded(ctx context.Context, data []byte) error {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("mp3 decoder: %w", err)
	}

	otoCtx, ready, err := oto.NewContext(decoder.SampleRate(), 2, 2)
	if err != nil {
		return fmt.Errorf("oto context: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(decoder)
	player.Play()
	defer player.Close()

	ticker := time.NewTicker(15 * time.Millisecond)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return nil
}
