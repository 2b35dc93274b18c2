package gateway

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMessageLen is the longest message accepted for speaking.
const MaxMessageLen = 500

// Characters that must never reach a backend that shells out.
const forbiddenChars = ";&|><`${}[]\\"

var errEmptyMessage = errors.New("message is required")

// Validate rejects messages that are empty, oversized, or carry shell
// metacharacters. It never modifies the message.
func Validate(message string) error {
	if strings.TrimSpace(message) == "" {
		return errEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return fmt.Errorf("message exceeds %d characters", MaxMessageLen)
	}
	if i := strings.IndexAny(message, forbiddenChars); i >= 0 {
		return fmt.Errorf("message contains forbidden character %q", rune(message[i]))
	}
	return nil
}

// Sanitize strips characters outside letters, digits, whitespace, and basic
// punctuation, then truncates to MaxMessageLen runes. Applying it twice
// yields the same result as applying it once.
func Sanitize(message string) string {
	var b strings.Builder
	b.Grow(len(message))
	kept := 0
	for _, r := range message {
		if !allowedRune(r) {
			continue
		}
		if kept == MaxMessageLen {
			break
		}
		b.WriteRune(r)
		kept++
	}
	return b.String()
}

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == ',' || r == '!' || r == '?' || r == '\'' || r == '-':
		return true
	default:
		return unicode.IsSpace(r)
	}
}
