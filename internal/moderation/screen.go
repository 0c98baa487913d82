// Package moderation screens inbound text and reacts to violations through
// the automated ban entry point.
package moderation

import (
	"log/slog"
	"strings"
)

// Screen flags messages containing any configured blocked phrase. Matching
// is case-insensitive substring search; an empty phrase list flags nothing.
type Screen struct {
	phrases []string
	log     *slog.Logger
}

// NewScreen builds a Screen from the configured phrase list.
func NewScreen(phrases []string, log *slog.Logger) *Screen {
	if log == nil {
		log = slog.Default()
	}

	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			cleaned = append(cleaned, p)
		}
	}

	return &Screen{phrases: cleaned, log: log}
}

// Flag returns the first blocked phrase found in text, if any.
func (s *Screen) Flag(text string) (string, bool) {
	if s == nil || len(s.phrases) == 0 {
		return "", false
	}

	lowered := strings.ToLower(text)
	for _, phrase := range s.phrases {
		if strings.Contains(lowered, phrase) {
			return phrase, true
		}
	}

	return "", false
}
