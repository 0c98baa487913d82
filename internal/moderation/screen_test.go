package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreen_Flag(t *testing.T) {
	screen := NewScreen([]string{"Spam Link", "  free crypto  ", ""}, nil)

	testCases := []struct {
		name    string
		text    string
		matched string
		flagged bool
	}{
		{name: "clean text", text: "hello there", flagged: false},
		{name: "exact phrase", text: "check this spam link now", matched: "spam link", flagged: true},
		{name: "case insensitive", text: "FREE CRYPTO for everyone", matched: "free crypto", flagged: true},
		{name: "empty text", text: "", flagged: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			matched, flagged := screen.Flag(tc.text)
			assert.Equal(t, tc.flagged, flagged)
			assert.Equal(t, tc.matched, matched)
		})
	}
}

func TestScreen_EmptyPhraseListFlagsNothing(t *testing.T) {
	screen := NewScreen(nil, nil)

	_, flagged := screen.Flag("anything at all")
	assert.False(t, flagged)
}
