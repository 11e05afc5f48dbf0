package agent

import (
	"regexp"
	"strings"

	"github.com/simforge/wander/pkg/model"
)

// Small chat models drift into narrating both sides of the dialogue.
// The helpers here cut a generated utterance back to a single turn.

var speakerMarkers = []string{
	"\nUser:", "\nAssistant:", "\nTraveler:",
	"\nUSER:", "\nASSISTANT:", "\nTRAVELER:",
	"\nuser:", "\nassistant:", "\ntraveler:",
}

var rolePrefixes = []string{"user:", "assistant:", "traveler:", "system:"}

var sentenceSplit = regexp.MustCompile(`(?:[.!?])\s+`)

// cutAtSpeakerMarker drops everything from the first point where the
// model starts re-narrating roles.
func cutAtSpeakerMarker(text string) string {
	cut := len(text)
	for _, m := range speakerMarkers {
		if idx := strings.Index(text, m); idx != -1 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(text[:cut])
}

// stripRolePrefix removes a leading "User:"-style prefix.
func stripRolePrefix(text string) string {
	lower := strings.ToLower(text)
	for _, p := range rolePrefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(text[len(p):])
		}
	}
	return text
}

// clampSentences keeps at most n sentences.
func clampSentences(text string, n int) string {
	if n <= 0 {
		return text
	}
	var sentences []string
	rest := text
	for len(sentences) < n {
		loc := sentenceSplit.FindStringIndex(rest)
		if loc == nil {
			sentences = append(sentences, rest)
			rest = ""
			break
		}
		sentences = append(sentences, rest[:loc[0]+1])
		rest = rest[loc[1]:]
	}
	return strings.TrimSpace(strings.Join(sentences, " "))
}

// sanitizeUtterance applies the full cleanup for one speaker's turn.
// firstLineOnly additionally truncates to the first line, which keeps
// traveler turns from turning into scripts.
func sanitizeUtterance(text string, maxSentences int, firstLineOnly bool) string {
	cleaned := cutAtSpeakerMarker(strings.TrimSpace(text))
	if firstLineOnly {
		if idx := strings.IndexByte(cleaned, '\n'); idx != -1 {
			cleaned = strings.TrimSpace(cleaned[:idx])
		}
	}
	cleaned = stripRolePrefix(cleaned)
	return clampSentences(cleaned, maxSentences)
}

// RenderTranscript formats turns as a plain "Traveler:/Assistant:"
// script for prompts that consume the dialogue as text.
func RenderTranscript(turns []model.Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		if t.Speaker == model.SpeakerUser {
			sb.WriteString("Traveler: ")
		} else {
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(t.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
