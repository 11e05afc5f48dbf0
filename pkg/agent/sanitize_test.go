package agent

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/model"
)

func TestCutAtSpeakerMarker(t *testing.T) {
	text := "I'd love a canal view.\nAssistant: Of course! Let me check."
	gt.Equal(t, cutAtSpeakerMarker(text), "I'd love a canal view.")

	gt.Equal(t, cutAtSpeakerMarker("plain reply"), "plain reply")
}

func TestStripRolePrefix(t *testing.T) {
	gt.Equal(t, stripRolePrefix("User: I want wifi"), "I want wifi")
	gt.Equal(t, stripRolePrefix("assistant: Sure thing"), "Sure thing")
	gt.Equal(t, stripRolePrefix("No prefix here"), "No prefix here")
}

func TestClampSentences(t *testing.T) {
	text := "First one. Second one! Third one? Fourth one."

	gt.Equal(t, clampSentences(text, 2), "First one. Second one!")
	gt.Equal(t, clampSentences(text, 0), text)
	gt.Equal(t, clampSentences("No terminator here", 2), "No terminator here")
}

func TestSanitizeUtterance(t *testing.T) {
	raw := "Traveler: I'd like something central. Do you have options? Also cheap please.\nAssistant: Sure!"

	got := sanitizeUtterance(raw, 2, true)
	gt.Equal(t, got, "I'd like something central. Do you have options?")
}

func TestRenderTranscript(t *testing.T) {
	turns := []model.Turn{
		{Speaker: model.SpeakerUser, Text: "Hi there"},
		{Speaker: model.SpeakerAssistant, Text: "Welcome"},
	}

	script := RenderTranscript(turns)
	gt.S(t, script).Contains("Traveler: Hi there")
	gt.S(t, script).Contains("Assistant: Welcome")
}
