package agent_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/agent"
	"github.com/simforge/wander/pkg/model"
)

func TestTravelerRejectsUnknownPersona(t *testing.T) {
	_, err := agent.NewTraveler(&mockLLM{}, model.Persona("wanderer"))
	gt.Error(t, err)
}

func TestTravelerNextUtterance(t *testing.T) {
	llm := &mockLLM{responses: []string{"Does the Urban Hub have a quiet room available?"}}
	traveler, err := agent.NewTraveler(llm, model.PersonaMinimalist)
	gt.NoError(t, err)

	turns := []model.Turn{
		{Speaker: model.SpeakerUser, Text: "I need a hotel with a desk."},
		{Speaker: model.SpeakerAssistant, Text: "The Urban Hub has a proper workspace."},
	}
	text, err := traveler.NextUtterance(context.Background(), turns)
	gt.NoError(t, err)
	gt.Equal(t, text, "Does the Urban Hub have a quiet room available?")

	// the transcript is rendered into the instruction
	instruction := llm.lastContents[0].Parts[0].Text
	gt.S(t, instruction).Contains("Traveler: I need a hotel with a desk.")
	gt.S(t, instruction).Contains("Assistant: The Urban Hub has a proper workspace.")
}

func TestTravelerSanitizesScriptedOutput(t *testing.T) {
	llm := &mockLLM{responses: []string{
		"User: Is breakfast included?\nAssistant: Yes it is!\nUser: Great.",
	}}
	traveler, err := agent.NewTraveler(llm, model.PersonaExplorer)
	gt.NoError(t, err)

	turns := []model.Turn{{Speaker: model.SpeakerUser, Text: "Hi."}}
	text, err := traveler.NextUtterance(context.Background(), turns)
	gt.NoError(t, err)
	gt.Equal(t, text, "Is breakfast included?")
}

func TestTravelerEmptyResponseIsError(t *testing.T) {
	llm := &mockLLM{responses: []string{""}}
	traveler, err := agent.NewTraveler(llm, model.PersonaExplorer)
	gt.NoError(t, err)

	turns := []model.Turn{{Speaker: model.SpeakerUser, Text: "Hi."}}
	_, err = traveler.NextUtterance(context.Background(), turns)
	gt.Error(t, err)
}
