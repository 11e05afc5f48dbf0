package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/model"
)

func TestConversationAlternation(t *testing.T) {
	conv := model.NewConversation(model.PersonaMinimalist, model.VariantPrompt, false, "Amsterdam")

	// first turn must be the user
	_, err := conv.Append(model.SpeakerAssistant, "Welcome!")
	gt.Error(t, err)

	_, err = conv.Append(model.SpeakerUser, "Hi, I need a hotel.")
	gt.NoError(t, err)

	// same speaker twice is rejected
	_, err = conv.Append(model.SpeakerUser, "Hello?")
	gt.Error(t, err)

	_, err = conv.Append(model.SpeakerAssistant, "Happy to help.")
	gt.NoError(t, err)

	gt.A(t, conv.Turns).Length(2)
	gt.Equal(t, conv.Turns[0].Index, 0)
	gt.Equal(t, conv.Turns[1].Index, 1)
}

func TestConversationSeal(t *testing.T) {
	conv := model.NewConversation(model.PersonaExplorer, model.VariantFineTuned, true, "Amsterdam")
	_, err := conv.Append(model.SpeakerUser, "Hi")
	gt.NoError(t, err)

	conv.Seal(model.ReasonBooked)
	gt.True(t, conv.Sealed())
	gt.Equal(t, conv.Reason, model.ReasonBooked)
	gt.False(t, conv.EndedAt.IsZero())

	// sealed conversations reject mutation
	_, err = conv.Append(model.SpeakerAssistant, "late reply")
	gt.Error(t, err)
	gt.Error(t, conv.AddVerdict(model.Verdict{Outcome: model.OutcomeOpen}))

	// sealing again does not change the reason
	conv.Seal(model.ReasonDeclined)
	gt.Equal(t, conv.Reason, model.ReasonBooked)
}

func TestConversationAccessors(t *testing.T) {
	conv := model.NewConversation(model.PersonaMinimalist, model.VariantPrompt, false, "Amsterdam")

	gt.V(t, conv.LastTurn()).Nil()
	gt.V(t, conv.LastVerdict()).Nil()

	for i, text := range []string{"one", "two", "three"} {
		speaker := model.SpeakerUser
		if i%2 == 1 {
			speaker = model.SpeakerAssistant
		}
		_, err := conv.Append(speaker, text)
		gt.NoError(t, err)
	}

	gt.Equal(t, conv.LastTurn().Text, "three")
	gt.A(t, conv.TextsBySpeaker(model.SpeakerUser)).Length(2)
	gt.A(t, conv.TextsBySpeaker(model.SpeakerAssistant)).Length(1)

	gt.NoError(t, conv.AddVerdict(model.Verdict{Outcome: model.OutcomeOpen}))
	gt.NoError(t, conv.AddVerdict(model.Verdict{Outcome: model.OutcomeBooked}))
	gt.Equal(t, conv.LastVerdict().Outcome, model.OutcomeBooked)
}

func TestOutcomeTerminal(t *testing.T) {
	gt.True(t, model.OutcomeBooked.Terminal())
	gt.True(t, model.OutcomeDeclined.Terminal())
	gt.True(t, model.OutcomeStalled.Terminal())
	gt.False(t, model.OutcomeOpen.Terminal())

	gt.Equal(t, model.OutcomeBooked.Reason(), model.ReasonBooked)
	gt.Equal(t, model.OutcomeDeclined.Reason(), model.ReasonDeclined)
	gt.Equal(t, model.OutcomeStalled.Reason(), model.ReasonStalled)
}

func TestSpeakerOther(t *testing.T) {
	gt.Equal(t, model.SpeakerUser.Other(), model.SpeakerAssistant)
	gt.Equal(t, model.SpeakerAssistant.Other(), model.SpeakerUser)
}
