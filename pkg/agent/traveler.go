package agent

import (
	"bytes"
	"context"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/adapter"
	"github.com/simforge/wander/pkg/model"
	"google.golang.org/genai"
)

//go:embed prompt/traveler.md
var travelerPromptRaw string

var travelerPromptTmpl = template.Must(template.New("traveler").Parse(travelerPromptRaw))

// PersonaDescriptions are the behavioral profiles governing the
// simulated traveler's conversational style.
var PersonaDescriptions = map[model.Persona]string{
	model.PersonaMinimalist: `You are efficient, pragmatic, and dislike small talk.
You value time and want a hotel that fits your constraints quickly.
You ask a few clear questions and then decide.
You prefer concise, factual answers rather than long explanations.`,
	model.PersonaExplorer: `You are curious and high in openness.
You care a lot about atmosphere, uniqueness, and local experiences.
You tend to ask several follow-up questions about ambiance, neighborhood, and special features.
You may consider multiple options before deciding and enjoy a bit of conversation.`,
}

// Traveler produces the simulated user's next utterance. It embodies a
// persona; long-term profile context is never given to it, only to the
// concierge.
type Traveler struct {
	llm         adapter.LLM
	persona     model.Persona
	description string
	temperature float32
}

func NewTraveler(llm adapter.LLM, persona model.Persona) (*Traveler, error) {
	desc, ok := PersonaDescriptions[persona]
	if !ok {
		return nil, goerr.New("unknown persona", goerr.V("persona", persona))
	}
	return &Traveler{
		llm:         llm,
		persona:     persona,
		description: desc,
		temperature: 0.2,
	}, nil
}

func (t *Traveler) Persona() model.Persona {
	return t.persona
}

func (t *Traveler) systemPrompt() (string, error) {
	var buf bytes.Buffer
	if err := travelerPromptTmpl.Execute(&buf, map[string]any{
		"PersonaDescription": t.description,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render traveler prompt")
	}
	return buf.String(), nil
}

// NextUtterance generates the traveler's next turn from the windowed
// transcript.
func (t *Traveler) NextUtterance(ctx context.Context, turns []model.Turn) (string, error) {
	system, err := t.systemPrompt()
	if err != nil {
		return "", err
	}

	instruction := "Here is the conversation so far:\n\n" +
		RenderTranscript(turns) + "\n" +
		"Now write ONLY the NEXT thing the traveler would say.\n" +
		"- Do NOT write any assistant lines.\n" +
		"- Do NOT write a dialogue transcript.\n" +
		"- One or two sentences max.\n" +
		"- No prefixes like 'User:' or 'Assistant:'."

	temperature := t.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, ""),
		Temperature:       &temperature,
	}
	contents := []*genai.Content{
		genai.NewContentFromText(instruction, genai.RoleUser),
	}

	resp, err := t.llm.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "traveler generation failed")
	}

	text := adapter.ResponseText(resp)
	if text == "" {
		return "", goerr.New("traveler generated empty response")
	}
	return sanitizeUtterance(text, 2, true), nil
}
