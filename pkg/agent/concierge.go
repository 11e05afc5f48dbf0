package agent

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/adapter"
	"github.com/simforge/wander/pkg/model"
	"google.golang.org/genai"
)

//go:embed prompt/concierge.md
var conciergePromptRaw string

//go:embed prompt/concierge_ft.md
var conciergeFTPromptRaw string

var (
	conciergePromptTmpl   = template.Must(template.New("concierge").Parse(conciergePromptRaw))
	conciergeFTPromptTmpl = template.Must(template.New("concierge_ft").Parse(conciergeFTPromptRaw))
)

// Concierge answers on behalf of the booking assistant. The prompt
// variant carries the full behavioral instructions; the fine-tuned
// variant assumes the behavior was learned during tuning and only gets
// a light system message.
type Concierge struct {
	llm           adapter.LLM
	variant       model.Variant
	profileDigest string
	temperature   float32
}

type ConciergeOption func(*Concierge)

// WithProfileDigest folds a long-term profile summary into the
// concierge's system prompt.
func WithProfileDigest(digest string) ConciergeOption {
	return func(c *Concierge) {
		c.profileDigest = digest
	}
}

func NewConcierge(llm adapter.LLM, variant model.Variant, opts ...ConciergeOption) (*Concierge, error) {
	if variant != model.VariantPrompt && variant != model.VariantFineTuned {
		return nil, goerr.New("unknown assistant variant", goerr.V("variant", variant))
	}

	c := &Concierge{
		llm:         llm,
		variant:     variant,
		temperature: 0.3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Concierge) Variant() model.Variant {
	return c.variant
}

func (c *Concierge) systemPrompt() (string, error) {
	tmpl := conciergePromptTmpl
	if c.variant == model.VariantFineTuned {
		tmpl = conciergeFTPromptTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"ProfileDigest": c.profileDigest,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render concierge prompt")
	}
	return buf.String(), nil
}

// Respond generates the assistant's next turn from the windowed
// transcript and the retrieved hotel candidates.
func (c *Concierge) Respond(ctx context.Context, turns []model.Turn, hotels []model.HotelCandidate) (string, error) {
	system, err := c.systemPrompt()
	if err != nil {
		return "", err
	}
	system += "\n\nHere are the hotel candidates you MUST choose from:\n" + formatHotels(hotels)

	temperature := c.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, ""),
		Temperature:       &temperature,
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		var role genai.Role = genai.RoleUser
		if turn.Speaker == model.SpeakerAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}

	resp, err := c.llm.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "concierge generation failed", goerr.V("variant", c.variant))
	}

	text := adapter.ResponseText(resp)
	if text == "" {
		return "", goerr.New("concierge generated empty response")
	}

	if c.variant == model.VariantPrompt {
		return sanitizeUtterance(text, 3, false), nil
	}
	return sanitizeUtterance(text, 0, false), nil
}

func formatHotels(hotels []model.HotelCandidate) string {
	if len(hotels) == 0 {
		return "No hotel candidates were found for this query.\n"
	}

	var lines []string
	for _, h := range hotels {
		snippet := "No review snippets."
		if len(h.ReviewSnippets) > 0 {
			n := len(h.ReviewSnippets)
			if n > 2 {
				n = 2
			}
			snippet = strings.Join(h.ReviewSnippets[:n], " | ")
		}
		lines = append(lines, fmt.Sprintf(
			"- [%s] %s (rating: %.1f, price: %.0f/night, location: %s)\n  Reviews: %s",
			h.ID, h.Name, h.Rating, h.PricePerNight, h.Location, snippet))
	}
	return strings.Join(lines, "\n")
}
