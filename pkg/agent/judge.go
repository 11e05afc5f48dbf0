package agent

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/adapter"
	"github.com/simforge/wander/pkg/filter"
	"github.com/simforge/wander/pkg/model"
	"google.golang.org/genai"
)

//go:embed prompt/judge.md
var judgePromptRaw string

var judgePromptTmpl = template.Must(template.New("judge").Parse(judgePromptRaw))

// Lexical fast paths on the last user message. These fire before any
// model call and make common closings deterministic.
var bookedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bbook it\b`),
	regexp.MustCompile(`\bi'?ll book\b`),
	regexp.MustCompile(`\bi'?ll go with\b`),
	regexp.MustCompile(`\bi'?ll take it\b`),
	regexp.MustCompile(`\bthat works\b`),
	regexp.MustCompile(`\bthis works\b`),
	regexp.MustCompile(`\bperfect\b`),
	regexp.MustCompile(`\bthat sounds great\b`),
	regexp.MustCompile(`\bthat'?s all i need`),
	regexp.MustCompile(`\bthank you, that'?s all\b`),
	regexp.MustCompile(`\bi'?m done\b`),
}

var declinedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bi'?ll look elsewhere\b`),
	regexp.MustCompile(`\bsearch elsewhere\b`),
	regexp.MustCompile(`\bno thanks\b`),
	regexp.MustCompile(`\bnone of these\b`),
	regexp.MustCompile(`\bconversation over\b`),
	regexp.MustCompile(`\bi'?m done here\b`),
}

// Judge is the termination oracle: it inspects the running transcript
// and decides whether the negotiation has concluded. With a nil LLM it
// degrades to the rule-based heuristics alone.
type Judge struct {
	llm adapter.LLM

	// StallSimilarity and StallWindow control the no-progress check:
	// the last StallWindow user turns all pairwise-similar above the
	// threshold means the conversation is circling.
	StallSimilarity float64
	StallWindow     int
}

func NewJudge(llm adapter.LLM) *Judge {
	return &Judge{
		llm:             llm,
		StallSimilarity: 0.9,
		StallWindow:     3,
	}
}

// Evaluate classifies the transcript so far. A conversation already
// judged booked stays booked: re-evaluating an unchanged outcome never
// reverses a confirmed booking.
func (j *Judge) Evaluate(ctx context.Context, conv *model.Conversation) (*model.Verdict, error) {
	if prev := conv.LastVerdict(); prev != nil && prev.Outcome == model.OutcomeBooked {
		v := *prev
		v.EvaluatedAt = time.Now()
		return &v, nil
	}

	if len(conv.Turns) == 0 {
		return openVerdict("empty transcript"), nil
	}

	if last := conv.LastTurn(); last.Speaker == model.SpeakerUser {
		if v := lexicalVerdict(last.Text); v != nil {
			return v, nil
		}
	}

	if j.isStalled(conv) {
		return &model.Verdict{
			Outcome:     model.OutcomeStalled,
			Satisfied:   false,
			Confidence:  0.8,
			Rationale:   "recent user turns repeat without new constraints or decisions",
			EvaluatedAt: time.Now(),
		}, nil
	}

	if j.llm == nil {
		return openVerdict("no closing phrase detected"), nil
	}

	return j.classify(ctx, conv)
}

func openVerdict(rationale string) *model.Verdict {
	return &model.Verdict{
		Outcome:     model.OutcomeOpen,
		Satisfied:   false,
		Confidence:  1.0,
		Rationale:   rationale,
		EvaluatedAt: time.Now(),
	}
}

func lexicalVerdict(lastUserText string) *model.Verdict {
	text := normalizeForMatch(lastUserText)

	for _, pat := range bookedPatterns {
		if pat.MatchString(text) {
			return &model.Verdict{
				Outcome:     model.OutcomeBooked,
				Satisfied:   true,
				Confidence:  1.0,
				Rationale:   "user closed with a booking confirmation phrase",
				EvaluatedAt: time.Now(),
			}
		}
	}
	for _, pat := range declinedPatterns {
		if pat.MatchString(text) {
			return &model.Verdict{
				Outcome:     model.OutcomeDeclined,
				Satisfied:   false,
				Confidence:  1.0,
				Rationale:   "user closed with a decline phrase",
				EvaluatedAt: time.Now(),
			}
		}
	}
	return nil
}

func normalizeForMatch(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "’", "'")
}

func (j *Judge) isStalled(conv *model.Conversation) bool {
	userTexts := conv.TextsBySpeaker(model.SpeakerUser)
	if len(userTexts) < j.StallWindow || j.StallWindow < 2 {
		return false
	}

	recent := userTexts[len(userTexts)-j.StallWindow:]
	for i := 0; i < len(recent); i++ {
		for k := i + 1; k < len(recent); k++ {
			if filter.Similarity(recent[i], recent[k]) < j.StallSimilarity {
				return false
			}
		}
	}
	return true
}

// classify runs the rubric prompt with structured JSON output.
func (j *Judge) classify(ctx context.Context, conv *model.Conversation) (*model.Verdict, error) {
	var buf bytes.Buffer
	if err := judgePromptTmpl.Execute(&buf, map[string]any{
		"Transcript": RenderTranscript(conv.Turns),
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to render judge prompt")
	}

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"outcome": {
					Type:        genai.TypeString,
					Description: "Where the negotiation stands",
					Enum:        []string{"booked", "declined", "stalled", "open"},
				},
				"satisfied": {
					Type:        genai.TypeBoolean,
					Description: "Whether the user expressed satisfaction",
				},
				"confidence": {
					Type:        genai.TypeNumber,
					Description: "Confidence in the classification, 0.0 to 1.0",
				},
				"rationale": {
					Type:        genai.TypeString,
					Description: "Brief explanation of the judgment",
				},
			},
			Required: []string{"outcome", "satisfied", "confidence", "rationale"},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}

	resp, err := j.llm.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "judge generation failed")
	}

	rawJSON := adapter.ResponseText(resp)
	var data struct {
		Outcome    string  `json:"outcome"`
		Satisfied  bool    `json:"satisfied"`
		Confidence float64 `json:"confidence"`
		Rationale  string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &data); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal judge verdict", goerr.V("json", rawJSON))
	}

	outcome := model.Outcome(data.Outcome)
	switch outcome {
	case model.OutcomeBooked, model.OutcomeDeclined, model.OutcomeStalled, model.OutcomeOpen:
	default:
		outcome = model.OutcomeOpen
	}

	return &model.Verdict{
		Outcome:     outcome,
		Satisfied:   data.Satisfied,
		Confidence:  data.Confidence,
		Rationale:   data.Rationale,
		EvaluatedAt: time.Now(),
	}, nil
}
