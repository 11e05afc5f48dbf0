package agent

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/adapter"
	"github.com/simforge/wander/pkg/model"
	"google.golang.org/genai"
)

//go:embed prompt/profiler.md
var profilerPromptRaw string

var profilerPromptTmpl = template.Must(template.New("profiler").Parse(profilerPromptRaw))

// Profiler derives a preference profile from one finished conversation.
// The result is merged into the persona's stored profile by the loop;
// the merge never deletes prior preferences absent an explicit
// contradicting value.
type Profiler struct {
	llm adapter.LLM
}

func NewProfiler(llm adapter.LLM) *Profiler {
	return &Profiler{llm: llm}
}

// profileExtraction mirrors the structured output schema. Pointers
// keep unknown (null) distinct from false.
type profileExtraction struct {
	TripType string   `json:"trip_type"`
	BudgetMin *float64 `json:"budget_min"`
	BudgetMax *float64 `json:"budget_max"`
	Currency  string   `json:"currency"`

	WantsCentralLocation   *bool `json:"wants_central_location"`
	WantsLocalNeighborhood *bool `json:"wants_local_neighborhood"`

	PrefersQuiet  *bool `json:"prefers_quiet"`
	PrefersSocial *bool `json:"prefers_social"`

	CaresAboutWifi      *bool `json:"cares_about_wifi"`
	CaresAboutDesk      *bool `json:"cares_about_desk"`
	CaresAboutBreakfast *bool `json:"cares_about_breakfast"`
	CaresAboutParking   *bool `json:"cares_about_parking"`
	CaresAboutGym       *bool `json:"cares_about_gym"`
	CaresAboutRooftop   *bool `json:"cares_about_rooftop"`
	CaresAboutSpa       *bool `json:"cares_about_spa"`

	Foodie   *bool `json:"foodie"`
	Romantic *bool `json:"romantic"`

	PreferredHotels []string `json:"preferred_hotels"`
	RejectedHotels  []string `json:"rejected_hotels"`

	Notes *string `json:"free_form_notes"`
}

// Infer extracts a session profile from the sealed conversation. A
// malformed model response degrades to a notes-only profile rather
// than failing the run.
func (p *Profiler) Infer(ctx context.Context, conv *model.Conversation) (*model.Profile, error) {
	var buf bytes.Buffer
	if err := profilerPromptTmpl.Execute(&buf, map[string]any{
		"PersonaName": string(conv.Persona),
		"Transcript":  RenderTranscript(conv.Turns),
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to render profiler prompt")
	}

	temperature := float32(0.1)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   profileSchema(),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}

	resp, err := p.llm.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "profiler generation failed")
	}

	rawJSON := adapter.ResponseText(resp)
	var data profileExtraction
	if err := json.Unmarshal([]byte(rawJSON), &data); err != nil {
		truncated := rawJSON
		if len(truncated) > 200 {
			truncated = truncated[:200] + "..."
		}
		return &model.Profile{
			PersonaID: string(conv.Persona),
			Sessions:  1,
			Notes:     []string{"profiler output failed to parse: " + truncated},
		}, nil
	}

	profile := &model.Profile{
		PersonaID: string(conv.Persona),
		TripType:  data.TripType,
		BudgetMin: data.BudgetMin,
		BudgetMax: data.BudgetMax,
		Currency:  data.Currency,

		WantsCentralLocation:   data.WantsCentralLocation,
		WantsLocalNeighborhood: data.WantsLocalNeighborhood,
		PrefersQuiet:           data.PrefersQuiet,
		PrefersSocial:          data.PrefersSocial,

		CaresAboutWifi:      data.CaresAboutWifi,
		CaresAboutDesk:      data.CaresAboutDesk,
		CaresAboutBreakfast: data.CaresAboutBreakfast,
		CaresAboutParking:   data.CaresAboutParking,
		CaresAboutGym:       data.CaresAboutGym,
		CaresAboutRooftop:   data.CaresAboutRooftop,
		CaresAboutSpa:       data.CaresAboutSpa,

		Foodie:   data.Foodie,
		Romantic: data.Romantic,

		Sessions: 1,
	}
	for _, h := range data.PreferredHotels {
		if h = strings.TrimSpace(h); h != "" {
			profile.PreferredHotels = append(profile.PreferredHotels, h)
		}
	}
	for _, h := range data.RejectedHotels {
		if h = strings.TrimSpace(h); h != "" {
			profile.RejectedHotels = append(profile.RejectedHotels, h)
		}
	}
	if data.Notes != nil && strings.TrimSpace(*data.Notes) != "" {
		profile.Notes = []string{strings.TrimSpace(*data.Notes)}
	}

	return profile, nil
}

func profileSchema() *genai.Schema {
	boolField := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeBoolean, Description: desc, Nullable: genai.Ptr(true)}
	}
	numberField := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc, Nullable: genai.Ptr(true)}
	}
	stringList := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: desc,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"trip_type": {
				Type:        genai.TypeString,
				Description: "business, romantic, leisure, or unknown",
				Enum:        []string{"business", "romantic", "leisure", "unknown"},
			},
			"budget_min": numberField("Minimum nightly budget, if stated"),
			"budget_max": numberField("Maximum nightly budget, if stated"),
			"currency": {
				Type:        genai.TypeString,
				Description: "Budget currency code, e.g. EUR",
				Nullable:    genai.Ptr(true),
			},
			"wants_central_location":   boolField("Prefers a central location"),
			"wants_local_neighborhood": boolField("Prefers a local, non-touristy neighborhood"),
			"prefers_quiet":            boolField("Prefers a quiet atmosphere"),
			"prefers_social":           boolField("Prefers a social, lively vibe"),
			"cares_about_wifi":         boolField("Cares about Wi-Fi quality"),
			"cares_about_desk":         boolField("Cares about a desk or workspace"),
			"cares_about_breakfast":    boolField("Cares about breakfast"),
			"cares_about_parking":      boolField("Cares about parking"),
			"cares_about_gym":          boolField("Cares about a gym"),
			"cares_about_rooftop":      boolField("Cares about a rooftop or terrace"),
			"cares_about_spa":          boolField("Cares about spa or wellness"),
			"foodie":                   boolField("Cares about restaurants and cafes"),
			"romantic":                 boolField("The trip is romantic"),
			"preferred_hotels":         stringList("Hotel names the traveler liked or chose"),
			"rejected_hotels":          stringList("Hotel names the traveler rejected"),
			"free_form_notes": {
				Type:        genai.TypeString,
				Description: "Other stable preferences worth remembering",
				Nullable:    genai.Ptr(true),
			},
		},
		Required: []string{"trip_type", "preferred_hotels", "rejected_hotels"},
	}
}

// ScrubNotes blanks stored notes that are mere thank-you or compliment
// chatter rather than preferences. Returns how many notes were
// removed.
func ScrubNotes(profile *model.Profile) int {
	kept := profile.Notes[:0]
	removed := 0
	for _, note := range profile.Notes {
		if isChatterNote(note) {
			removed++
			continue
		}
		kept = append(kept, note)
	}
	profile.Notes = kept
	return removed
}

func isChatterNote(note string) bool {
	text := strings.ToLower(note)

	hasThank := strings.Contains(text, "thank")
	hasCompliment := strings.Contains(text, "great") || strings.Contains(text, "good") ||
		strings.Contains(text, "excellent") || strings.Contains(text, "awesome") ||
		strings.Contains(text, "amazing")
	hasReco := strings.Contains(text, "recommendation") || strings.Contains(text, "reccomendation")

	return hasThank || (hasReco && hasCompliment)
}
