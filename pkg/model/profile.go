package model

import (
	"fmt"
	"strings"
	"time"
)

// Profile is the long-term preference profile for a persona, persisted
// across sessions. Boolean preferences are tri-state: nil means
// unknown. Lists are de-duplicated on merge; notes are append-only.
type Profile struct {
	PersonaID string `json:"persona_id" firestore:"persona_id"`

	// trip context
	TripType string `json:"trip_type,omitempty" firestore:"trip_type,omitempty"`

	// budget
	BudgetMin *float64 `json:"budget_min,omitempty" firestore:"budget_min,omitempty"`
	BudgetMax *float64 `json:"budget_max,omitempty" firestore:"budget_max,omitempty"`
	Currency  string   `json:"currency,omitempty" firestore:"currency,omitempty"`

	// location preferences
	WantsCentralLocation   *bool `json:"wants_central_location,omitempty" firestore:"wants_central_location,omitempty"`
	WantsLocalNeighborhood *bool `json:"wants_local_neighborhood,omitempty" firestore:"wants_local_neighborhood,omitempty"`

	// atmosphere
	PrefersQuiet  *bool `json:"prefers_quiet,omitempty" firestore:"prefers_quiet,omitempty"`
	PrefersSocial *bool `json:"prefers_social,omitempty" firestore:"prefers_social,omitempty"`

	// amenities
	CaresAboutWifi      *bool `json:"cares_about_wifi,omitempty" firestore:"cares_about_wifi,omitempty"`
	CaresAboutDesk      *bool `json:"cares_about_desk,omitempty" firestore:"cares_about_desk,omitempty"`
	CaresAboutBreakfast *bool `json:"cares_about_breakfast,omitempty" firestore:"cares_about_breakfast,omitempty"`
	CaresAboutParking   *bool `json:"cares_about_parking,omitempty" firestore:"cares_about_parking,omitempty"`
	CaresAboutGym       *bool `json:"cares_about_gym,omitempty" firestore:"cares_about_gym,omitempty"`
	CaresAboutRooftop   *bool `json:"cares_about_rooftop,omitempty" firestore:"cares_about_rooftop,omitempty"`
	CaresAboutSpa       *bool `json:"cares_about_spa,omitempty" firestore:"cares_about_spa,omitempty"`

	// thematic preferences
	Foodie   *bool `json:"foodie,omitempty" firestore:"foodie,omitempty"`
	Romantic *bool `json:"romantic,omitempty" firestore:"romantic,omitempty"`

	// hotel-specific signals
	PreferredHotels []string `json:"preferred_hotels,omitempty" firestore:"preferred_hotels,omitempty"`
	RejectedHotels  []string `json:"rejected_hotels,omitempty" firestore:"rejected_hotels,omitempty"`

	// free-form notes the concierge can see, appended per session
	Notes []string `json:"notes,omitempty" firestore:"notes,omitempty"`

	Sessions  int       `json:"sessions" firestore:"sessions"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updated_at"`
}

// NewSeedProfile returns the baseline profile used before any session
// has contributed preferences for the persona.
func NewSeedProfile(personaID string) *Profile {
	return &Profile{
		PersonaID: personaID,
		Currency:  "EUR",
	}
}

// Merge folds another profile into this one. Non-nil scalars from
// other overwrite, lists union preserving order, notes append. Nothing
// already known is deleted unless other explicitly contradicts it with
// a non-nil value.
func (p *Profile) Merge(other *Profile) {
	if other == nil {
		return
	}

	if other.TripType != "" && other.TripType != "unknown" {
		p.TripType = other.TripType
	}
	if other.BudgetMin != nil {
		p.BudgetMin = other.BudgetMin
	}
	if other.BudgetMax != nil {
		p.BudgetMax = other.BudgetMax
	}
	if other.Currency != "" {
		p.Currency = other.Currency
	}

	for _, f := range []struct {
		dst **bool
		src *bool
	}{
		{&p.WantsCentralLocation, other.WantsCentralLocation},
		{&p.WantsLocalNeighborhood, other.WantsLocalNeighborhood},
		{&p.PrefersQuiet, other.PrefersQuiet},
		{&p.PrefersSocial, other.PrefersSocial},
		{&p.CaresAboutWifi, other.CaresAboutWifi},
		{&p.CaresAboutDesk, other.CaresAboutDesk},
		{&p.CaresAboutBreakfast, other.CaresAboutBreakfast},
		{&p.CaresAboutParking, other.CaresAboutParking},
		{&p.CaresAboutGym, other.CaresAboutGym},
		{&p.CaresAboutRooftop, other.CaresAboutRooftop},
		{&p.CaresAboutSpa, other.CaresAboutSpa},
		{&p.Foodie, other.Foodie},
		{&p.Romantic, other.Romantic},
	} {
		if f.src != nil {
			*f.dst = f.src
		}
	}

	p.PreferredHotels = unionStrings(p.PreferredHotels, other.PreferredHotels)
	p.RejectedHotels = unionStrings(p.RejectedHotels, other.RejectedHotels)
	p.Notes = append(p.Notes, other.Notes...)

	n := other.Sessions
	if n < 1 {
		n = 1
	}
	p.Sessions += n
	p.UpdatedAt = time.Now()
}

// PromptSummary renders a compact bullet digest of the profile for the
// concierge system prompt.
func (p *Profile) PromptSummary() string {
	var bullets []string

	if p.TripType != "" && p.TripType != "unknown" {
		bullets = append(bullets, "Trip type: "+p.TripType+".")
	}

	currency := p.Currency
	if currency == "" {
		currency = "EUR"
	}
	switch {
	case p.BudgetMin != nil && p.BudgetMax != nil:
		bullets = append(bullets, fmt.Sprintf("Budget: between %d and %d %s per night.",
			int(*p.BudgetMin), int(*p.BudgetMax), currency))
	case p.BudgetMax != nil:
		bullets = append(bullets, fmt.Sprintf("Budget: up to %d %s per night.",
			int(*p.BudgetMax), currency))
	}

	var loc []string
	if isTrue(p.WantsCentralLocation) {
		loc = append(loc, "central location")
	}
	if isTrue(p.WantsLocalNeighborhood) {
		loc = append(loc, "local, non-touristy neighborhood")
	}
	if len(loc) > 0 {
		bullets = append(bullets, "Prefers: "+strings.Join(loc, ", ")+".")
	}

	var atmos []string
	if isTrue(p.PrefersQuiet) {
		atmos = append(atmos, "quiet/relaxing atmosphere")
	}
	if isTrue(p.PrefersSocial) {
		atmos = append(atmos, "social/energetic vibe")
	}
	if len(atmos) > 0 {
		bullets = append(bullets, "Atmosphere: "+strings.Join(atmos, ", ")+".")
	}

	var amen []string
	for _, a := range []struct {
		v    *bool
		name string
	}{
		{p.CaresAboutWifi, "good Wi-Fi"},
		{p.CaresAboutDesk, "desk/workspace"},
		{p.CaresAboutBreakfast, "breakfast"},
		{p.CaresAboutParking, "parking"},
		{p.CaresAboutGym, "gym/fitness"},
		{p.CaresAboutRooftop, "rooftop/terrace"},
		{p.CaresAboutSpa, "spa/wellness"},
	} {
		if isTrue(a.v) {
			amen = append(amen, a.name)
		}
	}
	if len(amen) > 0 {
		bullets = append(bullets, "Cares about: "+strings.Join(amen, ", ")+".")
	}

	var themes []string
	if isTrue(p.Foodie) {
		themes = append(themes, "foodie (cares about restaurants/cafes)")
	}
	if isTrue(p.Romantic) {
		themes = append(themes, "romantic trip")
	}
	if len(themes) > 0 {
		bullets = append(bullets, "Themes: "+strings.Join(themes, ", ")+".")
	}

	if len(p.PreferredHotels) > 0 {
		bullets = append(bullets, "Previously liked: "+strings.Join(p.PreferredHotels, ", ")+".")
	}
	if len(p.RejectedHotels) > 0 {
		bullets = append(bullets, "Previously rejected: "+strings.Join(p.RejectedHotels, ", ")+".")
	}

	if len(bullets) == 0 && len(p.Notes) > 0 {
		bullets = append(bullets, p.Notes[len(p.Notes)-1])
	}
	if len(bullets) == 0 {
		return "No stable preferences inferred yet."
	}

	for i, b := range bullets {
		bullets[i] = "- " + b
	}
	return strings.Join(bullets, "\n")
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

func unionStrings(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	out := base
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// BoolPtr is a small helper for building tri-state preference values.
func BoolPtr(v bool) *bool { return &v }

// FloatPtr is a small helper for building optional budget values.
func FloatPtr(v float64) *float64 { return &v }
