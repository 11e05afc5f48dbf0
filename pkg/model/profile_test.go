package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/model"
)

func TestProfileMerge(t *testing.T) {
	base := model.NewSeedProfile("minimalist")
	base.BudgetMax = model.FloatPtr(150)
	base.CaresAboutWifi = model.BoolPtr(true)
	base.PreferredHotels = []string{"Canal View Inn"}
	base.Notes = []string{"books quickly when the price is right"}
	base.Sessions = 2

	update := &model.Profile{
		PersonaID:       "minimalist",
		TripType:        "work",
		BudgetMax:       model.FloatPtr(120),
		CaresAboutWifi:  model.BoolPtr(false),
		CaresAboutDesk:  model.BoolPtr(true),
		PreferredHotels: []string{"Canal View Inn", "Maple Courtyard Suites"},
		Notes:           []string{"asked about late checkout"},
	}

	base.Merge(update)

	gt.Equal(t, base.TripType, "work")
	gt.Equal(t, *base.BudgetMax, 120.0)
	// non-nil values overwrite, including explicit negatives
	gt.False(t, *base.CaresAboutWifi)
	gt.True(t, *base.CaresAboutDesk)
	// lists union without duplicates
	gt.A(t, base.PreferredHotels).Length(2)
	// notes append
	gt.A(t, base.Notes).Length(2)
	// a merge without an explicit session count adds one session
	gt.Equal(t, base.Sessions, 3)
	gt.False(t, base.UpdatedAt.IsZero())
}

func TestProfileMergeKeepsUnknowns(t *testing.T) {
	base := model.NewSeedProfile("explorer")
	base.PrefersSocial = model.BoolPtr(true)

	base.Merge(&model.Profile{PersonaID: "explorer"})

	// nil fields in the update never erase existing knowledge
	gt.True(t, *base.PrefersSocial)
	gt.Equal(t, base.Currency, "EUR")
}

func TestPromptSummary(t *testing.T) {
	profile := model.NewSeedProfile("explorer")
	gt.S(t, profile.PromptSummary()).Contains("No stable preferences")

	profile.TripType = "leisure"
	profile.BudgetMin = model.FloatPtr(100)
	profile.BudgetMax = model.FloatPtr(200)
	profile.WantsLocalNeighborhood = model.BoolPtr(true)
	profile.PrefersSocial = model.BoolPtr(true)
	profile.CaresAboutRooftop = model.BoolPtr(true)
	profile.Foodie = model.BoolPtr(true)
	profile.RejectedHotels = []string{"Station Budget Stay"}

	summary := profile.PromptSummary()
	gt.S(t, summary).Contains("Trip type: leisure")
	gt.S(t, summary).Contains("between 100 and 200 EUR")
	gt.S(t, summary).Contains("non-touristy neighborhood")
	gt.S(t, summary).Contains("rooftop/terrace")
	gt.S(t, summary).Contains("foodie")
	gt.S(t, summary).Contains("Previously rejected: Station Budget Stay")

	// false preferences stay out of the digest
	profile.CaresAboutSpa = model.BoolPtr(false)
	gt.S(t, profile.PromptSummary()).NotContains("spa")

	// every line is a bullet
	for _, line := range strings.Split(summary, "\n") {
		gt.True(t, strings.HasPrefix(line, "- "))
	}
}
