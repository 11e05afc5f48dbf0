package filter_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/filter"
)

func TestSimilarity(t *testing.T) {
	testCases := []struct {
		name string
		a    string
		b    string
		min  float64
		max  float64
	}{
		{"identical", "I need good wifi", "I need good wifi", 1.0, 1.0},
		{"case and spacing", "I need  GOOD wifi", "i need good wifi", 1.0, 1.0},
		{"both empty", "", "", 1.0, 1.0},
		{"disjoint", "cheap room near the station", "rooftop terrace with canal view", 0.0, 0.5},
		{"near duplicate", "Do you have anything cheaper?", "Do you have anything cheaper??", 0.9, 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := filter.Similarity(tc.a, tc.b)
			gt.True(t, got >= tc.min)
			gt.True(t, got <= tc.max)
		})
	}
}

func TestIsDegenerateShortOutput(t *testing.T) {
	cfg := filter.DefaultConfig()

	gt.True(t, cfg.IsDegenerate("", nil))
	gt.True(t, cfg.IsDegenerate("ok", nil))
	gt.False(t, cfg.IsDegenerate("sounds good", nil))
}

func TestIsDegenerateNearDuplicate(t *testing.T) {
	cfg := filter.DefaultConfig()

	recent := []string{
		"I want something central with good wifi.",
		"Is breakfast included in that price?",
	}

	gt.True(t, cfg.IsDegenerate("Is breakfast included in that price?", recent))
	gt.True(t, cfg.IsDegenerate("is breakfast included in that price", recent))
	gt.False(t, cfg.IsDegenerate("Could you check availability for Friday?", recent))
}

func TestIsDegenerateWindowBoundsComparison(t *testing.T) {
	cfg := filter.DefaultConfig()
	cfg.Window = 2

	// the duplicate is older than the comparison window
	recent := []string{
		"Is breakfast included in that price?",
		"What about the rooftop terrace?",
		"Can I bring my dog?",
	}

	gt.False(t, cfg.IsDegenerate("Is breakfast included in that price?", recent))
}

func TestIsDegenerateRepeatedNGrams(t *testing.T) {
	cfg := filter.DefaultConfig()

	looping := "I want to book it I want to book it I want to book it"
	gt.True(t, cfg.IsDegenerate(looping, nil))

	normal := "The Canal View Inn looks great, please check availability for the weekend."
	gt.False(t, cfg.IsDegenerate(normal, nil))
}
