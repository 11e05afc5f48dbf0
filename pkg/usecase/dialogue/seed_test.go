package dialogue_test

import (
	"math/rand"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/model"
	"github.com/simforge/wander/pkg/usecase/dialogue"
)

func TestLoadSeedsEmbedded(t *testing.T) {
	seeds, err := dialogue.LoadSeeds("")
	gt.NoError(t, err)
	gt.A(t, seeds).Length(8)

	var minimalist, explorer int
	for _, s := range seeds {
		gt.True(t, s.ID != "")
		gt.True(t, s.Opening != "")
		switch s.Persona {
		case model.PersonaMinimalist:
			minimalist++
		case model.PersonaExplorer:
			explorer++
		}
	}
	gt.Equal(t, minimalist, 4)
	gt.Equal(t, explorer, 4)
}

func TestLoadSeedsMissingFile(t *testing.T) {
	_, err := dialogue.LoadSeeds("/no/such/seeds.yml")
	gt.Error(t, err)
}

func TestPickSeedByIndex(t *testing.T) {
	seeds, err := dialogue.LoadSeeds("")
	gt.NoError(t, err)

	first, err := dialogue.PickSeed(seeds, model.PersonaMinimalist, 0, nil)
	gt.NoError(t, err)
	gt.Equal(t, first.Persona, model.PersonaMinimalist)

	// the index wraps around the persona's seeds
	wrapped, err := dialogue.PickSeed(seeds, model.PersonaMinimalist, 4, nil)
	gt.NoError(t, err)
	gt.Equal(t, wrapped.ID, first.ID)
}

func TestPickSeedSampled(t *testing.T) {
	seeds, err := dialogue.LoadSeeds("")
	gt.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	seed, err := dialogue.PickSeed(seeds, model.PersonaExplorer, -1, rng)
	gt.NoError(t, err)
	gt.Equal(t, seed.Persona, model.PersonaExplorer)
}

func TestPickSeedUnknownPersona(t *testing.T) {
	seeds, err := dialogue.LoadSeeds("")
	gt.NoError(t, err)

	_, err = dialogue.PickSeed(seeds, model.Persona("ghost"), 0, nil)
	gt.Error(t, err)
}
