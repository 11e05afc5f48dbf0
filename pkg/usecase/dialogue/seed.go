package dialogue

import (
	_ "embed"
	"math/rand"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed seeds.yml
var defaultSeedsRaw []byte

// Seed is one opening-turn template.
type Seed struct {
	ID       string        `yaml:"id"`
	Persona  model.Persona `yaml:"persona"`
	Location string        `yaml:"location"`
	Opening  string        `yaml:"opening"`
}

type seedFile struct {
	Seeds []Seed `yaml:"seeds"`
}

// LoadSeeds reads opening-turn templates from path, or the embedded
// default set when path is empty.
func LoadSeeds(path string) ([]Seed, error) {
	raw := defaultSeedsRaw
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read seed histories", goerr.V("path", path))
		}
		raw = data
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse seed histories", goerr.V("path", path))
	}
	if len(f.Seeds) == 0 {
		return nil, goerr.New("seed history set is empty", goerr.V("path", path))
	}
	return f.Seeds, nil
}

// PickSeed selects an opening for the persona: by index when index is
// non-negative (wrapping), otherwise sampled with rng.
func PickSeed(seeds []Seed, persona model.Persona, index int, rng *rand.Rand) (Seed, error) {
	var matching []Seed
	for _, s := range seeds {
		if s.Persona == persona {
			matching = append(matching, s)
		}
	}
	if len(matching) == 0 {
		return Seed{}, goerr.New("no seed history for persona", goerr.V("persona", persona))
	}

	if index >= 0 {
		return matching[index%len(matching)], nil
	}
	if rng == nil {
		return matching[0], nil
	}
	return matching[rng.Intn(len(matching))], nil
}
