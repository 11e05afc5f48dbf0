package retrieval

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/model"
)

// TagRetrieval marks catalog lookup failures for the retry policy.
var TagRetrieval = goerr.NewTag("retrieval")

// DefaultLimit bounds the candidate list handed to the concierge.
const DefaultLimit = 5

// Client is the retrieval service the loop consumes. Results are
// deterministic for a given query against a fixed catalog snapshot so
// transcripts stay reproducible. An empty result is not an error.
type Client interface {
	Search(ctx context.Context, query model.SearchQuery) ([]model.HotelCandidate, error)
}

//go:embed catalog.json
var defaultCatalogRaw []byte

// JSONClient serves hotel candidates from a local JSON catalog file.
type JSONClient struct {
	hotels []model.HotelCandidate
}

// NewJSONClient loads the catalog at path, or the embedded default
// catalog when path is empty.
func NewJSONClient(path string) (*JSONClient, error) {
	raw := defaultCatalogRaw
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read hotel catalog",
				goerr.T(TagRetrieval), goerr.V("path", path))
		}
		raw = data
	}

	var hotels []model.HotelCandidate
	if err := json.Unmarshal(raw, &hotels); err != nil {
		return nil, goerr.Wrap(err, "failed to parse hotel catalog",
			goerr.T(TagRetrieval), goerr.V("path", path))
	}

	return &JSONClient{hotels: hotels}, nil
}

// Search filters the catalog: substring location match, minimum
// rating, maximum price, required amenities. Results sort by rating
// descending then price ascending.
func (c *JSONClient) Search(ctx context.Context, query model.SearchQuery) ([]model.HotelCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "retrieval canceled", goerr.T(TagRetrieval))
	}

	var candidates []model.HotelCandidate
	for _, h := range c.hotels {
		if query.Location != "" &&
			!strings.Contains(strings.ToLower(h.Location), strings.ToLower(query.Location)) {
			continue
		}
		if query.MinRating > 0 && h.Rating < query.MinRating {
			continue
		}
		if query.MaxPrice > 0 && h.PricePerNight > query.MaxPrice {
			continue
		}
		if !hasAllAmenities(h, query.Amenities) {
			continue
		}
		candidates = append(candidates, h)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Rating != candidates[j].Rating {
			return candidates[i].Rating > candidates[j].Rating
		}
		return candidates[i].PricePerNight < candidates[j].PricePerNight
	})

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func hasAllAmenities(h model.HotelCandidate, required []string) bool {
	for _, a := range required {
		if !h.HasAmenity(strings.ToLower(a)) {
			return false
		}
	}
	return true
}
