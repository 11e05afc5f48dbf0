package retrieval_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/model"
	"github.com/simforge/wander/pkg/retrieval"
)

func TestSearchDefaultCatalog(t *testing.T) {
	client, err := retrieval.NewJSONClient("")
	gt.NoError(t, err)

	hotels, err := client.Search(context.Background(), model.SearchQuery{Location: "Amsterdam"})
	gt.NoError(t, err)
	gt.A(t, hotels).Length(retrieval.DefaultLimit)

	// rating descending
	for i := 1; i < len(hotels); i++ {
		gt.True(t, hotels[i-1].Rating >= hotels[i].Rating)
	}
	gt.Equal(t, hotels[0].Name, "Golden Tulip Residence")
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	client, err := retrieval.NewJSONClient("")
	gt.NoError(t, err)

	t.Run("max price", func(t *testing.T) {
		hotels, err := client.Search(ctx, model.SearchQuery{Location: "Amsterdam", MaxPrice: 100})
		gt.NoError(t, err)
		gt.A(t, hotels).Length(2)
		for _, h := range hotels {
			gt.True(t, h.PricePerNight <= 100)
		}
	})

	t.Run("min rating", func(t *testing.T) {
		hotels, err := client.Search(ctx, model.SearchQuery{Location: "Amsterdam", MinRating: 4.5})
		gt.NoError(t, err)
		for _, h := range hotels {
			gt.True(t, h.Rating >= 4.5)
		}
	})

	t.Run("amenities", func(t *testing.T) {
		hotels, err := client.Search(ctx, model.SearchQuery{
			Location:  "Amsterdam",
			Amenities: []string{"desk", "parking"},
		})
		gt.NoError(t, err)
		gt.A(t, hotels).Length(1)
		gt.Equal(t, hotels[0].ID, "ams-008")
	})

	t.Run("district substring", func(t *testing.T) {
		hotels, err := client.Search(ctx, model.SearchQuery{Location: "jordaan"})
		gt.NoError(t, err)
		gt.A(t, hotels).Length(1)
		gt.Equal(t, hotels[0].Name, "Riverside Boutique")
	})

	t.Run("no match is empty not error", func(t *testing.T) {
		hotels, err := client.Search(ctx, model.SearchQuery{Location: "Rotterdam"})
		gt.NoError(t, err)
		gt.A(t, hotels).Length(0)
	})
}

func TestSearchLimit(t *testing.T) {
	client, err := retrieval.NewJSONClient("")
	gt.NoError(t, err)

	hotels, err := client.Search(context.Background(), model.SearchQuery{Location: "Amsterdam", Limit: 2})
	gt.NoError(t, err)
	gt.A(t, hotels).Length(2)
}

func TestSearchCanceledContext(t *testing.T) {
	client, err := retrieval.NewJSONClient("")
	gt.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Search(ctx, model.SearchQuery{Location: "Amsterdam"})
	gt.Error(t, err)
}

func TestNewJSONClientMissingFile(t *testing.T) {
	_, err := retrieval.NewJSONClient("/no/such/catalog.json")
	gt.Error(t, err)
}
