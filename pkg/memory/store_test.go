package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/memory"
	"github.com/simforge/wander/pkg/model"
	"github.com/simforge/wander/pkg/repository"
)

func TestStoreLoadSeedsUnknownPersona(t *testing.T) {
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)
	store := memory.NewStore(repo)

	profile := store.Load(context.Background(), "minimalist")
	gt.V(t, profile).NotNil()
	gt.Equal(t, profile.PersonaID, "minimalist")
	gt.Equal(t, profile.Currency, "EUR")
	gt.Equal(t, profile.Sessions, 0)
}

func TestStoreLoadCorruptProfileFallsBack(t *testing.T) {
	dir := t.TempDir()
	repo, err := repository.NewLocal(dir)
	gt.NoError(t, err)

	// corrupt the stored profile on disk
	path := filepath.Join(dir, "profiles", "explorer.json")
	gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	gt.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := memory.NewStore(repo)
	profile := store.Load(context.Background(), "explorer")
	gt.V(t, profile).NotNil()
	gt.Equal(t, profile.PersonaID, "explorer")
	gt.Equal(t, profile.Sessions, 0)
}

func TestStoreUpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)
	store := memory.NewStore(repo)

	update := &model.Profile{
		PersonaID:      "minimalist",
		BudgetMax:      model.FloatPtr(140),
		CaresAboutWifi: model.BoolPtr(true),
	}
	gt.NoError(t, store.Update(ctx, "minimalist", func(p *model.Profile) {
		p.Merge(update)
	}))

	stored, err := repo.GetProfile(ctx, "minimalist")
	gt.NoError(t, err)
	gt.Equal(t, *stored.BudgetMax, 140.0)
	gt.True(t, *stored.CaresAboutWifi)
	gt.Equal(t, stored.Sessions, 1)
}

func TestStoreUpdateSerializesPerPersona(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)
	store := memory.NewStore(repo)

	const sessions = 20
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "explorer", func(p *model.Profile) {
				p.Merge(&model.Profile{PersonaID: "explorer"})
			})
		}()
	}
	wg.Wait()

	stored, err := repo.GetProfile(ctx, "explorer")
	gt.NoError(t, err)
	// every update lands exactly once
	gt.Equal(t, stored.Sessions, sessions)
}
