package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/model"
	"github.com/simforge/wander/pkg/repository"
)

func TestLocalConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)

	conv := model.NewConversation(model.PersonaExplorer, model.VariantPrompt, true, "Amsterdam")
	_, err = conv.Append(model.SpeakerUser, "Hi, looking for a canal-side hotel.")
	gt.NoError(t, err)
	_, err = conv.Append(model.SpeakerAssistant, "The Riverside Boutique could suit you.")
	gt.NoError(t, err)
	gt.NoError(t, conv.AddVerdict(model.Verdict{Outcome: model.OutcomeOpen, Confidence: 0.4}))
	conv.Seal(model.ReasonMaxTurns)

	gt.NoError(t, repo.PutConversation(ctx, conv))

	loaded, err := repo.GetConversation(ctx, conv.ID)
	gt.NoError(t, err)
	gt.Equal(t, loaded.ID, conv.ID)
	gt.Equal(t, loaded.Persona, model.PersonaExplorer)
	gt.Equal(t, loaded.Reason, model.ReasonMaxTurns)
	gt.A(t, loaded.Turns).Length(2)
	gt.A(t, loaded.Verdicts).Length(1)
}

func TestLocalGetConversationNotFound(t *testing.T) {
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)

	_, err = repo.GetConversation(context.Background(), model.ConversationID("missing"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestLocalProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)

	profile := model.NewSeedProfile("minimalist")
	profile.BudgetMax = model.FloatPtr(150)
	profile.CaresAboutWifi = model.BoolPtr(true)
	profile.Notes = []string{"prefers paying at check-in"}
	profile.Sessions = 1

	gt.NoError(t, repo.PutProfile(ctx, profile))

	loaded, err := repo.GetProfile(ctx, "minimalist")
	gt.NoError(t, err)
	gt.Equal(t, *loaded.BudgetMax, 150.0)
	gt.True(t, *loaded.CaresAboutWifi)
	// unknown preferences stay unknown, not false
	gt.V(t, loaded.CaresAboutSpa).Nil()
	gt.A(t, loaded.Notes).Length(1)
}

func TestLocalProfileErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := repository.NewLocal(dir)
	gt.NoError(t, err)

	t.Run("missing profile is ErrNotFound", func(t *testing.T) {
		_, err := repo.GetProfile(ctx, "nobody")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("corrupt profile is tagged", func(t *testing.T) {
		path := filepath.Join(dir, "profiles", "broken.json")
		gt.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

		_, err := repo.GetProfile(ctx, "broken")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, repository.TagProfileCorrupt))
	})

	t.Run("profile without persona ID is rejected", func(t *testing.T) {
		gt.Error(t, repo.PutProfile(ctx, &model.Profile{}))
	})
}

func TestLocalListProfilesSorted(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)

	for _, id := range []string{"explorer", "minimalist", "architect"} {
		gt.NoError(t, repo.PutProfile(ctx, model.NewSeedProfile(id)))
	}

	profiles, err := repo.ListProfiles(ctx)
	gt.NoError(t, err)
	gt.A(t, profiles).Length(3)
	gt.Equal(t, profiles[0].PersonaID, "architect")
	gt.Equal(t, profiles[1].PersonaID, "explorer")
	gt.Equal(t, profiles[2].PersonaID, "minimalist")
}

func TestLocalDeleteProfile(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)

	gt.NoError(t, repo.PutProfile(ctx, model.NewSeedProfile("explorer")))
	gt.NoError(t, repo.DeleteProfile(ctx, "explorer"))

	_, err = repo.GetProfile(ctx, "explorer")
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	gt.True(t, errors.Is(repo.DeleteProfile(ctx, "explorer"), repository.ErrNotFound))
}
