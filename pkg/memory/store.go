package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/model"
	"github.com/simforge/wander/pkg/repository"
	"github.com/simforge/wander/pkg/utils/logging"
)

// Store mediates long-term profile access. Profile updates are
// serialized per persona: the profiler's merge is not commutative, so
// concurrent runs for the same persona must not interleave their
// read-modify-write.
type Store struct {
	repo repository.Repository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(repo repository.Repository) *Store {
	return &Store{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) personaLock(personaID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[personaID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[personaID] = l
	}
	return l
}

// Load returns the stored profile for the persona, or the baseline
// seed profile when none exists. A corrupt stored profile degrades to
// the seed with a warning instead of failing the run.
func (s *Store) Load(ctx context.Context, personaID string) *model.Profile {
	profile, err := s.repo.GetProfile(ctx, personaID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// first session for this persona
		case goerr.HasTag(err, repository.TagProfileCorrupt):
			logging.From(ctx).Warn("stored profile is corrupt, falling back to seed",
				"persona_id", personaID, "error", err)
		default:
			logging.From(ctx).Warn("failed to load profile, falling back to seed",
				"persona_id", personaID, "error", err)
		}
		return model.NewSeedProfile(personaID)
	}
	return profile
}

// Update applies fn to the freshest stored profile and persists the
// result, holding the persona's lock for the whole read-modify-write.
func (s *Store) Update(ctx context.Context, personaID string, fn func(profile *model.Profile)) error {
	l := s.personaLock(personaID)
	l.Lock()
	defer l.Unlock()

	profile := s.Load(ctx, personaID)
	fn(profile)

	if err := s.repo.PutProfile(ctx, profile); err != nil {
		return goerr.Wrap(err, "failed to persist profile", goerr.V("persona_id", personaID))
	}
	return nil
}
