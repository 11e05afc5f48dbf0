package dialogue

import (
	"context"
	"math/rand"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/adapter"
	"github.com/simforge/wander/pkg/agent"
	"github.com/simforge/wander/pkg/filter"
	"github.com/simforge/wander/pkg/memory"
	"github.com/simforge/wander/pkg/model"
	"github.com/simforge/wander/pkg/repository"
	"github.com/simforge/wander/pkg/retrieval"
	"github.com/simforge/wander/pkg/utils/logging"
)

// Input bundles the collaborators one Loop shares across runs. All of
// them are safe for concurrent use; per-run state lives in the
// Conversation owned by each Run call.
type Input struct {
	LLM          adapter.LLM // traveler, judge, profiler, prompt concierge
	FineTunedLLM adapter.LLM // concierge when variant is ft; falls back to LLM
	Catalog      retrieval.Client
	Repo         repository.Repository
	Memory       *memory.Store
	Counter      memory.Counter
}

// Config enumerates one run's parameters.
type Config struct {
	Persona       model.Persona
	Variant       model.Variant
	MemoryEnabled bool
	MaxTurns      int
	Location      string

	// SeedIndex picks the opening turn template; negative samples one.
	SeedIndex int
	Seeds     []Seed
	Rand      *rand.Rand

	WindowBudget  int
	Filter        filter.Config
	FilterRetries int
	Retry         RetryPolicy
}

func (c *Config) setDefaults() {
	if c.MaxTurns <= 0 {
		c.MaxTurns = 10
	}
	if c.Location == "" {
		c.Location = "Amsterdam"
	}
	if c.WindowBudget <= 0 {
		c.WindowBudget = 2048
	}
	if c.Filter == (filter.Config{}) {
		c.Filter = filter.DefaultConfig()
	}
	if c.FilterRetries <= 0 {
		c.FilterRetries = 2
	}
	if c.Retry.Attempts <= 0 {
		c.Retry = DefaultRetryPolicy()
	}
}

// Loop drives one full dialogue from seed to termination.
type Loop struct {
	llm     adapter.LLM
	ftLLM   adapter.LLM
	catalog retrieval.Client
	repo    repository.Repository
	memory  *memory.Store
	counter memory.Counter
}

func New(input Input) *Loop {
	counter := input.Counter
	if counter == nil {
		counter = memory.NewTiktokenCounter()
	}
	ftLLM := input.FineTunedLLM
	if ftLLM == nil {
		ftLLM = input.LLM
	}
	return &Loop{
		llm:     input.LLM,
		ftLLM:   ftLLM,
		catalog: input.Catalog,
		repo:    input.Repo,
		memory:  input.Memory,
		counter: counter,
	}
}

// Run executes one conversation to termination and returns the sealed
// record. Backend failures downgrade to an early tagged termination;
// only context cancellation surfaces as an error, in which case
// nothing is persisted.
func (l *Loop) Run(ctx context.Context, cfg Config) (*model.Conversation, error) {
	cfg.setDefaults()
	logger := logging.From(ctx).With("persona", cfg.Persona, "variant", cfg.Variant)

	seeds := cfg.Seeds
	if seeds == nil {
		var err error
		if seeds, err = LoadSeeds(""); err != nil {
			return nil, err
		}
	}
	seed, err := PickSeed(seeds, cfg.Persona, cfg.SeedIndex, cfg.Rand)
	if err != nil {
		return nil, err
	}

	location := seed.Location
	if cfg.Location != "" {
		location = cfg.Location
	}
	conv := model.NewConversation(cfg.Persona, cfg.Variant, cfg.MemoryEnabled, location)
	conv.SeedID = seed.ID
	if _, err := conv.Append(model.SpeakerUser, seed.Opening); err != nil {
		return nil, err
	}

	// The traveler embodies the profile; only the concierge consumes it.
	var profile *model.Profile
	var conciergeOpts []agent.ConciergeOption
	if cfg.MemoryEnabled {
		profile = l.memory.Load(ctx, string(cfg.Persona))
		conciergeOpts = append(conciergeOpts, agent.WithProfileDigest(profile.PromptSummary()))
	}

	traveler, err := agent.NewTraveler(l.llm, cfg.Persona)
	if err != nil {
		return nil, err
	}
	conciergeLLM := l.llm
	if cfg.Variant == model.VariantFineTuned {
		conciergeLLM = l.ftLLM
	}
	concierge, err := agent.NewConcierge(conciergeLLM, cfg.Variant, conciergeOpts...)
	if err != nil {
		return nil, err
	}
	judge := agent.NewJudge(l.llm)

	for round := 0; round < cfg.MaxTurns; round++ {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "run aborted", goerr.V("session_id", conv.ID))
		}

		// concierge turn
		hotels, err := l.searchHotels(ctx, cfg, conv, profile)
		if err != nil {
			logger.Warn("retrieval failed, terminating early", "error", err)
			return l.finish(ctx, conv, model.ReasonGenerationFailure, cfg)
		}

		window := memory.Window(conv.Turns, l.counter, cfg.WindowBudget)
		text, ok, err := l.produce(ctx, cfg, conv.TextsBySpeaker(model.SpeakerAssistant), func() (string, error) {
			return concierge.Respond(ctx, window, hotels)
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("concierge output degenerate after retries, truncating",
				"session_id", conv.ID, "round", round)
			conv.Degenerate = true
			return l.finish(ctx, conv, model.ReasonStalled, cfg)
		}
		if text == "" {
			return l.finish(ctx, conv, model.ReasonGenerationFailure, cfg)
		}
		if _, err := conv.Append(model.SpeakerAssistant, text); err != nil {
			return nil, err
		}

		// traveler turn
		window = memory.Window(conv.Turns, l.counter, cfg.WindowBudget)
		text, ok, err = l.produce(ctx, cfg, conv.TextsBySpeaker(model.SpeakerUser), func() (string, error) {
			return traveler.NextUtterance(ctx, window)
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("traveler output degenerate after retries, truncating",
				"session_id", conv.ID, "round", round)
			conv.Degenerate = true
			return l.finish(ctx, conv, model.ReasonStalled, cfg)
		}
		if text == "" {
			return l.finish(ctx, conv, model.ReasonGenerationFailure, cfg)
		}
		if _, err := conv.Append(model.SpeakerUser, text); err != nil {
			return nil, err
		}

		// judge after each full round
		var verdict *model.Verdict
		err = cfg.Retry.Do(ctx, func() error {
			var evalErr error
			verdict, evalErr = judge.Evaluate(ctx, conv)
			return evalErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, goerr.Wrap(err, "run aborted")
			}
			logger.Warn("judge failed, terminating early", "error", err)
			return l.finish(ctx, conv, model.ReasonGenerationFailure, cfg)
		}
		if err := conv.AddVerdict(*verdict); err != nil {
			return nil, err
		}

		if verdict.Outcome.Terminal() {
			logger.Info("judge signaled termination",
				"session_id", conv.ID, "outcome", verdict.Outcome, "rounds", round+1)
			return l.finish(ctx, conv, verdict.Outcome.Reason(), cfg)
		}
	}

	return l.finish(ctx, conv, model.ReasonMaxTurns, cfg)
}

// produce generates one utterance with the bounded retry policy and
// the repetition filter. The bool result is false when the retry
// budget was spent on degenerate output (truncation point); an empty
// text with nil error means the generation retry budget was spent.
func (l *Loop) produce(ctx context.Context, cfg Config, recent []string, gen func() (string, error)) (string, bool, error) {
	for attempt := 0; attempt <= cfg.FilterRetries; attempt++ {
		var text string
		err := cfg.Retry.Do(ctx, func() error {
			var genErr error
			text, genErr = gen()
			return genErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return "", false, goerr.Wrap(err, "run aborted")
			}
			logging.From(ctx).Warn("generation retry budget exhausted", "error", err)
			return "", true, nil
		}

		if !cfg.Filter.IsDegenerate(text, recent) {
			return text, true, nil
		}
	}
	return "", false, nil
}

func (l *Loop) searchHotels(ctx context.Context, cfg Config, conv *model.Conversation, profile *model.Profile) ([]model.HotelCandidate, error) {
	query := model.SearchQuery{
		Location: conv.Location,
		Limit:    retrieval.DefaultLimit,
	}
	if profile != nil && profile.BudgetMax != nil {
		query.MaxPrice = *profile.BudgetMax
	}

	var hotels []model.HotelCandidate
	err := cfg.Retry.Do(ctx, func() error {
		var searchErr error
		hotels, searchErr = l.catalog.Search(ctx, query)
		return searchErr
	})
	if err != nil {
		return nil, goerr.Wrap(err, "hotel retrieval failed", goerr.T(retrieval.TagRetrieval))
	}
	return hotels, nil
}

// finish seals the conversation, updates the long-term profile when
// memory is enabled, and persists the record. All termination paths
// converge here.
func (l *Loop) finish(ctx context.Context, conv *model.Conversation, reason model.Reason, cfg Config) (*model.Conversation, error) {
	logger := logging.From(ctx)
	conv.Seal(reason)

	// The profiler shares the generation backend; skip it when the run
	// already died of backend failure.
	if cfg.MemoryEnabled && reason != model.ReasonGenerationFailure {
		profiler := agent.NewProfiler(l.llm)
		inferred, err := profiler.Infer(ctx, conv)
		if err != nil {
			logger.Warn("profiler failed, keeping stored profile unchanged",
				"session_id", conv.ID, "error", err)
		} else if err := l.memory.Update(ctx, string(conv.Persona), func(p *model.Profile) {
			p.Merge(inferred)
		}); err != nil {
			logger.Warn("profile update failed", "session_id", conv.ID, "error", err)
		}
	}

	if err := l.repo.PutConversation(ctx, conv); err != nil {
		return nil, goerr.Wrap(err, "failed to persist conversation", goerr.V("session_id", conv.ID))
	}

	logger.Info("conversation sealed",
		"session_id", conv.ID, "reason", conv.Reason, "turns", len(conv.Turns))
	return conv, nil
}
