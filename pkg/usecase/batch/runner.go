// Package batch fans the conversation loop out over persona and
// assistant configurations and aggregates the resulting transcripts.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/adapter"
	"github.com/simforge/wander/pkg/model"
	"github.com/simforge/wander/pkg/usecase/dialogue"
	"github.com/simforge/wander/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Config enumerates a batch: the cartesian product of personas,
// assistant variants, and Conversations iterations.
type Config struct {
	Personas      []model.Persona
	Variants      []model.Variant
	Conversations int
	MaxTurns      int
	MemoryEnabled bool
	Location      string

	// Workers bounds concurrent loop runs. Runs for the same persona
	// still serialize their profile writes in the memory store.
	Workers int

	// SeedBase, when non-zero, samples opening turns from a per-run rng
	// derived from it so batches stay reproducible. Zero walks the seed
	// list by iteration index.
	SeedBase int64

	// OutputDir receives the combined collection file and one file per
	// conversation. Empty disables file output (repository persistence
	// still happens inside the loop).
	OutputDir string

	Dialogue dialogue.Config
}

// Result is one loop invocation's outcome: a sealed conversation or a
// tagged failure record. A failed run never aborts the batch.
type Result struct {
	Persona      model.Persona       `json:"persona"`
	Variant      model.Variant       `json:"assistant_variant"`
	Iteration    int                 `json:"iteration"`
	Conversation *model.Conversation `json:"conversation,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// Runner executes batches against one shared Loop.
type Runner struct {
	loop    *dialogue.Loop
	archive adapter.Storage // optional per-conversation GCS archive
}

type Option func(*Runner)

// WithArchive copies each sealed conversation to the transcript
// archive bucket.
func WithArchive(storage adapter.Storage) Option {
	return func(r *Runner) {
		r.archive = storage
	}
}

func New(loop *dialogue.Loop, opts ...Option) *Runner {
	r := &Runner{loop: loop}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the whole batch and returns every result, failures
// included. Only context cancellation aborts the batch early.
func (r *Runner) Run(ctx context.Context, cfg Config) ([]Result, error) {
	if len(cfg.Personas) == 0 || len(cfg.Variants) == 0 {
		return nil, goerr.New("batch needs at least one persona and one variant")
	}
	if cfg.Conversations <= 0 {
		cfg.Conversations = 1
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	logger := logging.From(ctx)
	total := len(cfg.Personas) * len(cfg.Variants) * cfg.Conversations
	logger.Info("starting batch", "total", total, "workers", workers,
		"memory", cfg.MemoryEnabled)

	var (
		mu      sync.Mutex
		results []Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	job := 0
	for _, persona := range cfg.Personas {
		for _, variant := range cfg.Variants {
			for i := 0; i < cfg.Conversations; i++ {
				persona, variant, i, job := persona, variant, i, job
				g.Go(func() error {
					res := r.runOne(gctx, cfg, persona, variant, i, job)
					mu.Lock()
					results = append(results, res)
					mu.Unlock()

					// failures are recorded, not propagated
					return gctx.Err()
				})
				job++
			}
		}
	}

	if err := g.Wait(); err != nil {
		return results, goerr.Wrap(err, "batch aborted")
	}

	if cfg.OutputDir != "" {
		if err := r.writeOutputs(ctx, cfg.OutputDir, results); err != nil {
			return results, err
		}
	}

	logger.Info("batch finished", "results", len(results))
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, cfg Config, persona model.Persona, variant model.Variant, iteration, job int) Result {
	logger := logging.From(ctx)
	logger.Info("running conversation",
		"persona", persona, "variant", variant, "iteration", iteration+1, "of", cfg.Conversations)

	dcfg := cfg.Dialogue
	dcfg.Persona = persona
	dcfg.Variant = variant
	dcfg.MemoryEnabled = cfg.MemoryEnabled
	dcfg.MaxTurns = cfg.MaxTurns
	if cfg.Location != "" {
		dcfg.Location = cfg.Location
	}
	if cfg.SeedBase != 0 {
		// each run gets its own rng so workers never share one
		dcfg.Rand = rand.New(rand.NewSource(cfg.SeedBase ^ int64(job)*0x9e3779b9))
		dcfg.SeedIndex = -1
	} else if dcfg.Rand == nil && dcfg.SeedIndex == 0 {
		// vary openings across iterations deterministically
		dcfg.SeedIndex = iteration
	}

	conv, err := r.loop.Run(ctx, dcfg)
	res := Result{Persona: persona, Variant: variant, Iteration: iteration}
	if err != nil {
		logger.Warn("conversation run failed",
			"persona", persona, "variant", variant, "error", err)
		res.Error = err.Error()
		return res
	}

	res.Conversation = conv
	return res
}

func (r *Runner) writeOutputs(ctx context.Context, dir string, results []Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
	}

	logger := logging.From(ctx)
	for _, res := range results {
		if res.Conversation == nil {
			continue
		}
		name := fmt.Sprintf("conv_%s_%s_%d.json", res.Persona, res.Variant, res.Iteration)
		path := filepath.Join(dir, name)
		data, err := json.MarshalIndent(res.Conversation, "", "  ")
		if err != nil {
			return goerr.Wrap(err, "failed to marshal conversation", goerr.V("path", path))
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Warn("failed to save per-conversation log", "path", path, "error", err)
			continue
		}

		if r.archive != nil {
			if err := r.archiveOne(ctx, name, data); err != nil {
				logger.Warn("failed to archive conversation", "key", name, "error", err)
			}
		}
	}

	combined := filepath.Join(dir, "conversations.json")
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal batch results")
	}
	if err := os.WriteFile(combined, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to save combined conversations file", goerr.V("path", combined))
	}

	logger.Info("batch outputs written", "dir", dir)
	return nil
}

func (r *Runner) archiveOne(ctx context.Context, key string, data []byte) error {
	w, err := r.archive.Put(ctx, key)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write transcript archive", goerr.V("key", key))
	}
	return w.Close()
}
