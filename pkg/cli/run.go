package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/filter"
	"github.com/simforge/wander/pkg/model"
	"github.com/simforge/wander/pkg/usecase/batch"
	"github.com/simforge/wander/pkg/usecase/dialogue"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	var (
		cfg           config
		personas      []string
		variants      []string
		conversations int64
		maxTurns      int64
		memoryEnabled bool
		location      string
		workers       int64
		outputDir     string
		bucket        string
		seedsPath     string
		seedBase      int64
		similarity    float64
		ngramRatio    float64
		minWords      int64
		windowBudget  int64
	)

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "personas",
			Usage:       "Traveler personas to simulate",
			Value:       []string{"minimalist", "explorer"},
			Destination: &personas,
		},
		&cli.StringSliceFlag{
			Name:        "variants",
			Usage:       "Assistant variants to run (prompt, ft)",
			Value:       []string{"prompt"},
			Destination: &variants,
		},
		&cli.IntFlag{
			Name:        "conversations",
			Aliases:     []string{"n"},
			Usage:       "Conversations per persona/variant pair",
			Value:       1,
			Destination: &conversations,
		},
		&cli.IntFlag{
			Name:        "max-turns",
			Usage:       "Turns per speaker before the run is cut off",
			Value:       10,
			Destination: &maxTurns,
		},
		&cli.BoolFlag{
			Name:        "memory",
			Usage:       "Carry long-term persona profiles across sessions",
			Destination: &memoryEnabled,
		},
		&cli.StringFlag{
			Name:        "location",
			Usage:       "City the traveler is booking in",
			Value:       "Amsterdam",
			Destination: &location,
		},
		&cli.IntFlag{
			Name:        "workers",
			Aliases:     []string{"w"},
			Usage:       "Concurrent conversation runs",
			Value:       2,
			Destination: &workers,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Directory for transcript JSON files (empty to skip)",
			Value:       "./runs",
			Destination: &outputDir,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "GCS bucket to archive transcripts to (optional)",
			Sources:     cli.EnvVars("WANDER_BUCKET"),
			Destination: &bucket,
		},
		&cli.StringFlag{
			Name:        "seeds",
			Usage:       "Path to an opening-turn seeds YAML (embedded seeds when empty)",
			Destination: &seedsPath,
		},
		&cli.IntFlag{
			Name:        "seed",
			Usage:       "Base random seed for sampling openings (0 walks the list)",
			Destination: &seedBase,
		},
		&cli.FloatFlag{
			Name:        "similarity",
			Usage:       "Repetition filter similarity threshold",
			Value:       0.82,
			Destination: &similarity,
		},
		&cli.FloatFlag{
			Name:        "ngram-ratio",
			Usage:       "Repetition filter repeated n-gram ratio threshold",
			Value:       0.5,
			Destination: &ngramRatio,
		},
		&cli.IntFlag{
			Name:        "min-words",
			Usage:       "Minimum words per generated utterance",
			Value:       2,
			Destination: &minWords,
		},
		&cli.IntFlag{
			Name:        "window-budget",
			Usage:       "Token budget for the short-term context window",
			Value:       2048,
			Destination: &windowBudget,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, retrievalFlags(&cfg)...)

	return &cli.Command{
		Name:  "run",
		Usage: "Run a batch of simulated booking conversations",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			loop, _, err := cfg.newLoop(ctx)
			if err != nil {
				return err
			}

			seeds, err := dialogue.LoadSeeds(seedsPath)
			if err != nil {
				return err
			}

			var opts []batch.Option
			if bucket != "" {
				storage, err := cfg.newStorage(ctx, bucket)
				if err != nil {
					return err
				}
				opts = append(opts, batch.WithArchive(storage))
			}

			bcfg := batch.Config{
				Personas:      toPersonas(personas),
				Variants:      toVariants(variants),
				Conversations: int(conversations),
				MaxTurns:      int(maxTurns),
				MemoryEnabled: memoryEnabled,
				Location:      location,
				Workers:       int(workers),
				OutputDir:     outputDir,
				SeedBase:      seedBase,
				Dialogue: dialogue.Config{
					Seeds:        seeds,
					WindowBudget: int(windowBudget),
					Filter:       filterConfig(similarity, ngramRatio, int(minWords)),
				},
			}

			results, err := batch.New(loop, opts...).Run(ctx, bcfg)
			if err != nil {
				return err
			}

			var booked, failed int
			for _, res := range results {
				if res.Error != "" {
					failed++
					continue
				}
				if v := res.Conversation.LastVerdict(); v != nil && v.Outcome == model.OutcomeBooked {
					booked++
				}
			}
			fmt.Fprintf(c.Root().Writer, "Completed %d conversations (%d booked, %d failed)\n",
				len(results), booked, failed)

			return nil
		},
	}
}

func filterConfig(similarity, ngramRatio float64, minWords int) filter.Config {
	fcfg := filter.DefaultConfig()
	fcfg.SimilarityThreshold = similarity
	fcfg.NGramRatioThreshold = ngramRatio
	fcfg.MinWords = minWords
	return fcfg
}

func toPersonas(names []string) []model.Persona {
	personas := make([]model.Persona, 0, len(names))
	for _, name := range names {
		personas = append(personas, model.Persona(name))
	}
	return personas
}

func toVariants(names []string) []model.Variant {
	variants := make([]model.Variant, 0, len(names))
	for _, name := range names {
		variants = append(variants, model.Variant(name))
	}
	return variants
}

func parseVariant(name string) (model.Variant, error) {
	switch model.Variant(name) {
	case model.VariantPrompt, model.VariantFineTuned:
		return model.Variant(name), nil
	default:
		return "", goerr.New("unknown assistant variant", goerr.V("variant", name))
	}
}
