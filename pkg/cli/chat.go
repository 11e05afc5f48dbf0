package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/agent"
	"github.com/simforge/wander/pkg/memory"
	"github.com/simforge/wander/pkg/model"
	"github.com/urfave/cli/v3"
)

// chatCommand lets a human play the traveler against the concierge.
// Rounds run through the same retrieval, judge and memory path as the
// simulated loop.
func chatCommand() *cli.Command {
	var (
		cfg           config
		personaName   string
		variantName   string
		location      string
		memoryEnabled bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "persona",
			Usage:       "Persona whose profile backs this session",
			Value:       string(model.PersonaExplorer),
			Destination: &personaName,
		},
		&cli.StringFlag{
			Name:        "variant",
			Usage:       "Assistant variant (prompt, ft)",
			Value:       string(model.VariantPrompt),
			Destination: &variantName,
		},
		&cli.StringFlag{
			Name:        "location",
			Usage:       "City to search hotels in",
			Value:       "Amsterdam",
			Destination: &location,
		},
		&cli.BoolFlag{
			Name:        "memory",
			Usage:       "Load the persona profile and update it afterwards",
			Destination: &memoryEnabled,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, retrievalFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Talk to the booking assistant yourself",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			variant, err := parseVariant(variantName)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			llm, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			conciergeLLM := llm
			if variant == model.VariantFineTuned {
				if ft, err := cfg.newFineTuned(ctx); err != nil {
					return err
				} else if ft != nil {
					conciergeLLM = ft
				}
			}

			catalog, err := cfg.newCatalog()
			if err != nil {
				return err
			}

			store := memory.NewStore(repo)

			var opts []agent.ConciergeOption
			if memoryEnabled {
				profile := store.Load(ctx, personaName)
				if digest := profile.PromptSummary(); digest != "" {
					opts = append(opts, agent.WithProfileDigest(digest))
				}
			}

			concierge, err := agent.NewConcierge(conciergeLLM, variant, opts...)
			if err != nil {
				return err
			}
			judge := agent.NewJudge(llm)
			profiler := agent.NewProfiler(llm)

			conv := model.NewConversation(model.Persona(personaName), variant, memoryEnabled, location)

			rl, err := readline.New("you> ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat with the booking assistant. Type 'exit' to quit.\n")

			reason := model.ReasonDeclined
			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt || err == io.EOF {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}
				if line == "exit" {
					break
				}
				if line == "" {
					continue
				}

				if _, err := conv.Append(model.SpeakerUser, line); err != nil {
					return err
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " searching and thinking..."
				sp.Start()

				hotels, err := catalog.Search(ctx, model.SearchQuery{Location: location})
				if err != nil {
					sp.Stop()
					return err
				}

				reply, err := concierge.Respond(ctx, conv.Turns, hotels)
				sp.Stop()
				if err != nil {
					return err
				}

				if _, err := conv.Append(model.SpeakerAssistant, reply); err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "assistant> %s\n", reply)

				verdict, err := judge.Evaluate(ctx, conv)
				if err != nil {
					return err
				}
				if err := conv.AddVerdict(*verdict); err != nil {
					return err
				}
				if verdict.Outcome.Terminal() {
					reason = verdict.Outcome.Reason()
					fmt.Fprintf(c.Root().Writer, "\nSession closed: %s\n", verdict.Outcome)
					break
				}
			}

			if len(conv.Turns) == 0 {
				return nil
			}

			conv.Seal(reason)

			if memoryEnabled {
				learned, err := profiler.Infer(ctx, conv)
				if err == nil {
					_ = store.Update(ctx, personaName, func(profile *model.Profile) {
						profile.Merge(learned)
					})
				}
			}

			if err := repo.PutConversation(ctx, conv); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Saved session %s (%d turns)\n", conv.ID, len(conv.Turns))
			return nil
		},
	}
}
