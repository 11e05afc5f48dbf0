package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/agent"
	"github.com/urfave/cli/v3"
)

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Inspect and maintain long-term persona profiles",
		Commands: []*cli.Command{
			profileShowCommand(),
			profileListCommand(),
			profileCleanCommand(),
		},
	}
}

func profileShowCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "show",
		Usage:     "Print one persona profile as JSON",
		ArgsUsage: "<persona>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			personaID := c.Args().First()
			if personaID == "" {
				return goerr.New("persona is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			profile, err := repo.GetProfile(ctx, personaID)
			if err != nil {
				return err
			}

			return printJSON(c, profile)
		},
	}
}

func profileListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List stored persona profiles",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			profiles, err := repo.ListProfiles(ctx)
			if err != nil {
				return err
			}

			if len(profiles) == 0 {
				fmt.Fprintf(c.Root().Writer, "No profiles stored\n")
				return nil
			}

			for _, profile := range profiles {
				fmt.Fprintf(c.Root().Writer, "%-16s sessions=%-4d notes=%-3d updated=%s\n",
					profile.PersonaID, profile.Sessions, len(profile.Notes),
					profile.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// profileCleanCommand drops conversational chatter that leaked into
// profile notes, so the prompt digest stays preference-only.
func profileCleanCommand() *cli.Command {
	var (
		cfg    config
		dryRun bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Report what would be removed without saving",
			Destination: &dryRun,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "clean",
		Usage:     "Remove chatter notes from a persona profile",
		ArgsUsage: "<persona>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			personaID := c.Args().First()
			if personaID == "" {
				return goerr.New("persona is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			profile, err := repo.GetProfile(ctx, personaID)
			if err != nil {
				return err
			}

			removed := agent.ScrubNotes(profile)
			if dryRun {
				fmt.Fprintf(c.Root().Writer, "Would remove %d of %d notes\n",
					removed, removed+len(profile.Notes))
				return nil
			}

			if removed > 0 {
				if err := repo.PutProfile(ctx, profile); err != nil {
					return err
				}
			}

			fmt.Fprintf(c.Root().Writer, "Removed %d notes, %d kept\n", removed, len(profile.Notes))
			return nil
		},
	}
}

func printJSON(c *cli.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal output")
	}
	fmt.Fprintf(c.Root().Writer, "%s\n", data)
	return nil
}
