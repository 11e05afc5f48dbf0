package cli

import (
	"context"
	"fmt"

	"github.com/simforge/wander/pkg/adapter"
	"github.com/simforge/wander/pkg/agent"
	"github.com/simforge/wander/pkg/model"
	"github.com/urfave/cli/v3"
)

// exportCommand flattens stored conversations into BigQuery rows for
// evaluation queries (booking rate per persona/variant, stall rates,
// turn counts).
func exportCommand() *cli.Command {
	var (
		cfg     config
		dataset string
		table   string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "dataset",
			Usage:       "BigQuery dataset ID",
			Value:       "wander",
			Sources:     cli.EnvVars("WANDER_BQ_DATASET"),
			Destination: &dataset,
		},
		&cli.StringFlag{
			Name:        "table",
			Usage:       "BigQuery table name",
			Value:       "conversations",
			Sources:     cli.EnvVars("WANDER_BQ_TABLE"),
			Destination: &table,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export stored conversations to BigQuery",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			bq, err := cfg.newBigQuery(ctx)
			if err != nil {
				return err
			}

			convs, err := repo.ListConversations(ctx)
			if err != nil {
				return err
			}

			rows := make([]*adapter.ConversationRow, 0, len(convs))
			for _, conv := range convs {
				rows = append(rows, conversationRow(conv))
			}

			if err := bq.InsertConversations(ctx, dataset, table, rows); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Exported %d conversations to %s.%s\n",
				len(rows), dataset, table)
			return nil
		},
	}
}

func conversationRow(conv *model.Conversation) *adapter.ConversationRow {
	booked := false
	if v := conv.LastVerdict(); v != nil {
		booked = v.Outcome == model.OutcomeBooked
	}

	return &adapter.ConversationRow{
		SessionID:     string(conv.ID),
		Persona:       string(conv.Persona),
		Variant:       string(conv.Variant),
		MemoryEnabled: conv.MemoryEnabled,
		Location:      conv.Location,
		Reason:        string(conv.Reason),
		Degenerate:    conv.Degenerate,
		NumTurns:      len(conv.Turns),
		Booked:        booked,
		Transcript:    agent.RenderTranscript(conv.Turns),
		StartedAt:     conv.StartedAt,
		EndedAt:       conv.EndedAt,
	}
}
