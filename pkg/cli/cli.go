package cli

import (
	"context"
	"os"

	"github.com/simforge/wander/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "wander",
		Usage: "Hotel booking negotiation dialogue simulator",
		Commands: []*cli.Command{
			runCommand(),
			chatCommand(),
			profileCommand(),
			exportCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// withLogger builds the configured logger and attaches it to the
// context so every layer below picks it up via logging.From.
func (cfg *config) withLogger(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, cfg.logFormat, os.Stdout)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}
