package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/adapter"
	"github.com/simforge/wander/pkg/memory"
	"github.com/simforge/wander/pkg/repository"
	"github.com/simforge/wander/pkg/retrieval"
	"github.com/simforge/wander/pkg/usecase/dialogue"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository
	dataDir  string
	project  string
	database string

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
	tunedModel     string

	// Retrieval
	catalogPath string

	// Logging
	logLevel  string
	logFormat string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Local directory for conversations and profiles",
			Value:       "./wander-data",
			Sources:     cli.EnvVars("WANDER_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID (switches persistence to Firestore)",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("WANDER_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("WANDER_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Generative model for traveler, judge and profiler",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.StringFlag{
			Name:        "tuned-model",
			Usage:       "Tuned model resource for the ft assistant variant",
			Sources:     cli.EnvVars("WANDER_TUNED_MODEL"),
			Destination: &cfg.tunedModel,
		},
	}
}

// retrievalFlags returns flags for the hotel catalog
func retrievalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "Path to a hotel catalog JSON file (embedded catalog when empty)",
			Sources:     cli.EnvVars("WANDER_CATALOG"),
			Destination: &cfg.catalogPath,
		},
	}
}

// newRepository creates a repository instance. A Google Cloud project
// selects Firestore, otherwise records go to the local data directory.
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project != "" {
		if cfg.database == "" {
			return nil, goerr.New("database is required")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		return repo, nil
	}

	repo, err := repository.NewLocal(cfg.dataDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create local repository")
	}
	return repo, nil
}

// newGemini creates the shared Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.LLM, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.geminiModel))
}

// newFineTuned creates the tuned-model adapter, or nil when no tuned
// model is configured (the loop then reuses the shared adapter).
func (cfg *config) newFineTuned(ctx context.Context) (adapter.LLM, error) {
	if cfg.tunedModel == "" {
		return nil, nil
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.tunedModel))
}

// newBigQuery creates the conversation export client
func (cfg *config) newBigQuery(ctx context.Context) (adapter.BigQuery, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	return adapter.NewBigQuery(ctx, cfg.project)
}

// newStorage creates the transcript archive on Cloud Storage
func (cfg *config) newStorage(ctx context.Context, bucketName string) (adapter.Storage, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	storage, err := adapter.NewStorage(ctx, bucketName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newCatalog creates the hotel retrieval client
func (cfg *config) newCatalog() (retrieval.Client, error) {
	catalog, err := retrieval.NewJSONClient(cfg.catalogPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load hotel catalog")
	}
	return catalog, nil
}

// newLoop wires the full dialogue loop from the configured adapters
func (cfg *config) newLoop(ctx context.Context) (*dialogue.Loop, repository.Repository, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	llm, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, nil, err
	}

	ftLLM, err := cfg.newFineTuned(ctx)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := cfg.newCatalog()
	if err != nil {
		return nil, nil, err
	}

	loop := dialogue.New(dialogue.Input{
		LLM:          llm,
		FineTunedLLM: ftLLM,
		Catalog:      catalog,
		Repo:         repo,
		Memory:       memory.NewStore(repo),
	})

	return loop, repo, nil
}
