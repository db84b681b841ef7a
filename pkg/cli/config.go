package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/engram/pkg/usecase/retrieval"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values
type config struct {
	// Store
	baseDir      string
	halfLifeDays float64

	// Logging
	logLevel string

	// Optional YAML config file
	configFile string

	// Gateway
	geminiProject  string
	geminiLocation string
	geminiModel    string
	embeddingModel string

	// Archive
	archiveBucket string
}

// fileConfig is the YAML shape of the optional config file. Values set
// here fill in fields left empty by flags and environment.
type fileConfig struct {
	BaseDir      string  `yaml:"base_dir"`
	HalfLifeDays float64 `yaml:"half_life_days"`
	LogLevel     string  `yaml:"log_level"`

	Gemini struct {
		Project        string `yaml:"project"`
		Location       string `yaml:"location"`
		Model          string `yaml:"model"`
		EmbeddingModel string `yaml:"embedding_model"`
	} `yaml:"gemini"`

	ArchiveBucket string `yaml:"archive_bucket"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-dir",
			Aliases:     []string{"d"},
			Usage:       "Directory holding the memory store files",
			Value:       ".engram",
			Sources:     cli.EnvVars("ENGRAM_BASE_DIR"),
			Destination: &cfg.baseDir,
		},
		&cli.FloatFlag{
			Name:        "half-life",
			Usage:       "Decay half-life in days",
			Value:       0,
			Sources:     cli.EnvVars("ENGRAM_HALF_LIFE_DAYS"),
			Destination: &cfg.halfLifeDays,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ENGRAM_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("ENGRAM_CONFIG"),
			Destination: &cfg.configFile,
		},
	}
}

// gatewayFlags returns flags for the inference gateway with destination config
func gatewayFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"),
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
			Usage:       "Generative model name",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Embedding model name",
			Sources:     cli.EnvVars("GEMINI_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
	}
}

// archiveFlags returns flags for the optional forgetting archive
func archiveFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for archiving forgotten records",
			Sources:     cli.EnvVars("ENGRAM_ARCHIVE_BUCKET"),
			Destination: &cfg.archiveBucket,
		},
	}
}

// load merges the optional YAML config file into fields not already
// set by flags or environment.
func (cfg *config) load() error {
	if cfg.configFile == "" {
		return nil
	}

	raw, err := os.ReadFile(cfg.configFile)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configFile))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configFile))
	}

	if cfg.baseDir == ".engram" && fc.BaseDir != "" {
		cfg.baseDir = fc.BaseDir
	}
	if cfg.halfLifeDays == 0 && fc.HalfLifeDays > 0 {
		cfg.halfLifeDays = fc.HalfLifeDays
	}
	if cfg.logLevel == "info" && fc.LogLevel != "" {
		cfg.logLevel = fc.LogLevel
	}
	if cfg.geminiProject == "" {
		cfg.geminiProject = fc.Gemini.Project
	}
	if fc.Gemini.Location != "" && cfg.geminiLocation == "us-central1" {
		cfg.geminiLocation = fc.Gemini.Location
	}
	if cfg.geminiModel == "" {
		cfg.geminiModel = fc.Gemini.Model
	}
	if cfg.embeddingModel == "" {
		cfg.embeddingModel = fc.Gemini.EmbeddingModel
	}
	if cfg.archiveBucket == "" {
		cfg.archiveBucket = fc.ArchiveBucket
	}

	return nil
}

// setup merges the config file and installs the configured logger into
// the context. Every command action calls this first.
func (cfg *config) setup(ctx context.Context) (context.Context, error) {
	if err := cfg.load(); err != nil {
		return ctx, err
	}

	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger), nil
}

// newRepository creates a file store rooted at the configured base dir
func (cfg *config) newRepository() (repository.Repository, error) {
	if cfg.baseDir == "" {
		return nil, goerr.New("base-dir is required")
	}

	var opts []repository.Option
	if cfg.halfLifeDays > 0 {
		opts = append(opts, repository.WithHalfLife(cfg.halfLifeDays))
	}
	return repository.New(cfg.baseDir, opts...), nil
}

// newGateway creates a Gemini backed inference gateway
func (cfg *config) newGateway(ctx context.Context) (adapter.Gateway, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	var opts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
	}
	if cfg.embeddingModel != "" {
		opts = append(opts, adapter.WithEmbeddingModel(cfg.embeddingModel))
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
}

// newMemory builds the memory usecase, attaching the archive when a
// bucket is configured.
func (cfg *config) newMemory(ctx context.Context, repo repository.Repository) (*memory.UseCase, error) {
	var opts []memory.Option
	if cfg.halfLifeDays > 0 {
		opts = append(opts, memory.WithHalfLife(cfg.halfLifeDays))
	}
	if cfg.archiveBucket != "" {
		archive, err := adapter.NewArchive(ctx, cfg.archiveBucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create archive")
		}
		opts = append(opts, memory.WithArchive(archive))
	}
	return memory.New(repo, opts...), nil
}

// newRetrieval builds the retrieval usecase
func (cfg *config) newRetrieval(ctx context.Context, repo repository.Repository) (*retrieval.UseCase, error) {
	gateway, err := cfg.newGateway(ctx)
	if err != nil {
		return nil, err
	}
	return retrieval.New(repo, gateway), nil
}
