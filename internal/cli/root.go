package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/app"
	"github.com/user/skillgen-service/pkg/config"
	"github.com/user/skillgen-service/pkg/logger"
)

var (
	envFile      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "skillgen",
	Short: "Generate agent skills from documentation sites",
	Long: `skillgen crawls a documentation site, asks a language model to split it
into self-contained skills and stores them on a project.

Configuration is read from the environment and an optional .env file,
the same way the API server reads it.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command. Cancelling ctx aborts an in-flight run.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional env file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", FormatYAML, "Output format: yaml, json or table")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig reads configuration and builds a stderr logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	if err := validateFormat(outputFormat); err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return cfg, logger.New(os.Stderr, level), nil
}

// setup loads configuration and wires every dependency, databases included.
func setup(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	deps, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return deps, log, nil
}
