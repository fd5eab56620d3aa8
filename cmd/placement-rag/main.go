package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/placement-rag/config"
	"github.com/upb/placement-rag/internal/observability"
	"go.uber.org/zap"
)

// cli holds state shared by subcommands once the root pre-run has loaded it
type cli struct {
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "placement-rag",
		Short:         "Question answering over campus placement offers",
		Long:          `placement-rag embeds placement offers and answers questions about them from the most similar offers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&c.logLevel, "log-level", "L", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	f.StringVar(&c.logFormat, "log-format", "", "log format (json, console); overrides LOG_FORMAT")

	root.AddCommand(
		newServeCmd(c),
		newEmbedCmd(c),
		newMigrateCmd(c),
	)
	return root
}

func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.New(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.logLevel != "" {
		cfg.Observability.LogLevel = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Observability.LogFormat = c.logFormat
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger.With(zap.String("environment", cfg.Environment))
	return nil
}
