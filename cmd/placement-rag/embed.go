package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/upb/placement-rag/app"
	"github.com/upb/placement-rag/services/embedding"
	"go.uber.org/zap"
)

func newEmbedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "embed",
		Short: "Embed every offer that has no embedding yet",
		Long: `embed renders each pending offer with its student and company, requests an
embedding from the configured provider and stores it. Offers that already carry
an embedding are left untouched, so the command can be re-run at any time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := c.embed(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func (c *cli) embed(ctx context.Context) (*embedding.Summary, error) {
	deps, err := app.NewDependencies(ctx, c.cfg, c.logger, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(context.Background()); err != nil {
			c.logger.Error("error closing dependencies", zap.Error(err))
		}
	}()

	return deps.Embedding.Run(ctx)
}

func printSummary(w io.Writer, s *embedding.Summary) {
	if s.Pending == 0 {
		fmt.Fprintln(w, "All offers already have embeddings.")
		return
	}
	fmt.Fprintf(w, "Created embeddings for %d new offers.\n", s.Embedded)
	if skipped := s.Skipped(); skipped > 0 {
		fmt.Fprintf(w, "Skipped %d offers (failed: %d, dimension mismatch: %d, missing student or company: %d).\n",
			skipped, s.Failed, s.DimensionMismatch, s.JoinMissing)
	}
}
