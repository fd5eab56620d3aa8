package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upb/placement-rag/app"
	"github.com/upb/placement-rag/repositories"
	"go.uber.org/zap"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the pgvector extension and placement tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.migrate(cmd.Context())
		},
	}
}

func (c *cli) migrate(ctx context.Context) error {
	deps, err := app.NewStoreDependencies(ctx, c.cfg, c.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := deps.Close(context.Background()); err != nil {
			c.logger.Error("error closing dependencies", zap.Error(err))
		}
	}()

	return deps.TxManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		return deps.DB.InitSchema(ctx, c.cfg.RAG.Dimensions)
	})
}
