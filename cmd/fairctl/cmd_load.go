package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fairdash/internal/fairness/source"
	"fairdash/internal/fairness/store/postgres"
)

func newLoadCmd(g *globalFlags) *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Replace the PostgreSQL table contents with the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return errors.New("--database-url is required")
			}
			ctx := cmd.Context()
			rows, err := source.Load(ctx, g.dataPath, source.WithRegion(g.region))
			if err != nil {
				return err
			}
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer db.Close()
			if err := postgres.Load(ctx, db, g.table, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d rows into %s\n", len(rows), g.table)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", "", "PostgreSQL connection string")
	return cmd
}
