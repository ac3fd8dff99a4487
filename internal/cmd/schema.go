package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/cpm/internal/config"
	"github.com/meikuraledutech/cpm/postgres"
)

var errNoDatabase = errors.New("database.url is not set")

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or drop the PostgreSQL tables",
}

var schemaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the project tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPostgres(cmd, func(s *postgres.PGStore) error {
			if err := s.CreateSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema created")
			return nil
		})
	},
}

var schemaDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the project tables and all stored projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPostgres(cmd, func(s *postgres.PGStore) error {
			if err := s.DropSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema dropped")
			return nil
		})
	},
}

func init() {
	schemaCmd.AddCommand(schemaCreateCmd, schemaDropCmd)
	rootCmd.AddCommand(schemaCmd)
}

func withPostgres(cmd *cobra.Command, fn func(*postgres.PGStore) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errNoDatabase
	}
	pool, err := connect(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(postgres.New(pool))
}
