package main

import (
	"fmt"

	"github.com/ahsanfayaz52/hopperhelps/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		// db.Open migrates before returning.
		conn, err := db.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer conn.Close()

		version, err := db.MigrationVersion(cmd.Context(), conn, cfg.DBDriver)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", cfg.DBDriver, version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
