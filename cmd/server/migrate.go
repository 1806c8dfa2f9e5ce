package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Zodbot/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dialect, err := db.ParseDialect(cfg.Database.Driver)
		if err != nil {
			return err
		}

		conn, err := db.Open(cmd.Context(), dialect, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()

		if err := db.Migrate(conn, dialect); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		logger.Info("migrations completed", zap.String("driver", string(dialect)))
		return nil
	},
}
