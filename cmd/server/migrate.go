package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.store.Migrate(cmd.Context()); err != nil {
			rt.logger.Error("migrations failed", zap.Error(err))
			return err
		}
		rt.logger.Info("migrations applied")
		return nil
	},
}
