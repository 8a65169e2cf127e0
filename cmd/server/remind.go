package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run one reminder dispatch pass and print its summary as JSON",
	Long: `remind performs a single dispatch pass, the same one the scheduler runs,
and writes the run summary to stdout. It exits non-zero when the run did not
complete, so it can be driven by cron or a platform scheduler.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := setup(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		dispatcher, closeEvents, err := rt.newDispatcher()
		if err != nil {
			return err
		}
		defer closeEvents()

		sum := dispatcher.Run(ctx)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return err
		}

		if !sum.OK {
			return errors.New(sum.Error)
		}
		return nil
	},
}
