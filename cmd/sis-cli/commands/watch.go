package commands

import (
	"context"
	"log/slog"
	"time"

	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/internal/components/chrono"
	"sisassist-backend/internal/components/telemetry"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Takes a grade snapshot on the configured cron schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		telemetry.InstrumentPerfStats(ctx, g.Tel)

		cron := chrono.NewStandardCron(g.Clock, g.Tel)
		defer func() {
			// ctx is already done here, give a running snapshot a moment to land
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			cron.Stop(stopCtx)
		}()

		err := cron.Cron(g.Config.Watch.Cron, func() {
			n, err := takeSnapshot(ctx, g)
			if err != nil {
				g.Tel.ReportBroken(report_snapshot, err)
				return
			}
			slog.Info("snapshot taken", "courses", n)
		})
		if err != nil {
			return err
		}

		slog.Info("watching", "cron", g.Config.Watch.Cron)
		<-ctx.Done()
		return nil
	},
}
