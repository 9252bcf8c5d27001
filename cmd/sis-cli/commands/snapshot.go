package commands

import (
	"context"
	"fmt"
	"log/slog"

	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/internal/scrapers/sis"
	"sisassist-backend/internal/store"

	"github.com/spf13/cobra"
)

const report_snapshot = "snapshot"

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

// takeSnapshot stores today's grade of every class that has one.
func takeSnapshot(ctx context.Context, g *globals.Value) (int, error) {
	classes, err := withSession(ctx, g, func(session *sis.Session) ([]sis.ClassSummary, error) {
		return session.Classes(ctx)
	})
	if err != nil {
		return 0, err
	}

	req := store.PushRequest{
		Time: g.Clock.Now(),
		User: g.Config.Username,
	}
	for _, c := range classes {
		if !c.Grade.Posted {
			continue
		}
		req.Courses = append(req.Courses, store.CourseSnapshot{
			Course: c.CourseCode,
			Value:  c.Grade.Value,
		})
	}

	err = g.Store.PushGrades(ctx, req)
	if err != nil {
		return 0, err
	}
	g.Tel.ReportCount(report_snapshot, int64(len(req.Courses)))
	return len(req.Courses), nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Stores the current grade of every class, repeated snapshots on the same day replace each other.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		n, err := takeSnapshot(cmd.Context(), g)
		if err != nil {
			return err
		}
		slog.Info("snapshot taken", "courses", n)
		fmt.Printf("stored %d grades\n", n)
		return nil
	},
}
