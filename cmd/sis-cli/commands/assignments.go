package commands

import (
	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/cmd/sis-cli/utils"
	"sisassist-backend/internal/scrapers/sis"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(assignmentsCmd)
}

var assignmentsCmd = &cobra.Command{
	Use:   "assignments <course code or name>",
	Short: "Lists the assignments of a class.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		assignments, err := withSession(ctx, g, func(session *sis.Session) ([]sis.Assignment, error) {
			class, err := findClass(ctx, session, args[0])
			if err != nil {
				return nil, err
			}
			return session.Assignments(ctx, class.Token)
		})
		if err != nil {
			return err
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Assignment", "Assigned", "Due", "Days", "Grade", "Score", "Points", "Feedback"})
		for _, a := range assignments {
			t.AppendRow(table.Row{
				a.Name,
				formatDate(a.Assigned),
				formatDate(a.Due),
				a.MeetingDays,
				a.Grade,
				a.Score,
				a.Points,
				a.Feedback,
			})
		}
		t.Render()
		return nil
	},
}
