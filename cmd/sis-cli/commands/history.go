package commands

import (
	"fmt"

	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/cmd/sis-cli/utils"
	"sisassist-backend/pkg/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [course code]",
	Short: "Shows the stored grade snapshots, of one course or of all courses.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())

		series, err := g.Store.PullGrades(cmd.Context(), g.Config.Username)
		if err != nil {
			return err
		}

		var matchers []string
		if len(args) > 0 {
			matchers = []string{textutil.NormalizeName(args[0])}
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Course", "Date", "Grade"})
		found := false
		for _, course := range series {
			if matchers != nil && !textutil.MatchName(course.Course, matchers) {
				continue
			}
			found = true
			for _, snapshot := range course.Snapshots {
				t.AppendRow(table.Row{
					course.Course,
					snapshot.Time.Format("2006-01-02 15:04"),
					fmt.Sprintf("%g", snapshot.Value),
				})
			}
			t.AppendSeparator()
		}
		if !found {
			return fmt.Errorf("no snapshots stored")
		}
		t.Render()
		return nil
	},
}
