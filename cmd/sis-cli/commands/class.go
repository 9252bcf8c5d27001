package commands

import (
	"fmt"

	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/cmd/sis-cli/utils"
	"sisassist-backend/internal/scrapers/sis"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(classCmd)
}

var classCmd = &cobra.Command{
	Use:   "class <course code or name>",
	Short: "Shows the attendance and per term grade breakdown of a class.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		res, err := withSession(ctx, g, func(session *sis.Session) (classResult, error) {
			return fetchClass(ctx, session, args[0])
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s %s (%s)\n", res.class.CourseCode, res.class.Name, res.class.Teacher)

		attendance := utils.NewTable()
		attendance.SetTitle("Attendance")
		attendance.AppendHeader(table.Row{"", "T1", "T2", "T3", "T4", "Total"})
		for _, row := range []struct {
			label  string
			counts sis.AttendanceCounts
		}{
			{"Absent", res.detail.Attendance.Absent},
			{"Tardy", res.detail.Attendance.Tardy},
			{"Dismissed", res.detail.Attendance.Dismissed},
		} {
			attendance.AppendRow(table.Row{
				row.label,
				row.counts.Terms[0],
				row.counts.Terms[1],
				row.counts.Terms[2],
				row.counts.Terms[3],
				row.counts.Total,
			})
		}
		attendance.Render()

		grades := utils.NewTable()
		grades.SetTitle("Grades")
		grades.AppendHeader(table.Row{"", "T1", "T2", "T3", "T4"})
		for c, category := range sis.Categories {
			weights := table.Row{fmt.Sprintf("%s weight", category)}
			scores := table.Row{category.String()}
			for _, term := range res.detail.Terms {
				weights = append(weights, term.Categories[c].Weight)
				scores = append(scores, term.Categories[c].Score.String())
			}
			grades.AppendRow(weights)
			grades.AppendRow(scores)
		}
		grades.AppendSeparator()
		totals := table.Row{"total"}
		for _, term := range res.detail.Terms {
			if !term.TotalDefined {
				totals = append(totals, "-")
				continue
			}
			totals = append(totals, fmt.Sprintf("%.2f", term.Total))
		}
		grades.AppendRow(totals)
		grades.Render()
		return nil
	},
}
