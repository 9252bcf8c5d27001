package commands

import (
	"fmt"
	"time"

	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/cmd/sis-cli/utils"
	"sisassist-backend/internal/scrapers/sis"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Shows the weekly schedule, the current day and period are marked with a *.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		schedule, err := withSession(ctx, g, func(session *sis.Session) (sis.Schedule, error) {
			return session.Schedule(ctx)
		})
		if err != nil {
			return err
		}

		t := utils.NewTable()
		header := table.Row{"Period"}
		for _, code := range schedule.DayOrder {
			name := fmt.Sprintf("%s (%s)", schedule.DayNames[code], code)
			if code == schedule.CurrentDay {
				name += " *"
			}
			header = append(header, name)
		}
		t.AppendHeader(header)

		var labels []string
		cells := map[string]map[string]string{}
		for _, code := range schedule.DayOrder {
			for _, p := range schedule.Days[code] {
				if _, ok := cells[p.Label]; !ok {
					cells[p.Label] = map[string]string{}
					labels = append(labels, p.Label)
				}
				text := fmt.Sprintf("%s %s\n%s", p.CourseCode, p.Name, p.Room)
				if p.Current {
					text += " *"
				}
				cells[p.Label][code] = text
			}
		}
		for _, label := range labels {
			row := table.Row{label}
			for _, code := range schedule.DayOrder {
				row = append(row, cells[label][code])
			}
			t.AppendRow(row)
			t.AppendSeparator()
		}
		t.Render()
		return nil
	},
}
