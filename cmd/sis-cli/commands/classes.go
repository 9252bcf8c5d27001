package commands

import (
	"context"

	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/cmd/sis-cli/utils"
	"sisassist-backend/internal/scrapers/sis"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(classesCmd)
}

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Lists all classes with their current grade and attendance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		classes, err := withSession(ctx, g, func(session *sis.Session) ([]sis.ClassSummary, error) {
			return session.Classes(ctx)
		})
		if err != nil {
			return err
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Course", "Name", "Term", "Grade", "Teacher", "Room", "Abs", "Tdy", "Dis"})
		for _, c := range classes {
			t.AppendRow(table.Row{
				c.CourseCode,
				c.Name,
				c.Term,
				formatGrade(c),
				c.Teacher,
				c.Room,
				c.Absent,
				c.Tardy,
				c.Dismissed,
			})
		}
		t.Render()
		return nil
	},
}

func formatGrade(c sis.ClassSummary) string {
	if !c.Grade.Posted {
		return c.LetterGrade
	}
	if c.LetterGrade == "" {
		return c.Grade.String()
	}
	return c.Grade.String() + " " + c.LetterGrade
}

// classResult is what the class command shows.
type classResult struct {
	class  sis.ClassSummary
	detail sis.ClassDetail
}

func fetchClass(ctx context.Context, session *sis.Session, query string) (classResult, error) {
	class, err := findClass(ctx, session, query)
	if err != nil {
		return classResult{}, err
	}
	detail, err := session.Class(ctx, class.Token)
	if err != nil {
		return classResult{}, err
	}
	return classResult{class: class, detail: detail}, nil
}
