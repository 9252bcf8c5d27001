package sis

import (
	"fmt"

	"sisassist-backend/pkg/htmlgrid"

	"github.com/PuerkitoBio/goquery"
)

var classListSpec = htmlgrid.Spec{
	CellClass: dataCellClass,
	Columns: []htmlgrid.Column{
		{Field: "token", Transform: htmlgrid.Attr("input[name=select]", "data-token")},
		{Field: "course_code", Transform: htmlgrid.Text},
		{Field: "name", Transform: htmlgrid.Text},
		{Field: "term", Transform: htmlgrid.Text},
		{Field: htmlgrid.Ignore},
		{
			Field:     "grade",
			Transform: htmlgrid.SplitGrade("letter_grade"),
			Extra:     []string{"letter_grade"},
		},
		{Field: "teacher", Transform: htmlgrid.Text},
		{Field: "teacher_email", Transform: htmlgrid.Text},
		{Field: "room", Transform: htmlgrid.Text},
		{Field: "absent"},
		{Field: "tardy"},
		{Field: "dismissed"},
	},
}

func decodeClasses(doc *goquery.Document, origin uint64) ([]ClassSummary, error) {
	table := doc.Find("table#classList")
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: could not find class list", ErrDecode)
	}
	records, err := htmlgrid.Decode(table, classListSpec)
	if err != nil {
		return nil, fmt.Errorf("%w: class list: %w", ErrDecode, err)
	}

	classes := make([]ClassSummary, len(records))
	for i, r := range records {
		var counts [3]int
		for j, field := range []string{"absent", "tardy", "dismissed"} {
			counts[j], err = count(r, field)
			if err != nil {
				return nil, fmt.Errorf("%w: class list row %d: %w", ErrDecode, i, err)
			}
		}

		grade, posted := r.Float("grade")
		classes[i] = ClassSummary{
			Token:        ClassToken{value: r.String("token"), origin: origin},
			CourseCode:   r.String("course_code"),
			Name:         r.String("name"),
			Term:         r.String("term"),
			Grade:        Score{Value: grade, Posted: posted},
			LetterGrade:  r.String("letter_grade"),
			Teacher:      r.String("teacher"),
			TeacherEmail: r.String("teacher_email"),
			Room:         r.String("room"),
			Absent:       counts[0],
			Tardy:        counts[1],
			Dismissed:    counts[2],
		}
	}
	return classes, nil
}
