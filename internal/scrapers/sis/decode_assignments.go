package sis

import (
	"fmt"
	"time"

	"sisassist-backend/pkg/htmlgrid"
	"sisassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var assignmentSpec = htmlgrid.Spec{
	CellClass: dataCellClass,
	Columns: []htmlgrid.Column{
		{Field: "name", Transform: htmlgrid.Text},
		{Field: "assigned", Transform: htmlgrid.Text},
		{Field: "due", Transform: htmlgrid.Text},
		{Field: "meeting_days", Transform: htmlgrid.Text},
		{
			Field:     "grade",
			Transform: gradeTable,
			Extra:     []string{"score", "points"},
		},
		{Field: "feedback", Transform: htmlgrid.Text},
	},
}

// gradeTable decodes the small table inside of an assignment's grade cell, it has a single
// row for ungraded assignments and 3 rows (percent, score, parenthesized points) otherwise.
func gradeTable(cell *goquery.Selection, field string, out htmlgrid.Record) error {
	rows := cell.Find("table tr")
	switch rows.Length() {
	case 1:
		out[field] = htmlgrid.TextValue(Ungraded)
		out["score"] = htmlgrid.TextValue(Ungraded)
		out["points"] = htmlgrid.TextValue(Ungraded)
	case 3:
		out[field] = htmlgrid.CoercePercent(rows.Eq(0).Text())
		score := htmlutil.CleanText(rows.Eq(1).Text())
		if score == "" {
			out["score"] = htmlgrid.Unset
		} else {
			out["score"] = htmlgrid.TextValue(score)
		}
		out["points"] = htmlgrid.CoerceParenthesized(rows.Eq(2).Text())
	default:
		return fmt.Errorf("grade table has %d rows", rows.Length())
	}
	return nil
}

var dateLayouts = []string{"1/2/2006", "2006-01-02"}

func parseDate(text string) (time.Time, error) {
	if text == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		date, err := time.Parse(layout, text)
		if err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date", text)
}

func markOf(v htmlgrid.Value) Mark {
	return Mark{Text: v.Text, Number: v.Number, Numeric: v.Numeric}
}

func decodeAssignments(doc *goquery.Document) ([]Assignment, error) {
	table := doc.Find("table#assignments")
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: could not find assignment list", ErrDecode)
	}
	records, err := htmlgrid.Decode(table, assignmentSpec)
	if err != nil {
		return nil, fmt.Errorf("%w: assignment list: %w", ErrDecode, err)
	}

	assignments := make([]Assignment, len(records))
	for i, r := range records {
		assigned, err := parseDate(r.String("assigned"))
		if err != nil {
			return nil, fmt.Errorf("%w: assignment %d: assigned: %w", ErrDecode, i, err)
		}
		due, err := parseDate(r.String("due"))
		if err != nil {
			return nil, fmt.Errorf("%w: assignment %d: due: %w", ErrDecode, i, err)
		}
		assignments[i] = Assignment{
			Name:        r.String("name"),
			Assigned:    assigned,
			Due:         due,
			MeetingDays: r.String("meeting_days"),
			Grade:       markOf(r["grade"]),
			Score:       markOf(r["score"]),
			Points:      markOf(r["points"]),
			Feedback:    r.String("feedback"),
		}
	}
	return assignments, nil
}
