package sis

import (
	"fmt"

	"sisassist-backend/pkg/htmlgrid"

	"github.com/PuerkitoBio/goquery"
)

var termFields = [4]string{"term1", "term2", "term3", "term4"}

var attendanceSpec = htmlgrid.Spec{
	CellClass: dataCellClass,
	Columns: []htmlgrid.Column{
		{Field: "label", Transform: htmlgrid.Text},
		{Field: "term1"},
		{Field: "term2"},
		{Field: "term3"},
		{Field: "term4"},
		{Field: "total"},
	},
}

var gradesSpec = htmlgrid.Spec{
	CellClass: dataCellClass,
	Columns: []htmlgrid.Column{
		{Field: "label", Transform: htmlgrid.Text},
		{Field: "term1", Transform: htmlgrid.Percent},
		{Field: "term2", Transform: htmlgrid.Percent},
		{Field: "term3", Transform: htmlgrid.Percent},
		{Field: "term4", Transform: htmlgrid.Percent},
	},
}

const (
	attendanceRows = 3
	// 2 rows (weight, score) for each category followed by 2 summary rows
	gradeRows        = 2*len(Categories) + 2
	gradeSummaryRows = 2
)

func decodeClassDetail(doc *goquery.Document) (ClassDetail, error) {
	attendance, err := decodeAttendance(doc.Find("table#attendance"))
	if err != nil {
		return ClassDetail{}, fmt.Errorf("%w: attendance: %w", ErrDecode, err)
	}
	terms, err := decodeTermGrades(doc.Find("table#grades"))
	if err != nil {
		return ClassDetail{}, fmt.Errorf("%w: grades: %w", ErrDecode, err)
	}
	return ClassDetail{
		Attendance: attendance,
		Terms:      terms,
	}, nil
}

// count reads an integer cell, an empty cell counts as 0.
func count(r htmlgrid.Record, field string) (int, error) {
	v := r[field]
	if !v.Set {
		return 0, nil
	}
	if !v.Numeric {
		return 0, fmt.Errorf("%s: %q is not a number", field, v.Text)
	}
	return int(v.Number), nil
}

func decodeAttendanceCounts(r htmlgrid.Record) (AttendanceCounts, error) {
	var counts AttendanceCounts
	for i, field := range termFields {
		n, err := count(r, field)
		if err != nil {
			return AttendanceCounts{}, err
		}
		counts.Terms[i] = n
	}
	total, err := count(r, "total")
	if err != nil {
		return AttendanceCounts{}, err
	}
	counts.Total = total
	return counts, nil
}

func decodeAttendance(table *goquery.Selection) (Attendance, error) {
	if table.Length() == 0 {
		return Attendance{}, fmt.Errorf("could not find table")
	}
	records, err := htmlgrid.Decode(table, attendanceSpec)
	if err != nil {
		return Attendance{}, err
	}
	if len(records) != attendanceRows {
		return Attendance{}, fmt.Errorf("expected %d rows, got %d", attendanceRows, len(records))
	}

	var attendance Attendance
	for i, out := range []*AttendanceCounts{
		&attendance.Absent,
		&attendance.Tardy,
		&attendance.Dismissed,
	} {
		counts, err := decodeAttendanceCounts(records[i])
		if err != nil {
			return Attendance{}, fmt.Errorf("%s: %w", records[i].String("label"), err)
		}
		*out = counts
	}
	return attendance, nil
}

func decodeTermGrades(table *goquery.Selection) ([4]TermGrades, error) {
	var terms [4]TermGrades

	if table.Length() == 0 {
		return terms, fmt.Errorf("could not find table")
	}
	records, err := htmlgrid.Decode(table, gradesSpec)
	if err != nil {
		return terms, err
	}
	if len(records) != gradeRows {
		return terms, fmt.Errorf("expected %d rows, got %d", gradeRows, len(records))
	}
	records = records[:len(records)-gradeSummaryRows]

	for c := range Categories {
		weights := records[2*c]
		scores := records[2*c+1]
		for t, field := range termFields {
			weight := weights[field]
			if weight.Set && !weight.Numeric {
				return terms, fmt.Errorf("%s weight %s: %q is not a number", Categories[c], field, weight.Text)
			}
			score := scores[field]
			if score.Set && !score.Numeric {
				return terms, fmt.Errorf("%s score %s: %q is not a number", Categories[c], field, score.Text)
			}
			terms[t].Categories[c] = CategoryGrade{
				Weight: weight.Number,
				Score:  Score{Value: score.Number, Posted: score.Set},
			}
		}
	}

	for t := range terms {
		terms[t].Total, terms[t].TotalDefined = termTotal(terms[t].Categories)
	}
	return terms, nil
}

// termTotal is the weighted sum of category scores divided by 100. A category with a
// non-zero weight and no score makes the total undefined (0, false), a category with
// a zero weight and no score contributes nothing.
func termTotal(categories [3]CategoryGrade) (float64, bool) {
	var sum float64
	for _, c := range categories {
		if !c.Score.Posted {
			if c.Weight != 0 {
				return 0, false
			}
			continue
		}
		sum += c.Score.Value * c.Weight
	}
	return sum / 100, true
}
