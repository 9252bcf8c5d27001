package sis

import (
	"fmt"
	"strings"

	"sisassist-backend/internal/components/telemetry"
	"sisassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const report_decode_schedule = "decode.schedule"

// splitDayHeader splits a header like "A - Monday" into its code and name.
func splitDayHeader(text string) (code, name string) {
	code, name, found := strings.Cut(text, " - ")
	if !found {
		return strings.TrimSpace(text), strings.TrimSpace(text)
	}
	return strings.TrimSpace(code), strings.TrimSpace(name)
}

// isCurrentCell reports whether the page highlighted a schedule cell, the only signal
// the page gives is a border in the cell's inline style.
func isCurrentCell(cell *goquery.Selection) bool {
	style := strings.ToLower(cell.AttrOr("style", ""))
	return strings.Contains(style, "border")
}

func decodeSchedule(doc *goquery.Document, tel telemetry.API) (Schedule, error) {
	table := doc.Find("table#scheduleMatrix").First()
	if table.Length() == 0 {
		return Schedule{}, fmt.Errorf("%w: could not find schedule matrix", ErrDecode)
	}
	rows := table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Closest("table").IsSelection(table)
	})

	header := rows.FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.ChildrenFiltered("th").Length() > 0
	}).First()
	if header.Length() == 0 {
		return Schedule{}, fmt.Errorf("%w: schedule matrix has no header", ErrDecode)
	}

	schedule := Schedule{
		DayNames: map[string]string{},
		Days:     map[string][]Period{},
	}

	var headerErr error
	// the first header is the period number column
	header.ChildrenFiltered("th").Slice(1, goquery.ToEnd).EachWithBreak(func(i int, th *goquery.Selection) bool {
		code, name := splitDayHeader(htmlutil.CleanText(th.Text()))
		if code == "" {
			headerErr = fmt.Errorf("day column %d has no code", i)
			return false
		}
		if _, exists := schedule.DayNames[code]; exists {
			headerErr = fmt.Errorf("day %q appears twice", code)
			return false
		}
		schedule.DayOrder = append(schedule.DayOrder, code)
		schedule.DayNames[code] = name
		schedule.Days[code] = []Period{}

		if strings.TrimSpace(th.AttrOr("style", "")) == "" {
			return true
		}
		if schedule.CurrentDay != "" {
			tel.ReportWarning(report_decode_schedule, "more than one current day", schedule.CurrentDay, code)
			return true
		}
		schedule.CurrentDay = code
		return true
	})
	if headerErr != nil {
		return Schedule{}, fmt.Errorf("%w: schedule header: %w", ErrDecode, headerErr)
	}

	var current *Period
	rows.Each(func(_ int, row *goquery.Selection) {
		if row.ChildrenFiltered("td").Length() == 0 {
			return
		}
		label := htmlutil.CleanText(row.Children().First().Text())

		for i, code := range schedule.DayOrder {
			cell := row.ChildrenFiltered(fmt.Sprintf("td:nth-child(%d)", i+2))
			if cell.Length() == 0 {
				continue
			}
			lines := htmlutil.Lines(cell)
			if strings.Join(lines, "") == "" {
				continue
			}
			for len(lines) < 4 {
				lines = append(lines, "")
			}

			period := Period{
				Label:      label,
				Day:        code,
				CourseCode: lines[0],
				Name:       lines[1],
				Teacher:    lines[2],
				Room:       lines[3],
				Current:    isCurrentCell(cell),
			}
			if period.Current {
				if current != nil {
					tel.ReportWarning(report_decode_schedule, "more than one current period", current.Day, current.Label, code, label)
					period.Current = false
				} else {
					flagged := period
					current = &flagged
				}
			}
			schedule.Days[code] = append(schedule.Days[code], period)
		}
	})
	schedule.CurrentPeriod = current

	return schedule, nil
}
