// Package htmlgrid decodes the rows of an html table into records using a static,
// positional column specification.
package htmlgrid

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Ignore is the field name of a column that should be skipped.
const Ignore = ""

var ErrTransform = errors.New("htmlgrid: transform failed")

// Transform decodes a cell into out. It usually writes out[field] but may write any
// number of fields as long as they are listed in the column's Extra.
type Transform func(cell *goquery.Selection, field string, out Record) error

// Column describes how the cell at a given position is decoded.
type Column struct {
	// Field is the key the cell is decoded into, Ignore skips the cell.
	Field string
	// Transform decodes the cell, when nil the cell's text is passed through Coerce.
	Transform Transform
	// Extra lists the additional keys Transform writes.
	Extra []string
}

// Spec maps zero-based column positions to fields.
type Spec struct {
	// CellClass is the css class the data cells of a row carry, rows without
	// such a cell (headers, spacers) are not data rows.
	CellClass string
	Columns   []Column
}

// Fields returns every key a record decoded with this spec will contain.
func (s Spec) Fields() []string {
	var fields []string
	for _, col := range s.Columns {
		if col.Field == Ignore {
			continue
		}
		fields = append(fields, col.Field)
		fields = append(fields, col.Extra...)
	}
	return fields
}

// Rows returns the data rows of table, rows of tables nested inside of table's cells
// are not included.
func Rows(table *goquery.Selection, cellClass string) *goquery.Selection {
	table = table.First()
	return table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		if !row.Closest("table").IsSelection(table) {
			return false
		}
		return row.ChildrenFiltered("td."+cellClass).Length() > 0
	})
}

// DecodeRow decodes a single data row.
func DecodeRow(row *goquery.Selection, spec Spec) (Record, error) {
	record := Record{}
	for _, field := range spec.Fields() {
		record[field] = Unset
	}

	cells := row.ChildrenFiltered("td")
	for i, col := range spec.Columns {
		if col.Field == Ignore {
			continue
		}
		// trailing cells may be missing, their fields stay unset
		if i >= cells.Length() {
			break
		}
		cell := cells.Eq(i)

		if col.Transform == nil {
			record[col.Field] = Coerce(cell.Text())
			continue
		}
		err := col.Transform(cell, col.Field, record)
		if err != nil {
			return nil, fmt.Errorf("%w: column %d (%s): %w", ErrTransform, i, col.Field, err)
		}
	}

	return record, nil
}

// Decode decodes every data row of table. Either all rows decode or an error is returned.
func Decode(table *goquery.Selection, spec Spec) ([]Record, error) {
	rows := Rows(table, spec.CellClass)

	records := make([]Record, 0, rows.Length())
	var err error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		var record Record
		record, err = DecodeRow(row, spec)
		if err != nil {
			err = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
