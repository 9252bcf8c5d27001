package htmlgrid

import (
	"fmt"
	"strings"

	"sisassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Text keeps the cleaned text of a cell without numeric coercion.
func Text(cell *goquery.Selection, field string, out Record) error {
	text := htmlutil.CleanText(cell.Text())
	if text == "" {
		out[field] = Unset
		return nil
	}
	out[field] = TextValue(text)
	return nil
}

// Percent strips a trailing percent sign before coercion.
func Percent(cell *goquery.Selection, field string, out Record) error {
	out[field] = CoercePercent(cell.Text())
	return nil
}

// CoercePercent is Coerce after removing a trailing "%".
func CoercePercent(text string) Value {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "%")
	return Coerce(text)
}

// Parenthesized strips a single layer of surrounding parentheses before coercion.
func Parenthesized(cell *goquery.Selection, field string, out Record) error {
	out[field] = CoerceParenthesized(cell.Text())
	return nil
}

// CoerceParenthesized is Coerce after removing one pair of surrounding parentheses.
func CoerceParenthesized(text string) Value {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		text = text[1 : len(text)-1]
	}
	return Coerce(text)
}

// Attr reads an attribute from the first element matching selector inside of the cell,
// it fails if there is no such element or attribute.
func Attr(selector, attr string) Transform {
	return func(cell *goquery.Selection, field string, out Record) error {
		value, ok := cell.Find(selector).First().Attr(attr)
		if !ok {
			return fmt.Errorf("could not find %s[%s]", selector, attr)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("%s[%s] is empty", selector, attr)
		}
		out[field] = TextValue(value)
		return nil
	}
}

// SplitGrade splits a combined grade like "95 A" or "A 95" into a numeric grade written to
// the column's field and a letter grade written to letterField. Either part may be missing.
func SplitGrade(letterField string) Transform {
	return func(cell *goquery.Selection, field string, out Record) error {
		number, letter := SplitGradeText(cell.Text())
		out[field] = number
		out[letterField] = letter
		return nil
	}
}

// SplitGradeText is the string form of SplitGrade.
func SplitGradeText(text string) (number Value, letter Value) {
	var letters []string
	for _, part := range strings.Fields(text) {
		parsed := CoercePercent(part)
		if parsed.Numeric && !number.Set {
			number = parsed
			continue
		}
		letters = append(letters, part)
	}
	if len(letters) > 0 {
		letter = TextValue(strings.Join(letters, " "))
	}
	return number, letter
}
