package htmlgrid

import (
	"math"
	"strconv"
	"strings"
)

// Value is a single decoded cell. A Value that was never written (or whose cell was empty)
// has Set == false, that is the explicit "absent" marker.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
	Set     bool
}

// Unset is the absent value.
var Unset = Value{}

// TextValue makes a Value that will never be treated as a number.
func TextValue(text string) Value {
	return Value{Text: text, Set: true}
}

// NumberValue makes a numeric Value.
func NumberValue(n float64) Value {
	return Value{
		Text:    strconv.FormatFloat(n, 'f', -1, 64),
		Number:  n,
		Numeric: true,
		Set:     true,
	}
}

func parseNumber(text string) (float64, bool) {
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Coerce trims text, if what remains parses fully as a number the Value is numeric,
// otherwise it is kept as text. Empty text is Unset.
func Coerce(text string) Value {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unset
	}
	n, ok := parseNumber(text)
	if !ok {
		return TextValue(text)
	}
	return Value{Text: text, Number: n, Numeric: true, Set: true}
}

// Coerce re-applies coercion to an already decoded value, it is a no-op on numeric
// and unset values.
func (v Value) Coerce() Value {
	if !v.Set || v.Numeric {
		return v
	}
	return Coerce(v.Text)
}

func (v Value) String() string {
	return v.Text
}

// Record is a decoded row keyed by field name.
type Record map[string]Value

// String returns the text of a field or "" if it is absent.
func (r Record) String(field string) string {
	return r[field].Text
}

// Float returns the numeric value of a field, ok is false if the field is absent or not numeric.
func (r Record) Float(field string) (n float64, ok bool) {
	v := r[field]
	if !v.Set || !v.Numeric {
		return 0, false
	}
	return v.Number, true
}

// Int is Float truncated to an int, absent or non-numeric fields are 0.
func (r Record) Int(field string) int {
	n, _ := r.Float(field)
	return int(n)
}
