package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, contents string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contents))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestCleanText(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "  Algebra   II \n", expected: "Algebra II"},
		{input: "\tB140 ", expected: "B140"},
		{input: "", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, CleanText(row.input))
	}
}

func TestLines(t *testing.T) {
	doc := parse(t, `<div id="cell">MTH201<br>Algebra <b>II</b><br/>  Jane Doe <br>B140</div>`)
	require.Equal(
		t,
		[]string{"MTH201", "Algebra II", "Jane Doe", "B140"},
		Lines(doc.Find("#cell")),
	)

	doc = parse(t, `<div id="cell"></div>`)
	require.Equal(t, []string{""}, Lines(doc.Find("#cell")))

	// breaks nested inside wrappers still split, wrappers without breaks are read whole
	doc = parse(t, `<div id="cell"><span><b>MTH</b>201<br><i>Algebra</i> II</span><p>Jane <em>Doe</em></p></div>`)
	require.Equal(
		t,
		[]string{"MTH201", "Algebra IIJane Doe"},
		Lines(doc.Find("#cell")),
	)
}

func TestHiddenFields(t *testing.T) {
	doc := parse(t, `<form id="f">
		<input type="hidden" name="__VIEWSTATE" value="abc==">
		<input type="hidden" name="__EVENTVALIDATION" value="">
		<input type="hidden" value="no name">
		<input type="text" name="username" value="visible">
	</form>`)

	require.Equal(t, map[string]string{
		"__VIEWSTATE":       "abc==",
		"__EVENTVALIDATION": "",
	}, HiddenFields(doc.Find("form#f")))
}

func TestGetText(t *testing.T) {
	doc := parse(t, `<p id="p">a<span>b<i>c</i></span>d</p>`)
	require.Equal(t, "abcd", GetText(doc.Find("#p").Nodes[0]))
}
