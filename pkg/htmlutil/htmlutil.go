package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// GetText returns the concatenated text of a node and all its descendants.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText trims a piece of text and collapses runs of whitespace into a single space.
func CleanText(text string) string {
	text = removeNonPrintable(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.TrimSpace(text)
	return innerWhitespace.ReplaceAllString(text, " ")
}

func hasBreak(node *html.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && (child.DataAtom == atom.Br || hasBreak(child)) {
			return true
		}
	}
	return false
}

// Lines returns the cleaned text of every segment of sel's content separated by <br> elements,
// segments that are empty after cleaning are kept so that positions are preserved.
func Lines(sel *goquery.Selection) []string {
	var lines []string
	var current bytes.Buffer

	flush := func() {
		lines = append(lines, CleanText(current.String()))
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch {
			case child.Type == html.TextNode:
				current.WriteString(child.Data)
			case child.Type == html.ElementNode && child.DataAtom == atom.Br:
				flush()
			case child.Type == html.ElementNode && !hasBreak(child):
				current.WriteString(GetText(child))
			default:
				walk(child)
			}
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	flush()

	return lines
}

// HiddenFields returns the name and value of every hidden input inside a form, verbatim.
func HiddenFields(form *goquery.Selection) map[string]string {
	fields := map[string]string{}
	form.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		fields[name] = input.AttrOr("value", "")
	})
	return fields
}
