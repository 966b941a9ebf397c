package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// GetText concatenates every text node under node, in document order.
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

// FirstElementChild returns the first child of node that is an element, or nil.
func FirstElementChild(node *html.Node) *html.Node {
	if node == nil {
		return nil
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			return child
		}
	}
	return nil
}

// NestedText returns the text of the element wrapped inside a table cell (ex. the <span> or <a> in
// `<td>\n  <span>87.5 %</span></td>`). Cells that hold their text directly return their own text.
func NestedText(cell *html.Node) string {
	inner := FirstElementChild(cell)
	if inner == nil {
		return GetText(cell)
	}
	return GetText(inner)
}

// CollapseWhitespace trims s, drops non-printable runes and folds every run of whitespace (including
// non-breaking spaces) into a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(removeNonPrintable(s)), " ")
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}
