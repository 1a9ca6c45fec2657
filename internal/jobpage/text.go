package jobpage

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "p, div, section, li, tr, h1, h2, h3, h4, h5, h6, ul, ol, table"

// selectionText returns the text of sel with one line per block element.
func selectionText(sel *goquery.Selection) string {
	sel.Find("br").ReplaceWithHtml("\n")
	sel.Find("li").PrependHtml("- ")
	sel.Find(blockSelector).AppendHtml("\n")
	return cleanWhitespace(sel.Text())
}

// htmlToText converts an HTML fragment, possibly entity-encoded, into plain text.
func htmlToText(fragment string) string {
	// Greenhouse double-encodes its content; unescaping real HTML is a no-op.
	unescaped := html.UnescapeString(fragment)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		return cleanWhitespace(unescaped)
	}
	return selectionText(doc.Find("body"))
}

// cleanWhitespace trims every line, collapses runs of spaces and drops empty lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
