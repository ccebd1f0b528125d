package fetcher

import (
	"strings"

	"golang.org/x/net/html"
)

// summaryText converts an HTML summary into plain text with collapsed whitespace.
// Text that is not valid HTML is returned with whitespace collapsed only.
func summaryText(summary string) string {
	if !strings.ContainsAny(summary, "<&") {
		return strings.Join(strings.Fields(summary), " ")
	}

	doc, err := html.Parse(strings.NewReader(summary))
	if err != nil {
		return strings.Join(strings.Fields(summary), " ")
	}

	var sb strings.Builder
	extractText(doc, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func extractText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteString(" ")
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, sb)
	}
}
